package db

import (
	"github.com/bchung1201/PolyMaster/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.CycleRecord{},
		&models.TradeDecisionRecord{},
		&models.ForecastRecord{},
		&models.NewsArticleRecord{},
	)
}

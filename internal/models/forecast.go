package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ForecastRecord is one model forecast for a market, fallback answers included.
type ForecastRecord struct {
	ID      uint64  `gorm:"primaryKey;autoIncrement"`
	CycleID *string `gorm:"type:varchar(64);index"`

	MarketID string `gorm:"type:varchar(100);not null;index"`
	Question string `gorm:"type:text"`

	Probability decimal.Decimal `gorm:"type:numeric(20,10);not null"`
	Confidence  string          `gorm:"type:varchar(10);not null"`
	Fallback    bool            `gorm:"not null"`
	Model       string          `gorm:"type:varchar(50)"`
	LatencyMS   int64           `gorm:"not null;default:0"`

	Rationale string `gorm:"type:text"`
	Raw       string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (ForecastRecord) TableName() string {
	return "forecasts"
}

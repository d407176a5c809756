package models

import "time"

// CycleRecord is one decision-cycle run, persisted for observability.
type CycleRecord struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	CycleID string `gorm:"type:varchar(64);not null;uniqueIndex"`
	Outcome string `gorm:"type:varchar(20);not null;index"`
	DryRun  bool   `gorm:"not null"`
	MinEdge float64 `gorm:"not null"`

	MarketsSeen        int `gorm:"not null"`
	EventsSeen         int `gorm:"not null"`
	MalformedSkipped   int `gorm:"not null"`
	Candidates         int `gorm:"not null"`
	ForecastsAttempted int `gorm:"not null"`
	ForecastFailures   int `gorm:"not null"`

	FailureReason string `gorm:"type:text"`

	StartedAt  time.Time `gorm:"type:timestamptz;not null"`
	FinishedAt time.Time `gorm:"type:timestamptz;not null"`
	CreatedAt  time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (CycleRecord) TableName() string {
	return "trade_cycles"
}

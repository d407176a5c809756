package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TradeDecisionRecord is a single trade decision produced by a cycle,
// including the sizing inputs and the submission result when live.
type TradeDecisionRecord struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	DecisionID string `gorm:"type:varchar(64);not null;uniqueIndex"`
	CycleID    string `gorm:"type:varchar(64);not null;index"`

	MarketID string `gorm:"type:varchar(100);not null;index"`
	Question string `gorm:"type:text"`
	Category string `gorm:"type:varchar(20);index"`
	Side     string `gorm:"type:varchar(10);not null"`
	TokenID  string `gorm:"type:varchar(100)"`

	MarketPrice  decimal.Decimal `gorm:"type:numeric(20,10)"`
	Probability  decimal.Decimal `gorm:"type:numeric(20,10)"`
	AbsoluteEdge decimal.Decimal `gorm:"type:numeric(20,10)"`
	RelativeEdge decimal.Decimal `gorm:"type:numeric(20,10)"`
	KellySize    decimal.Decimal `gorm:"type:numeric(20,10)"`
	SizeUSD      decimal.Decimal `gorm:"type:numeric(30,10)"`
	Confidence   string          `gorm:"type:varchar(10)"`

	Warnings  datatypes.JSON `gorm:"type:jsonb"`
	Rationale string         `gorm:"type:text"`

	DryRun        bool   `gorm:"not null"`
	Submitted     bool   `gorm:"not null"`
	OrderID       string `gorm:"type:varchar(100)"`
	OrderStatus   string `gorm:"type:varchar(30)"`
	FailureReason string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (TradeDecisionRecord) TableName() string {
	return "trade_decisions"
}

package repository

import (
	"context"
	"time"

	"github.com/bchung1201/PolyMaster/internal/models"
)

// Repository persists decision cycles and their artifacts. Implementations
// must tolerate a nil receiver so callers can run without a database.
type Repository interface {
	// Cycles
	InsertCycle(ctx context.Context, item *models.CycleRecord) error
	GetCycleByCycleID(ctx context.Context, cycleID string) (*models.CycleRecord, error)
	ListCycles(ctx context.Context, params ListCyclesParams) ([]models.CycleRecord, error)
	CountCycles(ctx context.Context, params ListCyclesParams) (int64, error)

	// Trade decisions
	InsertDecision(ctx context.Context, item *models.TradeDecisionRecord) error
	ListDecisions(ctx context.Context, params ListDecisionsParams) ([]models.TradeDecisionRecord, error)
	CountDecisions(ctx context.Context, params ListDecisionsParams) (int64, error)

	// Forecasts
	InsertForecast(ctx context.Context, item *models.ForecastRecord) error
	ListForecasts(ctx context.Context, params ListForecastsParams) ([]models.ForecastRecord, error)
	CountForecasts(ctx context.Context, params ListForecastsParams) (int64, error)

	// News cache
	UpsertNewsArticles(ctx context.Context, items []models.NewsArticleRecord) error
	ListNewsArticles(ctx context.Context, params ListNewsParams) ([]models.NewsArticleRecord, error)
	DeleteStaleNewsArticles(ctx context.Context, before time.Time) (int64, error)
}

type ListCyclesParams struct {
	Limit   int
	Offset  int
	Outcome *string
	DryRun  *bool
	Since   *time.Time
	OrderBy string
	Asc     *bool
}

type ListDecisionsParams struct {
	Limit     int
	Offset    int
	CycleID   *string
	MarketID  *string
	Side      *string
	Submitted *bool
	Since     *time.Time
	OrderBy   string
	Asc       *bool
}

type ListForecastsParams struct {
	Limit    int
	Offset   int
	CycleID  *string
	MarketID *string
	Fallback *bool
	Since    *time.Time
	OrderBy  string
	Asc      *bool
}

type ListNewsParams struct {
	Limit    int
	Offset   int
	Category *string
	Since    *time.Time
	OrderBy  string
	Asc      *bool
}

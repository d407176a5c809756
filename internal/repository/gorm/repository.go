package gormrepository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bchung1201/PolyMaster/internal/models"
	"github.com/bchung1201/PolyMaster/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- Cycles -----------------------------------------------------------------

func (s *Store) InsertCycle(ctx context.Context, item *models.CycleRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetCycleByCycleID(ctx context.Context, cycleID string) (*models.CycleRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	cycleID = strings.TrimSpace(cycleID)
	if cycleID == "" {
		return nil, nil
	}
	var item models.CycleRecord
	err := s.db.WithContext(ctx).
		Model(&models.CycleRecord{}).
		Where("cycle_id = ?", cycleID).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListCycles(ctx context.Context, params repository.ListCyclesParams) ([]models.CycleRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyCycleFilters(s.db.WithContext(ctx).Model(&models.CycleRecord{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "started_at")
	limit := normalizeLimit(params.Limit, 50)
	offset := normalizeOffset(params.Offset)
	var items []models.CycleRecord
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountCycles(ctx context.Context, params repository.ListCyclesParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := applyCycleFilters(s.db.WithContext(ctx).Model(&models.CycleRecord{}), params)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func applyCycleFilters(query *gorm.DB, params repository.ListCyclesParams) *gorm.DB {
	if params.Outcome != nil && strings.TrimSpace(*params.Outcome) != "" {
		query = query.Where("outcome = ?", strings.TrimSpace(*params.Outcome))
	}
	if params.DryRun != nil {
		query = query.Where("dry_run = ?", *params.DryRun)
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("started_at >= ?", *params.Since)
	}
	return query
}

// --- Trade decisions ----------------------------------------------------------

func (s *Store) InsertDecision(ctx context.Context, item *models.TradeDecisionRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListDecisions(ctx context.Context, params repository.ListDecisionsParams) ([]models.TradeDecisionRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyDecisionFilters(s.db.WithContext(ctx).Model(&models.TradeDecisionRecord{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 50)
	offset := normalizeOffset(params.Offset)
	var items []models.TradeDecisionRecord
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountDecisions(ctx context.Context, params repository.ListDecisionsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := applyDecisionFilters(s.db.WithContext(ctx).Model(&models.TradeDecisionRecord{}), params)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func applyDecisionFilters(query *gorm.DB, params repository.ListDecisionsParams) *gorm.DB {
	if params.CycleID != nil && strings.TrimSpace(*params.CycleID) != "" {
		query = query.Where("cycle_id = ?", strings.TrimSpace(*params.CycleID))
	}
	if params.MarketID != nil && strings.TrimSpace(*params.MarketID) != "" {
		query = query.Where("market_id = ?", strings.TrimSpace(*params.MarketID))
	}
	if params.Side != nil && strings.TrimSpace(*params.Side) != "" {
		query = query.Where("side = ?", strings.TrimSpace(*params.Side))
	}
	if params.Submitted != nil {
		query = query.Where("submitted = ?", *params.Submitted)
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	return query
}

// --- Forecasts ----------------------------------------------------------------

func (s *Store) InsertForecast(ctx context.Context, item *models.ForecastRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListForecasts(ctx context.Context, params repository.ListForecastsParams) ([]models.ForecastRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyForecastFilters(s.db.WithContext(ctx).Model(&models.ForecastRecord{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 50)
	offset := normalizeOffset(params.Offset)
	var items []models.ForecastRecord
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountForecasts(ctx context.Context, params repository.ListForecastsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := applyForecastFilters(s.db.WithContext(ctx).Model(&models.ForecastRecord{}), params)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func applyForecastFilters(query *gorm.DB, params repository.ListForecastsParams) *gorm.DB {
	if params.CycleID != nil && strings.TrimSpace(*params.CycleID) != "" {
		query = query.Where("cycle_id = ?", strings.TrimSpace(*params.CycleID))
	}
	if params.MarketID != nil && strings.TrimSpace(*params.MarketID) != "" {
		query = query.Where("market_id = ?", strings.TrimSpace(*params.MarketID))
	}
	if params.Fallback != nil {
		query = query.Where("fallback = ?", *params.Fallback)
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	return query
}

// --- News cache -----------------------------------------------------------------

func (s *Store) UpsertNewsArticles(ctx context.Context, items []models.NewsArticleRecord) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "category"}, {Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"source",
			"title",
			"description",
			"published_at",
			"fetched_at",
		}),
	}).CreateInBatches(items, 100).Error
}

func (s *Store) ListNewsArticles(ctx context.Context, params repository.ListNewsParams) ([]models.NewsArticleRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.NewsArticleRecord{})
	if params.Category != nil && strings.TrimSpace(*params.Category) != "" {
		query = query.Where("category = ?", strings.TrimSpace(*params.Category))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("fetched_at >= ?", *params.Since)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "published_at")
	limit := normalizeLimit(params.Limit, 50)
	offset := normalizeOffset(params.Offset)
	var items []models.NewsArticleRecord
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteStaleNewsArticles(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if before.IsZero() {
		before = time.Now().UTC().Add(-24 * time.Hour)
	}
	res := s.db.WithContext(ctx).
		Where("fetched_at < ?", before).
		Delete(&models.NewsArticleRecord{})
	return res.RowsAffected, res.Error
}

// --- Helpers ----------------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bchung1201/PolyMaster/internal/repository"
	"github.com/bchung1201/PolyMaster/internal/trading"
)

// cycleRunner is the slice of the orchestrator the handler needs.
type cycleRunner interface {
	RunCycle(ctx context.Context, opts trading.CycleOptions) (trading.CycleResult, error)
}

// TradingHandler triggers decision cycles and serves their persisted history.
type TradingHandler struct {
	Orchestrator cycleRunner
	Repo         repository.Repository
	Gateway      trading.Gateway
	Logger       *zap.Logger
}

func (h *TradingHandler) Register(r *gin.Engine) {
	group := r.Group("/api/trading")
	group.POST("/cycle", h.runCycle)
	group.GET("/cycles", h.listCycles)
	group.GET("/decisions", h.listDecisions)
	group.GET("/forecasts", h.listForecasts)
	group.GET("/balance", h.getBalance)
}

type cycleRequest struct {
	DryRun  *bool   `json:"dry_run"`
	MinEdge float64 `json:"min_edge"`
}

// @Summary Run one decision cycle
// @Tags trading
// @Param body body cycleRequest false "per-run overrides"
// @Success 200 {object} apiResponse
// @Router /api/trading/cycle [post]
func (h *TradingHandler) runCycle(c *gin.Context) {
	if h.Orchestrator == nil {
		Error(c, http.StatusInternalServerError, "orchestrator unavailable", nil)
		return
	}
	var req cycleRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			Error(c, http.StatusBadRequest, "invalid body", nil)
			return
		}
	}
	if req.MinEdge < 0 {
		Error(c, http.StatusBadRequest, "min_edge must not be negative", nil)
		return
	}

	res, err := h.Orchestrator.RunCycle(c.Request.Context(), trading.CycleOptions{
		DryRun:  req.DryRun,
		MinEdge: req.MinEdge,
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("cycle failed", zap.String("cycle_id", res.CycleID), zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), map[string]any{"cycle_id": res.CycleID})
		return
	}
	Ok(c, res, nil)
}

// @Summary List persisted cycles
// @Tags trading
// @Param limit query int false "page size (default 50)"
// @Param offset query int false "offset"
// @Param outcome query string false "decision|no_opportunity|failed"
// @Param dry_run query bool false "dry-run cycles only"
// @Param sort_by query string false "started_at|finished_at|created_at"
// @Param order query string false "asc|desc (default desc)"
// @Success 200 {object} apiResponse
// @Router /api/trading/cycles [get]
func (h *TradingHandler) listCycles(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repository unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	orderBy := parseOrder(c.Query("sort_by"), map[string]string{
		"started_at":  "started_at",
		"finished_at": "finished_at",
		"created_at":  "created_at",
	})
	asc := strings.EqualFold(strings.TrimSpace(c.Query("order")), "asc")

	params := repository.ListCyclesParams{
		Limit:   limit,
		Offset:  offset,
		Outcome: strQueryPtr(c, "outcome"),
		DryRun:  boolQueryPtr(c, "dry_run"),
		OrderBy: orderBy,
		Asc:     boolPtr(asc),
	}
	items, err := h.Repo.ListCycles(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountCycles(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary List persisted trade decisions
// @Tags trading
// @Param limit query int false "page size (default 50)"
// @Param offset query int false "offset"
// @Param cycle_id query string false "filter by cycle"
// @Param market_id query string false "filter by market"
// @Param side query string false "BUY_YES|BUY_NO"
// @Param submitted query bool false "only submitted orders"
// @Param sort_by query string false "created_at|size_usd|absolute_edge"
// @Param order query string false "asc|desc (default desc)"
// @Success 200 {object} apiResponse
// @Router /api/trading/decisions [get]
func (h *TradingHandler) listDecisions(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repository unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	orderBy := parseOrder(c.Query("sort_by"), map[string]string{
		"created_at":    "created_at",
		"size_usd":      "size_usd",
		"absolute_edge": "absolute_edge",
	})
	asc := strings.EqualFold(strings.TrimSpace(c.Query("order")), "asc")

	params := repository.ListDecisionsParams{
		Limit:     limit,
		Offset:    offset,
		CycleID:   strQueryPtr(c, "cycle_id"),
		MarketID:  strQueryPtr(c, "market_id"),
		Side:      strQueryPtr(c, "side"),
		Submitted: boolQueryPtr(c, "submitted"),
		OrderBy:   orderBy,
		Asc:       boolPtr(asc),
	}
	items, err := h.Repo.ListDecisions(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountDecisions(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary List persisted forecasts
// @Tags trading
// @Param limit query int false "page size (default 50)"
// @Param offset query int false "offset"
// @Param cycle_id query string false "filter by cycle"
// @Param market_id query string false "filter by market"
// @Param fallback query bool false "only fallback forecasts"
// @Param sort_by query string false "created_at|probability"
// @Param order query string false "asc|desc (default desc)"
// @Success 200 {object} apiResponse
// @Router /api/trading/forecasts [get]
func (h *TradingHandler) listForecasts(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repository unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	orderBy := parseOrder(c.Query("sort_by"), map[string]string{
		"created_at":  "created_at",
		"probability": "probability",
	})
	asc := strings.EqualFold(strings.TrimSpace(c.Query("order")), "asc")

	params := repository.ListForecastsParams{
		Limit:    limit,
		Offset:   offset,
		CycleID:  strQueryPtr(c, "cycle_id"),
		MarketID: strQueryPtr(c, "market_id"),
		Fallback: boolQueryPtr(c, "fallback"),
		OrderBy:  orderBy,
		Asc:      boolPtr(asc),
	}
	items, err := h.Repo.ListForecasts(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountForecasts(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Venue balance
// @Tags trading
// @Success 200 {object} apiResponse
// @Router /api/trading/balance [get]
func (h *TradingHandler) getBalance(c *gin.Context) {
	if h.Gateway == nil {
		Error(c, http.StatusInternalServerError, "gateway not configured", nil)
		return
	}
	balance, err := h.Gateway.Balance(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, map[string]any{"balance_usd": balance}, nil)
}

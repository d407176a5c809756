package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bchung1201/PolyMaster/internal/catalog"
	"github.com/bchung1201/PolyMaster/internal/category"
	"github.com/bchung1201/PolyMaster/internal/scoring"
	"github.com/bchung1201/PolyMaster/internal/service"
)

// MarketHandler serves the cached market catalog. Detail lookups overlay live
// stream quotes when the price stream is running.
type MarketHandler struct {
	Catalog *catalog.Catalog
	Prices  *service.PriceStreamService
	Logger  *zap.Logger
}

func (h *MarketHandler) Register(r *gin.Engine) {
	group := r.Group("/api/markets")
	group.GET("", h.listMarkets)
	group.GET("/candidates", h.listCandidates)
	group.GET("/:id", h.getMarket)
}

type marketView struct {
	ID           string       `json:"id"`
	Question     string       `json:"question"`
	Description  string       `json:"description,omitempty"`
	EndDate      string       `json:"end_date,omitempty"`
	Active       bool         `json:"active"`
	Funded       bool         `json:"funded"`
	Tradeable    bool         `json:"tradeable"`
	Volume       float64      `json:"volume"`
	Spread       float64      `json:"spread"`
	YesPrice     float64      `json:"yes_price"`
	NoPrice      float64      `json:"no_price"`
	Outcomes     []string     `json:"outcomes,omitempty"`
	ClobTokenIDs []string     `json:"clob_token_ids,omitempty"`
	Category     category.Tag `json:"category"`
}

type marketDetail struct {
	marketView
	LiveQuotes map[string]service.Quote `json:"live_quotes,omitempty"`
}

type candidateView struct {
	marketView
	Score float64 `json:"score"`
}

func toMarketView(m catalog.Market) marketView {
	return marketView{
		ID:           m.ID,
		Question:     m.Question,
		Description:  m.Description,
		EndDate:      m.End,
		Active:       m.Active,
		Funded:       m.Funded,
		Tradeable:    m.Tradeable(),
		Volume:       m.Volume,
		Spread:       m.Spread,
		YesPrice:     m.YesPrice(),
		NoPrice:      m.NoPrice(),
		Outcomes:     m.Outcomes,
		ClobTokenIDs: m.ClobTokenIDs,
		Category:     category.Detect(m.Question),
	}
}

// @Summary List markets
// @Tags markets
// @Param limit query int false "page size (default 50)"
// @Param offset query int false "offset"
// @Param category query string false "politics|sports|crypto|tech|entertainment|economy|climate|health|other"
// @Success 200 {object} apiResponse
// @Router /api/markets [get]
func (h *MarketHandler) listMarkets(c *gin.Context) {
	if h.Catalog == nil {
		Error(c, http.StatusInternalServerError, "catalog unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	tag := strQueryPtr(c, "category")
	if tag != nil && !category.Valid(*tag) {
		Error(c, http.StatusBadRequest, "unknown category", nil)
		return
	}

	markets, err := h.Catalog.ListMarkets(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	views := make([]marketView, 0, len(markets))
	for _, m := range markets {
		v := toMarketView(m)
		if tag != nil && v.Category != category.Tag(*tag) {
			continue
		}
		views = append(views, v)
	}

	total := int64(len(views))
	views = page(views, limit, offset)
	Ok(c, views, paginationMeta(limit, offset, total))
}

// @Summary List trading candidates
// @Tags markets
// @Param limit query int false "max candidates (default 50)"
// @Success 200 {object} apiResponse
// @Router /api/markets/candidates [get]
func (h *MarketHandler) listCandidates(c *gin.Context) {
	if h.Catalog == nil {
		Error(c, http.StatusInternalServerError, "catalog unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", scoring.MaxMarkets)

	markets, err := h.Catalog.ListMarkets(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	selected := scoring.FilterForTrading(markets, time.Now())
	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}
	views := make([]candidateView, 0, len(selected))
	for _, sm := range selected {
		views = append(views, candidateView{
			marketView: toMarketView(sm.Market),
			Score:      sm.Score,
		})
	}
	Ok(c, views, map[string]any{"scanned": len(markets), "selected": len(views)})
}

// @Summary Get one market
// @Tags markets
// @Param id path string true "market id"
// @Success 200 {object} apiResponse
// @Router /api/markets/{id} [get]
func (h *MarketHandler) getMarket(c *gin.Context) {
	if h.Catalog == nil {
		Error(c, http.StatusInternalServerError, "catalog unavailable", nil)
		return
	}
	id := c.Param("id")

	m, err := h.Catalog.GetMarket(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			Error(c, http.StatusNotFound, "market not found", nil)
			return
		}
		if h.Logger != nil {
			h.Logger.Warn("market lookup failed", zap.String("market_id", id), zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	detail := marketDetail{marketView: toMarketView(m)}
	if h.Prices != nil {
		for _, tokenID := range m.ClobTokenIDs {
			if q, ok := h.Prices.Quote(tokenID); ok {
				if detail.LiveQuotes == nil {
					detail.LiveQuotes = make(map[string]service.Quote, len(m.ClobTokenIDs))
				}
				detail.LiveQuotes[tokenID] = q
			}
		}
	}
	Ok(c, detail, nil)
}

// page slices a view list in memory; the catalog is already fully cached so
// there is no per-page query to push down.
func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

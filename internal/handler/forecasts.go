package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bchung1201/PolyMaster/internal/catalog"
	"github.com/bchung1201/PolyMaster/internal/category"
	"github.com/bchung1201/PolyMaster/internal/edge"
	"github.com/bchung1201/PolyMaster/internal/forecast"
)

// headlineSource supplies recent titles for a market's category. Satisfied by
// service.NewsService; nil means forecasts run without news context.
type headlineSource interface {
	Headlines(tag category.Tag) []string
}

// ForecastHandler produces a forecast for a single market on demand. Unlike
// the trading cycle it talks to the provider directly, so upstream failures
// surface to the caller instead of degrading to a fallback.
type ForecastHandler struct {
	Catalog   *catalog.Catalog
	Forecasts forecast.Provider
	Headlines headlineSource
	Logger    *zap.Logger
}

func (h *ForecastHandler) Register(r *gin.Engine) {
	r.POST("/api/forecasts", h.createForecast)
}

type forecastRequest struct {
	MarketID string `json:"market_id"`
}

type forecastView struct {
	MarketID    string          `json:"market_id"`
	Question    string          `json:"question"`
	Category    category.Tag    `json:"category"`
	YesPrice    float64         `json:"yes_price"`
	NoPrice     float64         `json:"no_price"`
	Probability float64         `json:"probability"`
	Confidence  edge.Confidence `json:"confidence"`
	Rationale   string          `json:"rationale,omitempty"`
	Fallback    bool            `json:"fallback"`
	LatencyMS   int64           `json:"latency_ms"`
	Edge        edgeView        `json:"edge"`
}

type edgeView struct {
	AbsoluteEdge float64         `json:"absolute_edge"`
	RelativeEdge float64         `json:"relative_edge"`
	KellySize    float64         `json:"kelly_size"`
	Confidence   edge.Confidence `json:"confidence"`
}

func toEdgeView(r edge.Result) edgeView {
	return edgeView{
		AbsoluteEdge: r.AbsoluteEdge,
		RelativeEdge: r.RelativeEdge,
		KellySize:    r.KellySize,
		Confidence:   r.Confidence,
	}
}

// @Summary Forecast one market
// @Tags forecasts
// @Param body body forecastRequest true "market to forecast"
// @Success 200 {object} apiResponse
// @Router /api/forecasts [post]
func (h *ForecastHandler) createForecast(c *gin.Context) {
	if h.Catalog == nil || h.Forecasts == nil {
		Error(c, http.StatusInternalServerError, "forecasting unavailable", nil)
		return
	}
	var req forecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	marketID := strings.TrimSpace(req.MarketID)
	if marketID == "" {
		Error(c, http.StatusBadRequest, "market_id required", nil)
		return
	}

	m, err := h.Catalog.GetMarket(c.Request.Context(), marketID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			Error(c, http.StatusNotFound, "market not found", nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	tag := category.Detect(m.Question)
	var headlines []string
	if h.Headlines != nil {
		headlines = h.Headlines.Headlines(tag)
	}

	started := time.Now()
	f, err := h.Forecasts.Forecast(c.Request.Context(), forecast.Request{
		MarketID:    m.ID,
		Question:    m.Question,
		Description: m.Description,
		YesPrice:    m.YesPrice(),
		NoPrice:     m.NoPrice(),
		Headlines:   headlines,
	})
	latency := time.Since(started)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("on-demand forecast failed",
				zap.String("market_id", marketID), zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	Ok(c, forecastView{
		MarketID:    m.ID,
		Question:    m.Question,
		Category:    tag,
		YesPrice:    m.YesPrice(),
		NoPrice:     m.NoPrice(),
		Probability: f.Probability,
		Confidence:  f.Confidence,
		Rationale:   f.Rationale,
		Fallback:    f.Fallback,
		LatencyMS:   latency.Milliseconds(),
		Edge:        toEdgeView(edge.Compute(f.Probability, m.YesPrice())),
	}, nil)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bchung1201/PolyMaster/internal/catalog"
)

// EventHandler serves the cached event catalog.
type EventHandler struct {
	Catalog *catalog.Catalog
}

func (h *EventHandler) Register(r *gin.Engine) {
	r.GET("/api/events", h.listEvents)
}

type eventView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug,omitempty"`
	Description string   `json:"description,omitempty"`
	Volume      float64  `json:"volume"`
	Featured    bool     `json:"featured"`
	MarketIDs   []string `json:"market_ids,omitempty"`
}

// @Summary List events
// @Tags events
// @Param limit query int false "page size (default 50)"
// @Param offset query int false "offset"
// @Param min_volume query number false "minimum event volume in USD"
// @Param featured query bool false "only featured events"
// @Success 200 {object} apiResponse
// @Router /api/events [get]
func (h *EventHandler) listEvents(c *gin.Context) {
	if h.Catalog == nil {
		Error(c, http.StatusInternalServerError, "catalog unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	minVolume := floatQuery(c, "min_volume", 0)
	featured := boolQueryPtr(c, "featured")

	events, err := h.Catalog.ListEvents(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	views := make([]eventView, 0, len(events))
	for _, ev := range events {
		if ev.Volume < minVolume {
			continue
		}
		if featured != nil && ev.Featured != *featured {
			continue
		}
		views = append(views, eventView{
			ID:          ev.ID,
			Title:       ev.Title,
			Slug:        ev.Slug,
			Description: ev.Description,
			Volume:      ev.Volume,
			Featured:    ev.Featured,
			MarketIDs:   ev.MarketIDs,
		})
	}

	total := int64(len(views))
	views = page(views, limit, offset)
	Ok(c, views, paginationMeta(limit, offset, total))
}

package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bchung1201/PolyMaster/internal/category"
	"github.com/bchung1201/PolyMaster/internal/repository"
)

// NewsHandler serves the persisted headline cache that forecast prompts draw
// their context from.
type NewsHandler struct {
	Repo repository.Repository
}

func (h *NewsHandler) Register(r *gin.Engine) {
	r.GET("/api/news", h.listNews)
}

// @Summary List cached headlines
// @Tags news
// @Param limit query int false "page size (default 50)"
// @Param offset query int false "offset"
// @Param category query string false "politics|sports|crypto|tech|entertainment|economy|climate|health"
// @Param since query string false "RFC3339 lower bound on published_at"
// @Success 200 {object} apiResponse
// @Router /api/news [get]
func (h *NewsHandler) listNews(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repository unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	tag := strQueryPtr(c, "category")
	if tag != nil && !category.Valid(*tag) {
		Error(c, http.StatusBadRequest, "unknown category", nil)
		return
	}

	var since *time.Time
	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			Error(c, http.StatusBadRequest, "since must be RFC3339", nil)
			return
		}
		since = &ts
	}

	params := repository.ListNewsParams{
		Limit:    limit,
		Offset:   offset,
		Category: tag,
		Since:    since,
	}
	items, err := h.Repo.ListNewsArticles(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"limit": limit, "offset": offset})
}

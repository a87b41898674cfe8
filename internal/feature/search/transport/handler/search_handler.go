// Package handler exposes place search over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"vivimap/internal/feature/search/domain/entity"
)

type SearchUsecase interface {
	Search(ctx context.Context, q string) ([]entity.Place, error)
}

type SearchHandler struct {
	uc SearchUsecase
}

func NewSearchHandler(uc SearchUsecase) *SearchHandler {
	return &SearchHandler{uc: uc}
}

// Search proxies a free-text place query.
//
// GET /api/search?q=tokyo
func (h *SearchHandler) Search(c *gin.Context) {
	places, err := h.uc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		slog.Warn("place search failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadGateway, gin.H{"message": "Search is temporarily unavailable."})
		return
	}
	c.JSON(http.StatusOK, places)
}

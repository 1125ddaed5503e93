package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"greenride/internal/service"
)

// StatsHandler handles HTTP requests for rider statistics.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// StatsResponse is the HTTP representation of rider statistics.
type StatsResponse struct {
	Rider         string `json:"rider"`
	RidesVerified int64  `json:"rides_verified"`
	TotalDistance int64  `json:"total_distance"`
	TotalRewards  int64  `json:"total_rewards"`
}

// GetStats handles GET /v1/riders/:rider/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.stats.StatsOf(c.Request.Context(), c.Param("rider"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, StatsResponse{
		Rider:         stats.Rider,
		RidesVerified: stats.RidesVerified,
		TotalDistance: stats.TotalDistance,
		TotalRewards:  stats.TotalRewards,
	})
}

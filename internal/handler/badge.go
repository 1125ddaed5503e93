package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"greenride/internal/domain"
	"greenride/internal/service"
)

// BadgeHandler handles HTTP requests for achievement badges.
type BadgeHandler struct {
	badges *service.BadgeService
}

// NewBadgeHandler creates a new BadgeHandler.
func NewBadgeHandler(badges *service.BadgeService) *BadgeHandler {
	return &BadgeHandler{badges: badges}
}

// BadgeResponse is the HTTP representation of an earned badge.
type BadgeResponse struct {
	Rider    string `json:"rider"`
	Kind     string `json:"kind"`
	AssetID  string `json:"asset_id"`
	EarnedAt string `json:"earned_at"`
}

func toBadgeResponses(records []*domain.BadgeRecord) []BadgeResponse {
	response := make([]BadgeResponse, 0, len(records))
	for _, r := range records {
		response = append(response, BadgeResponse{
			Rider:    r.Rider,
			Kind:     string(r.Kind),
			AssetID:  r.AssetID,
			EarnedAt: r.EarnedAt.Format(time.RFC3339),
		})
	}
	return response
}

// Evaluate handles POST /v1/riders/:rider/badges/evaluate
func (h *BadgeHandler) Evaluate(c *gin.Context) {
	issued, err := h.badges.EvaluateAndIssue(c.Request.Context(), principal(c), c.Param("rider"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBadgeResponses(issued))
}

// ListBadges handles GET /v1/riders/:rider/badges
func (h *BadgeHandler) ListBadges(c *gin.Context) {
	records, err := h.badges.ListBadges(c.Request.Context(), c.Param("rider"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBadgeResponses(records))
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"greenride/internal/domain"
	"greenride/internal/service"
)

// AdminHandler handles the restricted configuration surface.
type AdminHandler struct {
	verification *service.VerificationService
	badges       *service.BadgeService
	auth         *service.Authorizer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(verification *service.VerificationService, badges *service.BadgeService, auth *service.Authorizer) *AdminHandler {
	return &AdminHandler{
		verification: verification,
		badges:       badges,
		auth:         auth,
	}
}

// RateTableRequest is the HTTP request body for updating the rate table.
type RateTableRequest struct {
	DistanceUnit        int64 `json:"distance_unit"`
	RatePerDistanceUnit int64 `json:"rate_per_distance_unit"`
	DurationUnit        int64 `json:"duration_unit"`
	RatePerDurationUnit int64 `json:"rate_per_duration_unit"`
	CarbonUnit          int64 `json:"carbon_unit"`
	CarbonMultiplier    int64 `json:"carbon_multiplier"`
}

// BoundsRequest is the HTTP request body for updating the engine policy.
type BoundsRequest struct {
	AutoVerify  bool  `json:"auto_verify"`
	MinDistance int64 `json:"min_distance"`
	MaxDistance int64 `json:"max_distance"`
	MinDuration int64 `json:"min_duration"`
}

// MilestoneRequest is one milestone entry in a table update.
type MilestoneRequest struct {
	Kind      string `json:"kind"`
	Metric    string `json:"metric"`
	Threshold int64  `json:"threshold"`
}

// VerifierRequest is the HTTP request body for designating the verifier.
type VerifierRequest struct {
	Verifier string `json:"verifier"`
}

// SetRateTable handles PUT /v1/admin/rates
func (h *AdminHandler) SetRateTable(c *gin.Context) {
	var req RateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.verification.SetRateTable(c.Request.Context(), principal(c), service.RateTable{
		DistanceUnit:        req.DistanceUnit,
		RatePerDistanceUnit: req.RatePerDistanceUnit,
		DurationUnit:        req.DurationUnit,
		RatePerDurationUnit: req.RatePerDurationUnit,
		CarbonUnit:          req.CarbonUnit,
		CarbonMultiplier:    req.CarbonMultiplier,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetBounds handles PUT /v1/admin/bounds
func (h *AdminHandler) SetBounds(c *gin.Context) {
	var req BoundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.verification.SetBounds(c.Request.Context(), principal(c), service.EnginePolicy{
		AutoVerify:  req.AutoVerify,
		MinDistance: req.MinDistance,
		MaxDistance: req.MaxDistance,
		MinDuration: req.MinDuration,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetMilestones handles PUT /v1/admin/milestones
func (h *AdminHandler) SetMilestones(c *gin.Context) {
	var req []MilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	milestones := make([]domain.Milestone, 0, len(req))
	for _, m := range req {
		milestones = append(milestones, domain.Milestone{
			Kind:      domain.BadgeKind(m.Kind),
			Metric:    domain.MilestoneMetric(m.Metric),
			Threshold: m.Threshold,
		})
	}

	if err := h.badges.SetMilestones(c.Request.Context(), principal(c), milestones); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetVerifier handles PUT /v1/admin/verifier
func (h *AdminHandler) SetVerifier(c *gin.Context) {
	var req VerifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.auth.SetVerifier(principal(c), req.Verifier); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"greenride/internal/domain"
	"greenride/internal/service"
)

// RideHandler handles HTTP requests for ride claims.
type RideHandler struct {
	verification *service.VerificationService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(verification *service.VerificationService) *RideHandler {
	return &RideHandler{verification: verification}
}

// SubmitRideRequest is the HTTP request body for submitting a ride claim.
type SubmitRideRequest struct {
	Rider        string `json:"rider"`
	Distance     int64  `json:"distance"`      // meters
	Duration     int64  `json:"duration"`      // seconds
	CarbonOffset int64  `json:"carbon_offset"` // grams
	Nonce        string `json:"nonce"`
}

// RejectRideRequest is the HTTP request body for rejecting a ride.
type RejectRideRequest struct {
	Reason string `json:"reason,omitempty"`
}

// BatchVerifyRequest is the HTTP request body for batch verification.
type BatchVerifyRequest struct {
	RideIDs []string `json:"ride_ids"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID           string `json:"id"`
	Rider        string `json:"rider"`
	Distance     int64  `json:"distance"`
	Duration     int64  `json:"duration"`
	CarbonOffset int64  `json:"carbon_offset"`
	Status       string `json:"status"`
	RewardAmount int64  `json:"reward_amount"`
	RejectReason string `json:"reject_reason,omitempty"`
	SubmittedAt  string `json:"submitted_at"`
}

// SubmitRideResponse is the HTTP response for submitting a ride.
type SubmitRideResponse struct {
	RideResponse
	AutoVerified bool `json:"auto_verified"`
}

// BatchVerifyItemResponse is one entry of a batch verification response.
type BatchVerifyItemResponse struct {
	RideID string        `json:"ride_id"`
	Ride   *RideResponse `json:"ride,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func toRideResponse(ride *domain.Ride) RideResponse {
	return RideResponse{
		ID:           ride.ID,
		Rider:        ride.Rider,
		Distance:     ride.Distance,
		Duration:     ride.Duration,
		CarbonOffset: ride.CarbonOffset,
		Status:       string(ride.Status),
		RewardAmount: ride.RewardAmount,
		RejectReason: ride.RejectReason,
		SubmittedAt:  ride.SubmittedAt.Format(time.RFC3339),
	}
}

// SubmitRide handles POST /v1/rides
func (h *RideHandler) SubmitRide(c *gin.Context) {
	var req SubmitRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.verification.Submit(c.Request.Context(), service.SubmitRideRequest{
		Rider:        req.Rider,
		Distance:     req.Distance,
		Duration:     req.Duration,
		CarbonOffset: req.CarbonOffset,
		Nonce:        req.Nonce,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, SubmitRideResponse{
		RideResponse: toRideResponse(result.Ride),
		AutoVerified: result.AutoVerified,
	})
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.verification.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// GetAll handles GET /v1/rides
func (h *RideHandler) GetAll(c *gin.Context) {
	rides, err := h.verification.ListRides(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, toRideResponse(r))
	}

	c.JSON(http.StatusOK, response)
}

// VerifyRide handles POST /v1/rides/:id/verify
func (h *RideHandler) VerifyRide(c *gin.Context) {
	ride, err := h.verification.Verify(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// RejectRide handles POST /v1/rides/:id/reject
func (h *RideHandler) RejectRide(c *gin.Context) {
	var req RejectRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.verification.Reject(c.Request.Context(), principal(c), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// BatchVerify handles POST /v1/rides/verify-batch
func (h *RideHandler) BatchVerify(c *gin.Context) {
	var req BatchVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	results, err := h.verification.BatchVerify(c.Request.Context(), principal(c), req.RideIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BatchVerifyItemResponse, 0, len(results))
	for _, result := range results {
		item := BatchVerifyItemResponse{RideID: result.RideID}
		if result.Err != nil {
			item.Error = result.Err.Error()
		} else {
			ride := toRideResponse(result.Ride)
			item.Ride = &ride
		}
		response = append(response, item)
	}

	respondJSON(c, http.StatusOK, response)
}

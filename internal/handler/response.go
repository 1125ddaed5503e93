package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"greenride/internal/repository"
	"greenride/internal/service"
)

// principalHeader carries the caller identity asserted by the gateway.
const principalHeader = "X-Principal"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// principal extracts the caller principal from the request.
func principal(c *gin.Context) string {
	return c.GetHeader(principalHeader)
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrRideNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidRider),
		errors.Is(err, service.ErrInvalidNonce),
		errors.Is(err, service.ErrDistanceTooShort),
		errors.Is(err, service.ErrDistanceTooLong),
		errors.Is(err, service.ErrDurationTooShort),
		errors.Is(err, service.ErrNegativeAttribute),
		errors.Is(err, service.ErrInvalidMilestone),
		errors.Is(err, service.ErrInvalidRateTable):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrDuplicateRide),
		errors.Is(err, service.ErrAlreadyFinalized),
		errors.Is(err, service.ErrEvaluationInProgress):
		return http.StatusConflict

	// Authorization errors
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden

	// Upstream capability failures
	case errors.Is(err, service.ErrMintFailed),
		errors.Is(err, service.ErrBadgeIssueFailed):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"driverops/internal/repository"
	"driverops/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
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
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidRiderID),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidPickupLocation),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidSubscriptionDuration):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrRideNotRequested),
		errors.Is(err, service.ErrRideNotActive),
		errors.Is(err, service.ErrRideAlreadyCancelled),
		errors.Is(err, service.ErrDriverLocationUnknown),
		errors.Is(err, service.ErrBillingInProgress):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrDriverNotAssignedToRide),
		errors.Is(err, service.ErrGracePeriodExpired):
		return http.StatusForbidden

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"driverops/internal/domain"
	"driverops/internal/service"
)

// RideHandler handles HTTP requests for rides, including the
// driver-initiated cancellation endpoint.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// CreateRideRequest is the HTTP request body for requesting a ride.
type CreateRideRequest struct {
	RiderID              string  `json:"rider_id"`
	PickupLat            float64 `json:"pickup_lat"`
	PickupLng            float64 `json:"pickup_lng"`
	RequestedVehicleType string  `json:"requested_vehicle_type"`
}

// RideResponse is the HTTP response for ride operations.
type RideResponse struct {
	ID                   string     `json:"id"`
	RiderID              string     `json:"rider_id"`
	PickupLat            float64    `json:"pickup_lat"`
	PickupLng            float64    `json:"pickup_lng"`
	RequestedVehicleType string     `json:"requested_vehicle_type"`
	Status               string     `json:"status"`
	AssignedDriverID     string     `json:"assigned_driver_id,omitempty"`
	DriverAcceptedAt     *time.Time `json:"driver_accepted_at,omitempty"`
	ArrivedAtPickupAt    *time.Time `json:"arrived_at_pickup_at,omitempty"`
	CancelledAt          *time.Time `json:"cancelled_at,omitempty"`
	CancellationCategory string     `json:"cancellation_category,omitempty"`
	RiderCharged         float64    `json:"rider_charged_amount"`
	DriverCompensation   float64    `json:"driver_compensation_amount"`
	DriverStrikeType     string     `json:"driver_strike_type,omitempty"`
}

func rideResponse(ride *domain.Ride) RideResponse {
	return RideResponse{
		ID:                   ride.ID,
		RiderID:              ride.RiderID,
		PickupLat:            ride.PickupLat,
		PickupLng:            ride.PickupLng,
		RequestedVehicleType: ride.RequestedVehicleType,
		Status:               string(ride.Status),
		AssignedDriverID:     ride.AssignedDriverID,
		DriverAcceptedAt:     ride.DriverAcceptedAt,
		ArrivedAtPickupAt:    ride.ArrivedAtPickupAt,
		CancelledAt:          ride.CancelledAt,
		CancellationCategory: string(ride.CancellationCategory),
		RiderCharged:         ride.RiderChargedAmount,
		DriverCompensation:   ride.DriverCompensationAmount,
		DriverStrikeType:     string(ride.DriverStrikeType),
	}
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		RiderID:              req.RiderID,
		PickupLat:            req.PickupLat,
		PickupLng:            req.PickupLng,
		RequestedVehicleType: req.RequestedVehicleType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, rideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, rideResponse(ride))
}

// MarkArrivedRequest is the HTTP request body for marking arrival.
type MarkArrivedRequest struct {
	DriverID string `json:"driver_id"`
}

// MarkArrived handles POST /v1/rides/:id/arrived
func (h *RideHandler) MarkArrived(c *gin.Context) {
	var req MarkArrivedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.MarkArrived(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideResponse(ride))
}

// CancelRideRequest is the HTTP request body for a driver cancellation.
// Call-attempt evidence comes from the driver app with the cancellation.
type CancelRideRequest struct {
	DriverID             string     `json:"driver_id"`
	ReasonType           string     `json:"reason_type"`
	RiderCallAttempted   bool       `json:"rider_call_attempted"`
	RiderCallAttemptedAt *time.Time `json:"rider_call_attempted_at"`
}

// CancelOutcomeResponse is the HTTP shape of a cancellation outcome.
type CancelOutcomeResponse struct {
	Ride               RideResponse `json:"ride"`
	Category           string       `json:"category"`
	RiderCharged       float64      `json:"rider_charged_amount"`
	DriverCompensation float64      `json:"driver_compensation_amount"`
	DriverStrikeType   string       `json:"driver_strike_type"`
	Message            string       `json:"message"`
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	var req CancelRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, outcome, err := h.rideService.CancelByDriver(c.Request.Context(), service.CancelByDriverRequest{
		RideID:               c.Param("id"),
		DriverID:             req.DriverID,
		ReasonType:           domain.CancellationReasonType(req.ReasonType),
		RiderCallAttempted:   req.RiderCallAttempted,
		RiderCallAttemptedAt: req.RiderCallAttemptedAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, CancelOutcomeResponse{
		Ride:               rideResponse(ride),
		Category:           string(outcome.Category),
		RiderCharged:       outcome.RiderChargedAmount,
		DriverCompensation: outcome.DriverCompensationAmount,
		DriverStrikeType:   string(outcome.DriverStrikeType),
		Message:            outcome.Message,
	})
}

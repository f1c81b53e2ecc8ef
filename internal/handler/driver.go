package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"driverops/internal/domain"
	"driverops/internal/service"
)

// DriverHandler handles HTTP requests for drivers, their subscriptions,
// and the overtime billing gate.
type DriverHandler struct {
	driverService       *service.DriverService
	rideService         *service.RideService
	subscriptionService *service.SubscriptionService
	overtimeService     *service.OvertimeService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(
	driverService *service.DriverService,
	rideService *service.RideService,
	subscriptionService *service.SubscriptionService,
	overtimeService *service.OvertimeService,
) *DriverHandler {
	return &DriverHandler{
		driverService:       driverService,
		rideService:         rideService,
		subscriptionService: subscriptionService,
		overtimeService:     overtimeService,
	}
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicle_type"`
}

// DriverResponse is the HTTP response for driver operations.
type DriverResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	VehicleType  string `json:"vehicle_type"`
	Status       string `json:"status"`
	LightStrikes int    `json:"light_strikes"`
	FullStrikes  int    `json:"full_strikes"`
}

func driverResponse(driver *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:           driver.ID,
		Name:         driver.Name,
		Phone:        driver.Phone,
		VehicleType:  driver.VehicleType,
		Status:       string(driver.Status),
		LightStrikes: driver.LightStrikes,
		FullStrikes:  driver.FullStrikes,
	}
}

// Register handles POST /v1/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	driver, err := h.driverService.Register(c.Request.Context(), service.RegisterDriverRequest{
		Name:        req.Name,
		Phone:       req.Phone,
		VehicleType: req.VehicleType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, driverResponse(driver))
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	drivers, err := h.driverService.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]DriverResponse, 0, len(drivers))
	for _, driver := range drivers {
		resp = append(resp, driverResponse(driver))
	}
	respondJSON(c, http.StatusOK, resp)
}

// GetDriver handles GET /v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.driverService.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, driverResponse(driver))
}

// UpdateLocationRequest is the HTTP request body for a location report.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UpdateLocation handles POST /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.driverService.UpdateLocation(c.Request.Context(), c.Param("id"), req.Lat, req.Lng); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// OvertimeResultResponse is the HTTP shape of an overtime billing result.
type OvertimeResultResponse struct {
	DriverID            string    `json:"driver_id"`
	SubscriptionID      string    `json:"subscription_id"`
	HoursBilled         int       `json:"hours_billed"`
	Charge              float64   `json:"charge"`
	WalletBalance       float64   `json:"wallet_balance"`
	BilledThrough       time.Time `json:"billed_through"`
	GraceEndsAt         time.Time `json:"grace_ends_at"`
	GracePeriodEnded    bool      `json:"grace_period_ended"`
	GraceHoursRemaining float64   `json:"grace_hours_remaining"`
}

func overtimeResponse(result *service.OvertimeResult) OvertimeResultResponse {
	return OvertimeResultResponse{
		DriverID:            result.DriverID,
		SubscriptionID:      result.SubscriptionID,
		HoursBilled:         result.HoursBilled,
		Charge:              result.Charge,
		WalletBalance:       result.WalletBalance,
		BilledThrough:       result.BilledThrough,
		GraceEndsAt:         result.GraceEndsAt,
		GracePeriodEnded:    result.GracePeriodEnded,
		GraceHoursRemaining: result.GraceHoursRemaining,
	}
}

// GoOnline handles POST /v1/drivers/:id/online
// Overtime billing runs first; a driver whose grace window has ended is
// refused and forced offline.
func (h *DriverHandler) GoOnline(c *gin.Context) {
	result, err := h.driverService.GoOnline(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrGracePeriodExpired) && result != nil {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   err.Error(),
				"billing": overtimeResponse(result),
			})
			return
		}
		respondError(c, err)
		return
	}

	resp := gin.H{"status": "ONLINE"}
	if result != nil {
		resp["billing"] = overtimeResponse(result)
	}
	respondJSON(c, http.StatusOK, resp)
}

// GoOffline handles POST /v1/drivers/:id/offline
func (h *DriverHandler) GoOffline(c *gin.Context) {
	if err := h.driverService.GoOffline(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"status": "OFFLINE"})
}

// AcceptRideRequest is the HTTP request body for accepting a ride.
type AcceptRideRequest struct {
	RideID string `json:"ride_id"`
}

// AcceptRide handles POST /v1/drivers/:id/accept
func (h *DriverHandler) AcceptRide(c *gin.Context) {
	var req AcceptRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.AcceptRide(c.Request.Context(), req.RideID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideResponse(ride))
}

// ApplyOvertime handles POST /v1/drivers/:id/billing/overtime
// On-demand or scheduled trigger for the overtime billing run.
func (h *DriverHandler) ApplyOvertime(c *gin.Context) {
	result, err := h.overtimeService.ApplyOvertimeBilling(c.Request.Context(), c.Param("id"), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	if result == nil {
		respondJSON(c, http.StatusOK, gin.H{"billable": false})
		return
	}

	respondJSON(c, http.StatusOK, overtimeResponse(result))
}

// GraceStatusResponse is the HTTP shape of a grace-window check.
type GraceStatusResponse struct {
	DriverID               string     `json:"driver_id"`
	HasExpiredSubscription bool       `json:"has_expired_subscription"`
	InGrace                bool       `json:"in_grace"`
	GracePeriodEnded       bool       `json:"grace_period_ended"`
	GraceHoursRemaining    float64    `json:"grace_hours_remaining"`
	GraceEndsAt            *time.Time `json:"grace_ends_at,omitempty"`
}

// GraceStatus handles GET /v1/drivers/:id/grace
func (h *DriverHandler) GraceStatus(c *gin.Context) {
	status, err := h.overtimeService.GraceStatus(c.Request.Context(), c.Param("id"), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, GraceStatusResponse{
		DriverID:               status.DriverID,
		HasExpiredSubscription: status.HasExpiredSubscription,
		InGrace:                status.InGrace,
		GracePeriodEnded:       status.GracePeriodEnded,
		GraceHoursRemaining:    status.GraceHoursRemaining,
		GraceEndsAt:            status.GraceEndsAt,
	})
}

// GrantSubscriptionRequest is the HTTP request body for granting a
// subscription.
type GrantSubscriptionRequest struct {
	DurationHours int `json:"duration_hours"`
}

// SubscriptionResponse is the HTTP shape of a subscription.
type SubscriptionResponse struct {
	ID                    string     `json:"id"`
	DriverID              string     `json:"driver_id"`
	ExpireAt              time.Time  `json:"expire_at"`
	LastOvertimeBillingAt *time.Time `json:"last_overtime_billing_at,omitempty"`
}

// GrantSubscription handles POST /v1/drivers/:id/subscriptions
func (h *DriverHandler) GrantSubscription(c *gin.Context) {
	var req GrantSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	sub, err := h.subscriptionService.Grant(c.Request.Context(), c.Param("id"), time.Duration(req.DurationHours)*time.Hour)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, SubscriptionResponse{
		ID:                    sub.ID,
		DriverID:              sub.DriverID,
		ExpireAt:              sub.ExpireAt,
		LastOvertimeBillingAt: sub.LastOvertimeBillingAt,
	})
}

// GetLatestSubscription handles GET /v1/drivers/:id/subscriptions/latest
func (h *DriverHandler) GetLatestSubscription(c *gin.Context) {
	sub, err := h.subscriptionService.GetLatest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if sub == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no subscription"})
		return
	}

	respondJSON(c, http.StatusOK, SubscriptionResponse{
		ID:                    sub.ID,
		DriverID:              sub.DriverID,
		ExpireAt:              sub.ExpireAt,
		LastOvertimeBillingAt: sub.LastOvertimeBillingAt,
	})
}

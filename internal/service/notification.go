package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"driverops/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationRideCancelled    NotificationType = "RIDE_CANCELLED"
	NotificationNoShowCharge     NotificationType = "NO_SHOW_CHARGE"
	NotificationStrikeRecorded   NotificationType = "STRIKE_RECORDED"
	NotificationOvertimeCharged  NotificationType = "OVERTIME_CHARGED"
	NotificationGraceEnding      NotificationType = "GRACE_ENDING"
	NotificationForcedOffline    NotificationType = "FORCED_OFFLINE"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string // User or Driver ID
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService handles notification delivery. Delivery is best
// effort everywhere it is used: a failed send never fails the operation
// that triggered it.
type NotificationService struct {
	// In a real system, this would have:
	// - Push notification client (FCM, APNS)
	// - SMS client (Twilio)
	// - WebSocket connections for real-time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyRideCancelled tells the rider their ride was cancelled by the
// driver, including any no-show charge.
func (s *NotificationService) NotifyRideCancelled(ctx context.Context, ride *domain.Ride, outcome *domain.CancellationOutcome) error {
	message := "The driver has cancelled your ride."
	notifType := NotificationRideCancelled
	if outcome.Category == domain.CategoryRiderNoShow {
		message = fmt.Sprintf("Your ride was cancelled after the driver waited at pickup. A no-show fee of %.0f applies.", outcome.RiderChargedAmount)
		notifType = NotificationNoShowCharge
	}

	notification := Notification{
		Type:        notifType,
		RecipientID: ride.RiderID,
		Title:       "Ride Cancelled",
		Message:     message,
		Data: map[string]interface{}{
			"ride_id":  ride.ID,
			"category": outcome.Category,
			"charge":   outcome.RiderChargedAmount,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyStrikeRecorded warns a driver that a cancellation strike was
// booked against them.
func (s *NotificationService) NotifyStrikeRecorded(ctx context.Context, driverID string, strike domain.StrikeType) error {
	notification := Notification{
		Type:        NotificationStrikeRecorded,
		RecipientID: driverID,
		Title:       "Cancellation Strike",
		Message:     fmt.Sprintf("A %s strike was recorded for your last cancellation. Repeated strikes can lead to suspension.", strike),
		Data: map[string]interface{}{
			"strike_type": strike,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyOvertimeCharged tells a driver their wallet was debited for
// overtime hours past subscription expiry.
func (s *NotificationService) NotifyOvertimeCharged(ctx context.Context, driverID string, hours int, charge, balance float64) error {
	notification := Notification{
		Type:        NotificationOvertimeCharged,
		RecipientID: driverID,
		Title:       "Overtime Charged",
		Message:     fmt.Sprintf("Your subscription has expired. %d hour(s) of overtime were charged (%.0f). Wallet balance: %.2f.", hours, charge, balance),
		Data: map[string]interface{}{
			"hours":   hours,
			"charge":  charge,
			"balance": balance,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyGraceEnding warns a driver how long they may keep working before
// being forced offline.
func (s *NotificationService) NotifyGraceEnding(ctx context.Context, driverID string, hoursRemaining float64) error {
	notification := Notification{
		Type:        NotificationGraceEnding,
		RecipientID: driverID,
		Title:       "Subscription Expired",
		Message:     fmt.Sprintf("Renew your subscription. You can keep working for %.1f more hour(s) before going offline.", hoursRemaining),
		Data: map[string]interface{}{
			"hours_remaining": hoursRemaining,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyForcedOffline tells a driver the grace window has ended.
func (s *NotificationService) NotifyForcedOffline(ctx context.Context, driverID string) error {
	notification := Notification{
		Type:        NotificationForcedOffline,
		RecipientID: driverID,
		Title:       "You Are Offline",
		Message:     "Your subscription grace period has ended. Renew to go back online.",
		CreatedAt:   time.Now(),
	}
	return s.send(ctx, notification)
}

// send delivers a notification (mock implementation).
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	// In a real implementation, this would push via FCM/APNS and persist
	// the notification for in-app history.

	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)

	return nil
}

package domain

import "time"

// DriverSubscription is a paid working period for a driver. After ExpireAt
// the driver accrues per-hour overtime charges for a bounded grace window.
type DriverSubscription struct {
	ID       string
	DriverID string
	ExpireAt time.Time

	// Checkpoint up to which overtime has been billed. Nil means no
	// overtime has been billed yet; billing starts at ExpireAt.
	LastOvertimeBillingAt *time.Time

	CreatedAt time.Time
}

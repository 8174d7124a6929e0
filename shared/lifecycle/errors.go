package lifecycle

import "errors"

var (
	// ErrTenantNotFound is returned when the tenant row does not exist.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrSubscriptionNotFound is returned by operations that require an
	// existing subscription row (everything except StartTrial and Activate).
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrPlanNotFound is returned when the referenced plan does not exist.
	ErrPlanNotFound = errors.New("subscription plan not found")

	// ErrPaymentNotFound is returned when the referenced payment does not exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrInvalidDuration is returned for non-positive durations.
	ErrInvalidDuration = errors.New("duration must be positive")

	// ErrInvalidAmount is returned for non-positive payment amounts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidStatus is returned by SetStatus for an unknown status value.
	ErrInvalidStatus = errors.New("invalid subscription status")

	// ErrConflict is returned when a concurrent writer updated the
	// subscription row between read and write. The core never retries
	// internally; retry policy belongs to the caller.
	ErrConflict = errors.New("subscription was modified concurrently")
)

package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rentiva/go-rental-saas/shared/models"
)

// Store is the persistence surface the lifecycle core depends on. The gorm
// implementation lives in store_gorm.go; tests use an in-memory fake.
type Store interface {
	// Tenants
	FindTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	SetTenantActive(ctx context.Context, id uuid.UUID, active bool) error

	// Plans
	FindPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	// FindDefaultPlan returns the cheapest active plan, used when a trial
	// subscription is created without an explicit plan.
	FindDefaultPlan(ctx context.Context) (*models.Plan, error)

	// Subscriptions
	FindSubscriptionByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	// UpdateSubscription persists sub with an optimistic version check and
	// returns ErrConflict when a concurrent writer got there first.
	UpdateSubscription(ctx context.Context, sub *models.Subscription) error

	// Payments
	CreatePayment(ctx context.Context, payment *models.Payment) error
	FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) error

	// FindLapsedActiveTenants returns the ids of tenants that are still
	// marked active while their ACTIVE subscription period ended before now.
	FindLapsedActiveTenants(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// Event is an audit record emitted on every lifecycle transition.
type Event struct {
	TenantID   uuid.UUID              `json:"tenant_id"`
	Action     string                 `json:"action"`
	Resource   string                 `json:"resource"`
	ResourceID string                 `json:"resource_id"`
	OldStatus  string                 `json:"old_status,omitempty"`
	NewStatus  string                 `json:"new_status,omitempty"`
	Actor      string                 `json:"actor,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Sink receives audit events. Delivery is fire-and-forget: the core never
// blocks on, or fails because of, the sink.
type Sink interface {
	Record(ctx context.Context, event Event)
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) Record(context.Context, Event) {}

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rentiva/go-rental-saas/shared/models"
)

// GormStore is the Postgres-backed Store implementation.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by the given gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to fetch tenant: %w", err)
	}
	return &tenant, nil
}

func (s *GormStore) SetTenantActive(ctx context.Context, id uuid.UUID, active bool) error {
	result := s.db.WithContext(ctx).Model(&models.Tenant{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to update tenant active flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTenantNotFound
	}
	return nil
}

func (s *GormStore) FindPlan(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	var plan models.Plan
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to fetch plan: %w", err)
	}
	return &plan, nil
}

func (s *GormStore) FindDefaultPlan(ctx context.Context) (*models.Plan, error) {
	var plan models.Plan
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("price asc").
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to fetch default plan: %w", err)
	}
	return &plan, nil
}

func (s *GormStore) FindSubscriptionByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to fetch subscription: %w", err)
	}
	return &sub, nil
}

func (s *GormStore) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// UpdateSubscription persists the row with an optimistic version check.
// The WHERE clause matches the version the caller read; zero rows affected
// means another writer got there first and the caller sees ErrConflict.
func (s *GormStore) UpdateSubscription(ctx context.Context, sub *models.Subscription) error {
	readVersion := sub.Version
	sub.Version = readVersion + 1

	result := s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ? AND version = ?", sub.ID, readVersion).
		Select("plan_id", "status", "interval", "current_period_start", "current_period_end",
			"trial_ends_at", "canceled_at", "payment_method", "last_payment_status",
			"last_payment_date", "version", "updated_at").
		Updates(sub)
	if result.Error != nil {
		sub.Version = readVersion
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		sub.Version = readVersion
		return ErrConflict
	}
	return nil
}

func (s *GormStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (s *GormStore) FindPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment: %w", err)
	}
	return &payment, nil
}

func (s *GormStore) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) error {
	result := s.db.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update payment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (s *GormStore) FindLapsedActiveTenants(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Joins("JOIN subscriptions ON subscriptions.tenant_id = tenants.id").
		Where("tenants.is_active = ?", true).
		Where("subscriptions.status = ?", models.SubscriptionActive).
		Where("subscriptions.current_period_end < ?", now).
		Pluck("tenants.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select lapsed tenants: %w", err)
	}
	return ids, nil
}

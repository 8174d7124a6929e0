package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus represents the billing status of a tenant subscription
type SubscriptionStatus string

const (
	SubscriptionTrial     SubscriptionStatus = "TRIAL"
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionPastDue   SubscriptionStatus = "PAST_DUE"
	SubscriptionSuspended SubscriptionStatus = "SUSPENDED"
	SubscriptionCanceled  SubscriptionStatus = "CANCELED"
)

// BillingInterval represents the billing cadence of a subscription
type BillingInterval string

const (
	IntervalMonthly BillingInterval = "MONTHLY"
	IntervalYearly  BillingInterval = "YEARLY"
)

// Subscription is the lifecycle record tracking a tenant's billing status.
// One-to-one with Tenant; switching plans mutates the same row.
type Subscription struct {
	ID                 uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID           uuid.UUID          `json:"tenant_id" gorm:"type:uuid;uniqueIndex;not null"`
	PlanID             uuid.UUID          `json:"plan_id" gorm:"type:uuid;not null;index"`
	Status             SubscriptionStatus `json:"status" gorm:"type:varchar(20);not null;default:'TRIAL';index"`
	Interval           BillingInterval    `json:"interval" gorm:"type:varchar(10);default:'MONTHLY'"`
	CurrentPeriodStart time.Time          `json:"current_period_start" gorm:"not null"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end" gorm:"not null;index"`
	TrialEndsAt        *time.Time         `json:"trial_ends_at"`
	CanceledAt         *time.Time         `json:"canceled_at"`
	PaymentMethod      string             `json:"payment_method" gorm:"default:'MANUAL'"`
	LastPaymentStatus  PaymentStatus      `json:"last_payment_status" gorm:"type:varchar(20)"`
	LastPaymentDate    *time.Time         `json:"last_payment_date"`

	// Version guards concurrent read-modify-write cycles. Updates match on
	// the version read and bump it, so a lost update surfaces as a conflict.
	Version int `json:"version" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Plan   *Plan   `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
}

// TableName returns the table name for the Subscription model
func (Subscription) TableName() string {
	return "subscriptions"
}

// HasLapsed reports whether the paid-for period ended before the given time.
func (s *Subscription) HasLapsed(now time.Time) bool {
	return s.CurrentPeriodEnd.Before(now)
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the outcome of a billing event
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Payment is an append-only ledger entry for a tenant billing event.
// Rows are never mutated except for the explicit status-update operation.
type Payment struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID    uuid.UUID     `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Amount      float64       `json:"amount" gorm:"not null"`
	Currency    string        `json:"currency" gorm:"type:varchar(3);default:'EUR'"`
	Provider    string        `json:"provider" gorm:"not null"` // MANUAL, CASH, BANK_TRANSFER
	Status      PaymentStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Description string        `json:"description"`
	CreatedAt   time.Time     `json:"created_at"`

	// Relationships
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "tenant_subscription_payments"
}

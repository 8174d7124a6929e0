package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog records an administrative or automated action against a tenant.
// Rows are written by the audit consumer from the audit-events topic.
type AuditLog struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID   *uuid.UUID     `json:"tenant_id" gorm:"type:uuid;index"`
	Action     string         `json:"action" gorm:"not null;index"`
	Resource   string         `json:"resource" gorm:"not null"`
	ResourceID string         `json:"resource_id"`
	Actor      string         `json:"actor"`
	Details    datatypes.JSON `json:"details" gorm:"type:jsonb;default:'{}'"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

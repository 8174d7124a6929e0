package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant represents a rental company account in the multi-tenant system
type Tenant struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string         `json:"name" gorm:"not null"`
	CompanyName string         `json:"company_name"`
	Subdomain   string         `json:"subdomain" gorm:"uniqueIndex"`
	Country     string         `json:"country" gorm:"type:varchar(2);default:'AL'"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Relationships
	Subscription *Subscription `json:"subscription,omitempty" gorm:"foreignKey:TenantID"`
	Users        []User        `json:"users,omitempty" gorm:"foreignKey:TenantID"`
	Payments     []Payment     `json:"payments,omitempty" gorm:"foreignKey:TenantID"`
}

// TableName returns the table name for the Tenant model
func (Tenant) TableName() string {
	return "tenants"
}

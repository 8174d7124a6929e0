package models

import (
	"time"

	"github.com/google/uuid"
)

// Plan represents a priced subscription tier
type Plan struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	DisplayName string    `json:"display_name" gorm:"not null"`
	Price       float64   `json:"price" gorm:"not null"` // monthly price
	YearlyPrice *float64  `json:"yearly_price"`          // nil means derived as Price * 10
	Currency    string    `json:"currency" gorm:"type:varchar(3);default:'EUR'"`

	// Resource limits enforced by the application layer
	MaxVehicles int `json:"max_vehicles" gorm:"default:10"`
	MaxUsers    int `json:"max_users" gorm:"default:5"`
	MaxBranches int `json:"max_branches" gorm:"default:1"`

	IsActive  bool      `json:"is_active" gorm:"default:true"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Plan model
func (Plan) TableName() string {
	return "subscription_plans"
}

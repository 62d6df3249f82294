package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a buyer record. TotalOrders and TotalSpent are aggregates
// recomputed by a background job after checkout; they are not authoritative
// mid-flight.
type Customer struct {
	ID          string    `gorm:"primaryKey;size:36"             json:"id"`
	Name        string    `gorm:"size:255;not null;index"        json:"name"`
	Email       string    `gorm:"size:255;not null"              json:"email"`
	Phone       string    `gorm:"size:50;not null"               json:"phone"`
	TotalOrders int       `gorm:"not null;default:0"             json:"total_orders"`
	TotalSpent  float64   `gorm:"not null;default:0"             json:"total_spent"`
	Status      string    `gorm:"size:50;not null;default:active" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Customer) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

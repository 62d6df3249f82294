package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a sellable item in the catalogue.
type Product struct {
	ID        string    `gorm:"primaryKey;size:36"      json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	Price     float64   `gorm:"not null"                json:"price"`
	Category  string    `gorm:"size:100;not null;index" json:"category"`
	Stock     int       `gorm:"not null;default:0"      json:"stock"`
	Barcode   *string   `gorm:"size:100"                json:"barcode"`
	ImageURL  *string   `gorm:"size:512"                json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is an immutable sale record captured at checkout.
type Order struct {
	ID            string      `gorm:"primaryKey;size:36"           json:"id"`
	CustomerID    *string     `gorm:"size:36;index"                json:"customer_id"`
	TotalAmount   float64     `gorm:"not null"                     json:"total_amount"`
	TaxAmount     float64     `gorm:"not null"                     json:"tax_amount"`
	PaymentMethod string      `gorm:"size:50;not null"             json:"payment_method"`
	PaymentStatus string      `gorm:"size:50;not null;default:completed" json:"payment_status"`
	CreatedBy     *string     `gorm:"size:36;index"                json:"created_by"`
	CreatedAt     time.Time   `json:"created_at"`
	Customer      *Customer   `gorm:"foreignKey:CustomerID"        json:"customer,omitempty"`
	Creator       *UserProfile `gorm:"foreignKey:CreatedBy"        json:"creator,omitempty"`
	Items         []OrderItem `gorm:"foreignKey:OrderID"           json:"items,omitempty"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem is one line of an order. TotalPrice is computed once at insert
// and never re-validated.
type OrderItem struct {
	ID         string   `gorm:"primaryKey;size:36"  json:"id"`
	OrderID    string   `gorm:"size:36;index;not null" json:"order_id"`
	ProductID  string   `gorm:"size:36;index;not null" json:"product_id"`
	Quantity   int      `gorm:"not null"            json:"quantity"`
	UnitPrice  float64  `gorm:"not null"            json:"unit_price"`
	TotalPrice float64  `gorm:"not null"            json:"total_price"`
	Product    *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (i *OrderItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

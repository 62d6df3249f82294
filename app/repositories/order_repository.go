package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kasirin/kasirin/app/models"
	"github.com/kasirin/kasirin/pkg/metrics"
)

// OrderRepository persists orders and their line items.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a repository on the given handle.
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// List returns all orders newest first, with the customer, the creating
// user's profile, and each item's product preloaded.
func (r *OrderRepository) List(ctx context.Context) ([]models.Order, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Creator").
		Preload("Items.Product").
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	return orders, nil
}

// Find returns one order with the same preloads as List.
func (r *OrderRepository) Find(ctx context.Context, id string) (*models.Order, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Creator").
		Preload("Items.Product").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("orders: find %s: %w", id, err)
	}
	return &order, nil
}

// Create inserts the order row only. Items go in separately, matching the
// two-step capture sequence.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	if err := r.db.WithContext(ctx).Omit("Items", "Customer", "Creator").Create(o).Error; err != nil {
		return fmt.Errorf("orders: create: %w", err)
	}
	return nil
}

// CreateItems inserts all line items for an order in one statement.
func (r *OrderRepository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Omit("Product").Create(&items).Error; err != nil {
		return fmt.Errorf("orders: create items: %w", err)
	}
	return nil
}

// WithTx returns a copy of the repository bound to tx.
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

// Transaction runs fn inside a database transaction.
func (r *OrderRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

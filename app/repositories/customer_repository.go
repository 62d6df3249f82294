package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kasirin/kasirin/app/models"
	"github.com/kasirin/kasirin/pkg/metrics"
)

// CustomerRepository persists customers.
type CustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a repository on the given handle.
func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// List returns all customers sorted by name.
func (r *CustomerRepository) List(ctx context.Context) ([]models.Customer, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var customers []models.Customer
	if err := r.db.WithContext(ctx).Order("name asc").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("customers: list: %w", err)
	}
	return customers, nil
}

// Find returns the customer with the given id.
func (r *CustomerRepository) Find(ctx context.Context, id string) (*models.Customer, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("customers: find %s: %w", id, err)
	}
	return &customer, nil
}

// Create inserts a new customer.
func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("customers: create: %w", err)
	}
	return nil
}

// Update applies a partial update and returns the fresh row.
func (r *CustomerRepository) Update(ctx context.Context, id string, changes map[string]any) (*models.Customer, error) {
	defer metrics.ObserveDBQuery("update", time.Now())

	res := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return nil, fmt.Errorf("customers: update %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("customers: update %s: %w", id, gorm.ErrRecordNotFound)
	}
	return r.Find(ctx, id)
}

// Delete removes a customer.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	defer metrics.ObserveDBQuery("delete", time.Now())

	if err := r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("customers: delete %s: %w", id, err)
	}
	return nil
}

// RecalculateStats recomputes total_orders and total_spent from the orders
// table. Run by the background job after order placement.
func (r *CustomerRepository) RecalculateStats(ctx context.Context, id string) error {
	defer metrics.ObserveDBQuery("update", time.Now())

	var agg struct {
		Count int64
		Total float64
	}
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("COUNT(*) as count, COALESCE(SUM(total_amount), 0) as total").
		Where("customer_id = ?", id).
		Scan(&agg).Error
	if err != nil {
		return fmt.Errorf("customers: aggregate %s: %w", id, err)
	}

	err = r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_orders": agg.Count,
			"total_spent":  agg.Total,
		}).Error
	if err != nil {
		return fmt.Errorf("customers: update stats %s: %w", id, err)
	}
	return nil
}

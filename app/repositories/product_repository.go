// Package repositories holds the record access layer. Every repository is
// constructed with its own *gorm.DB handle; nothing here touches globals.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kasirin/kasirin/app/models"
	"github.com/kasirin/kasirin/pkg/metrics"
)

// ProductRepository persists products.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a repository on the given handle.
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns all products sorted by name.
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var products []models.Product
	if err := r.db.WithContext(ctx).Order("name asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	return products, nil
}

// Find returns the product with the given id.
func (r *ProductRepository) Find(ctx context.Context, id string) (*models.Product, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("products: find %s: %w", id, err)
	}
	return &product, nil
}

// Create inserts a new product. The BeforeCreate hook assigns the id.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveDBQuery("insert", time.Now())

	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("products: create: %w", err)
	}
	return nil
}

// Update applies a partial update and returns the fresh row. Columns absent
// from changes keep their values.
func (r *ProductRepository) Update(ctx context.Context, id string, changes map[string]any) (*models.Product, error) {
	defer metrics.ObserveDBQuery("update", time.Now())

	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return nil, fmt.Errorf("products: update %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("products: update %s: %w", id, gorm.ErrRecordNotFound)
	}
	return r.Find(ctx, id)
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	defer metrics.ObserveDBQuery("delete", time.Now())

	if err := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("products: delete %s: %w", id, err)
	}
	return nil
}

// SetStock writes an absolute stock level. Order placement in its default
// mode uses the caller-supplied level, so concurrent orders can overwrite
// each other; the atomic mode uses DecrementStock instead.
func (r *ProductRepository) SetStock(ctx context.Context, id string, stock int) error {
	defer metrics.ObserveDBQuery("update", time.Now())

	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock", stock).Error
	if err != nil {
		return fmt.Errorf("products: set stock %s: %w", id, err)
	}
	return nil
}

// ErrInsufficientStock is reported by DecrementStock when the guarded
// update matches no row.
var ErrInsufficientStock = errors.New("insufficient stock")

// DecrementStock atomically subtracts quantity, refusing to go negative.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, quantity int) error {
	defer metrics.ObserveDBQuery("update", time.Now())

	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("products: decrement stock %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("products: decrement stock %s: %w", id, ErrInsufficientStock)
	}
	return nil
}

// WithTx returns a copy of the repository bound to tx.
func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

// Package services holds the business operations behind the HTTP handlers.
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kasirin/kasirin/app/models"
	"github.com/kasirin/kasirin/app/repositories"
	"github.com/kasirin/kasirin/pkg/collection"
	"github.com/kasirin/kasirin/pkg/event"
	"github.com/kasirin/kasirin/pkg/logger"
	"github.com/kasirin/kasirin/pkg/metrics"
	"github.com/kasirin/kasirin/pkg/queue"
)

// TaxRate applied to every order total.
const TaxRate = 0.10

// CartLine is one checkout line. UnitPrice and Stock are the values the
// terminal saw when the cart was built; the default capture mode trusts
// them as-is.
type CartLine struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Stock     int     `json:"stock"`
}

// PlaceOrderInput is the full checkout payload. Total is the amount the
// terminal displayed; the server records it as-is.
type PlaceOrderInput struct {
	CustomerID    *string    `json:"customer_id"`
	Total         float64    `json:"total"`
	PaymentMethod string     `json:"payment_method"`
	CreatedBy     *string    `json:"-"`
	Items         []CartLine `json:"cart"`
}

// RecalcCustomerStatsJob recomputes a customer's order aggregates in the
// background after checkout.
type RecalcCustomerStatsJob struct {
	CustomerID string `json:"customer_id"`
}

// statsRepo is bound at boot via InitJobs; the queue deserializes jobs with
// no constructor arguments.
var statsRepo *repositories.CustomerRepository

// InitJobs registers queue job types and their dependencies. Call once at
// boot, after the repositories exist.
func InitJobs(customers *repositories.CustomerRepository) {
	statsRepo = customers
	queue.Register("*services.RecalcCustomerStatsJob", func() queue.Job {
		return &RecalcCustomerStatsJob{}
	})
}

func (j *RecalcCustomerStatsJob) Handle() error {
	if statsRepo == nil {
		return fmt.Errorf("customer stats job: repository not initialised")
	}
	return statsRepo.RecalculateStats(context.Background(), j.CustomerID)
}

// OrderService captures orders.
type OrderService struct {
	orders   *repositories.OrderRepository
	products *repositories.ProductRepository
	atomic   bool
}

// NewOrderService creates the service. atomic selects the single-transaction
// capture mode with guarded stock decrements; the default mode replays the
// terminal's best-effort write sequence.
func NewOrderService(orders *repositories.OrderRepository, products *repositories.ProductRepository, atomic bool) *OrderService {
	return &OrderService{orders: orders, products: products, atomic: atomic}
}

// PlaceOrder writes the order, its items, and the stock updates, then kicks
// off the customer aggregate recompute. Returns the order with items
// attached (products not preloaded; callers re-fetch via the repository when
// they need the full graph).
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("orders: empty cart")
	}
	for _, line := range in.Items {
		if line.ProductID == "" || line.Quantity <= 0 {
			return nil, fmt.Errorf("orders: invalid line for product %q", line.ProductID)
		}
	}

	total := in.Total
	if total == 0 {
		total = collection.Sum(in.Items, func(l CartLine) float64 {
			return l.UnitPrice * float64(l.Quantity)
		})
	}

	order := &models.Order{
		CustomerID:    in.CustomerID,
		TotalAmount:   total,
		TaxAmount:     total * TaxRate,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: "completed",
		CreatedBy:     in.CreatedBy,
	}

	var err error
	if s.atomic {
		err = s.placeAtomic(ctx, order, in.Items)
	} else {
		err = s.placeBestEffort(ctx, order, in.Items)
	}
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreated.WithLabelValues(in.PaymentMethod).Inc()
	event.FireAsync("order.placed", order)

	if in.CustomerID != nil && *in.CustomerID != "" {
		job := &RecalcCustomerStatsJob{CustomerID: *in.CustomerID}
		if err := queue.Dispatch(job); err != nil {
			logger.Warn("orders: stats job dispatch failed", "customer", *in.CustomerID, "error", err)
		}
	}

	return order, nil
}

// placeBestEffort replays the original capture sequence: three separate
// writes with no transaction. The stock write is an absolute set to the
// terminal-supplied level minus the quantity, so two concurrent orders for
// the same product can lose an update. Accepted behavior in this mode.
func (s *OrderService) placeBestEffort(ctx context.Context, order *models.Order, lines []CartLine) error {
	if err := s.orders.Create(ctx, order); err != nil {
		return err
	}

	items := buildItems(order.ID, lines)
	if err := s.orders.CreateItems(ctx, items); err != nil {
		return err
	}
	order.Items = items

	for _, line := range lines {
		if err := s.products.SetStock(ctx, line.ProductID, line.Stock-line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// placeAtomic wraps all writes in one transaction and uses a guarded
// decrement, so insufficient stock fails the whole order.
func (s *OrderService) placeAtomic(ctx context.Context, order *models.Order, lines []CartLine) error {
	return s.orders.Transaction(ctx, func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		products := s.products.WithTx(tx)

		if err := orders.Create(ctx, order); err != nil {
			return err
		}

		items := buildItems(order.ID, lines)
		if err := orders.CreateItems(ctx, items); err != nil {
			return err
		}
		order.Items = items

		for _, line := range lines {
			if err := products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func buildItems(orderID string, lines []CartLine) []models.OrderItem {
	return collection.Map(lines, func(l CartLine) models.OrderItem {
		return models.OrderItem{
			OrderID:    orderID,
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			TotalPrice: l.UnitPrice * float64(l.Quantity),
		}
	})
}

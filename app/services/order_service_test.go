package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasirin/kasirin/app/models"
	"github.com/kasirin/kasirin/app/repositories"
	"github.com/kasirin/kasirin/app/services"
	"github.com/kasirin/kasirin/pkg/testkit"
)

func TestPlaceOrderWritesOrderItemsAndStock(t *testing.T) {
	db := testkit.OpenDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db)
	svc := services.NewOrderService(orders, products, false)

	coffee := testkit.SeedProduct(t, db, "Coffee", 5, 10)
	tea := testkit.SeedProduct(t, db, "Tea", 3, 8)

	order, err := svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		Total:         13,
		PaymentMethod: "cash",
		Items: []services.CartLine{
			{ProductID: coffee.ID, Quantity: 2, UnitPrice: 5, Stock: 10},
			{ProductID: tea.ID, Quantity: 1, UnitPrice: 3, Stock: 8},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, order.ID)

	assert.Equal(t, 13.0, order.TotalAmount)
	assert.InDelta(t, 1.3, order.TaxAmount, 1e-9)
	assert.Equal(t, "completed", order.PaymentStatus)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 10.0, order.Items[0].TotalPrice)

	var itemCount int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
	assert.EqualValues(t, 2, itemCount)

	got, err := products.Find(context.Background(), coffee.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Stock)
}

func TestPlaceOrderComputesTotalWhenOmitted(t *testing.T) {
	db := testkit.OpenDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db)
	svc := services.NewOrderService(orders, products, false)

	p := testkit.SeedProduct(t, db, "Juice", 4, 6)

	order, err := svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		PaymentMethod: "card",
		Items: []services.CartLine{
			{ProductID: p.ID, Quantity: 3, UnitPrice: 4, Stock: 6},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 12.0, order.TotalAmount)
	assert.InDelta(t, 1.2, order.TaxAmount, 1e-9)
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	svc := services.NewOrderService(nil, nil, false)
	_, err := svc.PlaceOrder(context.Background(), services.PlaceOrderInput{PaymentMethod: "cash"})
	assert.Error(t, err)
}

func TestPlaceOrderRejectsInvalidLine(t *testing.T) {
	svc := services.NewOrderService(nil, nil, false)
	_, err := svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		PaymentMethod: "cash",
		Items:         []services.CartLine{{ProductID: "p1", Quantity: 0}},
	})
	assert.Error(t, err)
}

// Two checkouts built against the same stock snapshot overwrite each
// other's stock write in the default capture mode. The second absolute
// set wins.
func TestBestEffortStockWriteLosesConcurrentUpdate(t *testing.T) {
	db := testkit.OpenDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db)
	svc := services.NewOrderService(orders, products, false)

	p := testkit.SeedProduct(t, db, "Coffee", 5, 10)
	line := services.CartLine{ProductID: p.ID, Quantity: 3, UnitPrice: 5, Stock: 10}

	for i := 0; i < 2; i++ {
		_, err := svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
			Total:         15,
			PaymentMethod: "cash",
			Items:         []services.CartLine{line},
		})
		require.NoError(t, err)
	}

	got, err := products.Find(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock, "absolute stock writes lose one of the two decrements")
}

func TestAtomicModeDecrementsStock(t *testing.T) {
	db := testkit.OpenDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db)
	svc := services.NewOrderService(orders, products, true)

	p := testkit.SeedProduct(t, db, "Coffee", 5, 10)
	line := services.CartLine{ProductID: p.ID, Quantity: 3, UnitPrice: 5, Stock: 10}

	for i := 0; i < 2; i++ {
		_, err := svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
			Total:         15,
			PaymentMethod: "cash",
			Items:         []services.CartLine{line},
		})
		require.NoError(t, err)
	}

	got, err := products.Find(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)
}

func TestAtomicModeRollsBackOnInsufficientStock(t *testing.T) {
	db := testkit.OpenDB(t)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db)
	svc := services.NewOrderService(orders, products, true)

	p := testkit.SeedProduct(t, db, "Coffee", 5, 2)

	_, err := svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		Total:         25,
		PaymentMethod: "cash",
		Items: []services.CartLine{
			{ProductID: p.ID, Quantity: 5, UnitPrice: 5, Stock: 2},
		},
	})
	require.ErrorIs(t, err, repositories.ErrInsufficientStock)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount, "failed checkout must not leave a partial order")

	got, ferr := products.Find(context.Background(), p.ID)
	require.NoError(t, ferr)
	assert.Equal(t, 2, got.Stock)
}

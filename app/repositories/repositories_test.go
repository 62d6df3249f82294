package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kasirin/kasirin/app/models"
	"github.com/kasirin/kasirin/app/repositories"
	"github.com/kasirin/kasirin/pkg/testkit"
)

func TestProductUpdateMissingRow(t *testing.T) {
	db := testkit.OpenDB(t)
	repo := repositories.NewProductRepository(db)

	_, err := repo.Update(context.Background(), "missing", map[string]any{"price": 2.0})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductDecrementStockGuard(t *testing.T) {
	db := testkit.OpenDB(t)
	repo := repositories.NewProductRepository(db)
	p := testkit.SeedProduct(t, db, "Coffee", 5, 3)

	require.NoError(t, repo.DecrementStock(context.Background(), p.ID, 2))

	err := repo.DecrementStock(context.Background(), p.ID, 2)
	assert.ErrorIs(t, err, repositories.ErrInsufficientStock)

	got, err := repo.Find(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock, "failed decrement must not change stock")
}

func TestProductListSortsByName(t *testing.T) {
	db := testkit.OpenDB(t)
	repo := repositories.NewProductRepository(db)
	testkit.SeedProduct(t, db, "Tea", 3, 5)
	testkit.SeedProduct(t, db, "Coffee", 5, 5)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Coffee", list[0].Name)
	assert.Equal(t, "Tea", list[1].Name)
}

func TestCustomerRecalculateStats(t *testing.T) {
	db := testkit.OpenDB(t)
	repo := repositories.NewCustomerRepository(db)
	c := testkit.SeedCustomer(t, db, "Budi", "budi@example.com")

	for _, amount := range []float64{10, 15.5} {
		require.NoError(t, db.Create(&models.Order{
			CustomerID:    &c.ID,
			TotalAmount:   amount,
			PaymentMethod: "cash",
			PaymentStatus: "completed",
		}).Error)
	}

	require.NoError(t, repo.RecalculateStats(context.Background(), c.ID))

	got, err := repo.Find(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalOrders)
	assert.InDelta(t, 25.5, got.TotalSpent, 1e-9)
}

func TestCustomerRecalculateStatsNoOrders(t *testing.T) {
	db := testkit.OpenDB(t)
	repo := repositories.NewCustomerRepository(db)
	c := testkit.SeedCustomer(t, db, "Siti", "siti@example.com")

	require.NoError(t, repo.RecalculateStats(context.Background(), c.ID))

	got, err := repo.Find(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Zero(t, got.TotalOrders)
	assert.Zero(t, got.TotalSpent)
}

func TestUserFindAbsentIsNil(t *testing.T) {
	db := testkit.OpenDB(t)
	repo := repositories.NewUserRepository(db)

	got, err := repo.Find(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOrderListPreloadsGraph(t *testing.T) {
	db := testkit.OpenDB(t)
	orders := repositories.NewOrderRepository(db)
	c := testkit.SeedCustomer(t, db, "Budi", "budi@example.com")
	p := testkit.SeedProduct(t, db, "Coffee", 5, 10)

	order := &models.Order{CustomerID: &c.ID, TotalAmount: 10, PaymentMethod: "cash", PaymentStatus: "completed"}
	require.NoError(t, orders.Create(context.Background(), order))
	require.NoError(t, orders.CreateItems(context.Background(), []models.OrderItem{
		{OrderID: order.ID, ProductID: p.ID, Quantity: 2, UnitPrice: 5, TotalPrice: 10},
	}))

	list, err := orders.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Customer)
	assert.Equal(t, "Budi", list[0].Customer.Name)
	require.Len(t, list[0].Items, 1)
	require.NotNil(t, list[0].Items[0].Product)
	assert.Equal(t, "Coffee", list[0].Items[0].Product.Name)
}

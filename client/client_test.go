package client_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasirin/kasirin/app/models"
	"github.com/kasirin/kasirin/client"
	"github.com/kasirin/kasirin/pkg/httpclient"
	"github.com/kasirin/kasirin/pkg/testkit"
)

func withTransport(t *testing.T) *testkit.MockTransport {
	t.Helper()
	mt := testkit.NewMockTransport()
	httpclient.DefaultClient.Transport = mt
	t.Cleanup(httpclient.ResetTransport)
	return mt
}

func TestProductsDecodesList(t *testing.T) {
	mt := withTransport(t)
	mt.Stub(http.MethodGet, "/api/products", http.StatusOK, []models.Product{
		{ID: "p1", Name: "Coffee", Price: 5, Stock: 10},
	})

	c := client.New("http://pos.local", "token", client.WithRetries(0))
	products, err := c.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Coffee", products[0].Name)
	assert.Equal(t, 1, mt.Calls(http.MethodGet, "/api/products"))
}

func TestPlaceOrderReturnsOrderID(t *testing.T) {
	mt := withTransport(t)
	mt.Stub(http.MethodPost, "/api/orders", http.StatusOK, map[string]any{
		"success": true, "order_id": "order-7",
	})

	c := client.New("http://pos.local", "token")
	id, err := c.PlaceOrder(context.Background(), client.OrderRequest{
		Total:         10,
		PaymentMethod: "cash",
		Cart: []client.CartLine{
			{ProductID: "p1", Quantity: 2, UnitPrice: 5, Stock: 10},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "order-7", id)
}

func TestAPIErrorCarriesServerMessage(t *testing.T) {
	mt := withTransport(t)
	mt.Stub(http.MethodPatch, "/api/users/u1", http.StatusForbidden, map[string]any{
		"error": "Forbidden",
	})

	c := client.New("http://pos.local", "token")
	_, err := c.UpdateUser(context.Background(), "u1", map[string]any{"role": "admin"})
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "Forbidden", apiErr.Message)
}

func TestUserAbsentIsNil(t *testing.T) {
	mt := withTransport(t)
	mt.Stub(http.MethodGet, "/api/users/missing", http.StatusOK, []byte("null"))

	c := client.New("http://pos.local", "token", client.WithRetries(0))
	profile, err := c.User(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

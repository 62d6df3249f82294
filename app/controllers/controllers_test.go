package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kasirin/kasirin/app/controllers"
	"github.com/kasirin/kasirin/app/models"
	"github.com/kasirin/kasirin/app/repositories"
	"github.com/kasirin/kasirin/app/routes"
	"github.com/kasirin/kasirin/app/services"
	"github.com/kasirin/kasirin/pkg/auth"
	"github.com/kasirin/kasirin/pkg/router"
	"github.com/kasirin/kasirin/pkg/testkit"
)

// api spins up the full route table over an in-memory database.
type api struct {
	srv   *httptest.Server
	db    *gorm.DB
	token string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db := testkit.OpenDB(t)

	products := repositories.NewProductRepository(db)
	customers := repositories.NewCustomerRepository(db)
	orders := repositories.NewOrderRepository(db)
	users := repositories.NewUserRepository(db)

	r := router.New()
	routes.Register(r, routes.Deps{
		Products:  controllers.NewProductController(products, nil),
		Customers: controllers.NewCustomerController(customers),
		Orders:    controllers.NewOrderController(orders, services.NewOrderService(orders, products, false)),
		Users:     controllers.NewUserController(users),
		Payments:  controllers.NewPaymentController(services.NewPaymentService(5 * time.Millisecond)),
	})

	srv := httptest.NewServer(r.Handler())
	t.Cleanup(srv.Close)

	token, err := auth.SignToken("user-1", "admin", time.Hour)
	require.NoError(t, err)

	return &api{srv: srv, db: db, token: token}
}

func (a *api) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+a.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, raw
}

func decodeErr(t *testing.T, raw []byte) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body.Error
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	a := newAPI(t)
	res, err := http.Get(a.srv.URL + "/api/products")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestProductLifecycle(t *testing.T) {
	a := newAPI(t)

	res, raw := a.do(t, http.MethodPost, "/api/products", map[string]any{
		"name": "Espresso", "price": 3.5, "category": "drinks", "stock": 20,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, string(raw))

	var created models.Product
	require.NoError(t, json.Unmarshal(raw, &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Espresso", created.Name)

	res, raw = a.do(t, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var list []models.Product
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)

	res, raw = a.do(t, http.MethodPatch, "/api/products/"+created.ID, map[string]any{"price": 4.0})
	require.Equal(t, http.StatusOK, res.StatusCode, string(raw))
	var updated models.Product
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, 4.0, updated.Price)
	assert.Equal(t, "Espresso", updated.Name, "patch must not clear untouched fields")

	res, raw = a.do(t, http.MethodDelete, "/api/products/"+created.ID, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"success": true}`, string(raw))

	_, raw = a.do(t, http.MethodGet, "/api/products", nil)
	list = nil
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Empty(t, list)
}

func TestProductValidation(t *testing.T) {
	a := newAPI(t)

	res, _ := a.do(t, http.MethodPost, "/api/products", map[string]any{"price": 3.5})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	res, raw := a.do(t, http.MethodPatch, "/api/products/nope", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "No fields to update", decodeErr(t, raw))
}

func TestCustomerDefaultsAndPartialUpdate(t *testing.T) {
	a := newAPI(t)

	res, raw := a.do(t, http.MethodPost, "/api/customers", map[string]any{
		"name": "Budi", "email": "budi@example.com", "phone": "0811111111",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, string(raw))
	var created models.Customer
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, "active", created.Status)

	res, raw = a.do(t, http.MethodPatch, "/api/customers/"+created.ID, map[string]any{"status": "inactive"})
	require.Equal(t, http.StatusOK, res.StatusCode, string(raw))
	var updated models.Customer
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, "inactive", updated.Status)
	assert.Equal(t, "Budi", updated.Name)

	res, _ = a.do(t, http.MethodPatch, "/api/customers/"+created.ID, map[string]any{"status": "sleeping"})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
}

func TestOrderCheckoutRespondsWithOrderID(t *testing.T) {
	a := newAPI(t)
	p := testkit.SeedProduct(t, a.db, "Latte", 5, 10)

	res, raw := a.do(t, http.MethodPost, "/api/orders", map[string]any{
		"total":          10,
		"payment_method": "cash",
		"cart": []map[string]any{
			{"product_id": p.ID, "quantity": 2, "unit_price": 5, "stock": 10},
		},
	})
	require.Equal(t, http.StatusOK, res.StatusCode, string(raw))

	var body struct {
		Success bool   `json:"success"`
		OrderID string `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.OrderID)

	res, raw = a.do(t, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(raw, &orders))
	require.Len(t, orders, 1)
	assert.InDelta(t, 1.0, orders[0].TaxAmount, 1e-9)
}

func TestPaymentSimulation(t *testing.T) {
	a := newAPI(t)

	res, raw := a.do(t, http.MethodPost, "/api/payment/simulate", map[string]any{
		"order_id": "order-9", "amount": 25.0,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, string(raw))

	var body struct {
		Success bool                 `json:"success"`
		Data    services.Transaction `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.True(t, body.Success)
	assert.Equal(t, "order-9", body.Data.OrderID)
	assert.Equal(t, 25.0, body.Data.GrossAmount)
	assert.Contains(t, body.Data.TransactionID, "TXN_")
}

func TestUserEndpoints(t *testing.T) {
	a := newAPI(t)

	res, raw := a.do(t, http.MethodPost, "/api/users", map[string]any{"full_name": "X"})
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	assert.Equal(t, "User creation not supported via this endpoint. Use signup flow.", decodeErr(t, raw))

	res, raw = a.do(t, http.MethodDelete, "/api/users/abc", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	assert.Equal(t, "User deletion not supported via this endpoint.", decodeErr(t, raw))

	// A missing profile is an empty result, not a 404.
	res, raw = a.do(t, http.MethodGet, "/api/users/missing", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "null", string(bytes.TrimSpace(raw)))

	profile := &models.UserProfile{ID: "user-2", FullName: strPtr("Siti"), Role: strPtr("viewer")}
	require.NoError(t, a.db.Create(profile).Error)

	res, raw = a.do(t, http.MethodPatch, "/api/users/user-2", map[string]any{"role": "staff"})
	require.Equal(t, http.StatusOK, res.StatusCode, string(raw))
	var updated models.UserProfile
	require.NoError(t, json.Unmarshal(raw, &updated))
	require.NotNil(t, updated.Role)
	assert.Equal(t, "staff", *updated.Role)
}

func TestUserRoleVocabulary(t *testing.T) {
	a := newAPI(t)
	profile := &models.UserProfile{ID: "user-9", FullName: strPtr("Budi"), Role: strPtr("viewer")}
	require.NoError(t, a.db.Create(profile).Error)

	for _, role := range []string{"admin", "staff", "viewer"} {
		res, raw := a.do(t, http.MethodPatch, "/api/users/user-9", map[string]any{"role": role})
		require.Equal(t, http.StatusOK, res.StatusCode, "role %q: %s", role, raw)
	}

	res, raw := a.do(t, http.MethodPatch, "/api/users/user-9", map[string]any{"role": "superuser"})
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Equal(t, "Validation failed", decodeErr(t, raw))
}

func TestUserUpdateRequiresAdminRole(t *testing.T) {
	a := newAPI(t)
	staffToken, err := auth.SignToken("user-3", "staff", time.Hour)
	require.NoError(t, err)
	a.token = staffToken

	res, _ := a.do(t, http.MethodPatch, "/api/users/user-2", map[string]any{"role": "staff"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func strPtr(s string) *string { return &s }

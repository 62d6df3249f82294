// Package client is a typed Go client for the Kasirin HTTP API.
//
// It wraps pkg/httpclient with the request and response shapes of each
// endpoint. Pair it with QueryCache and WatchChanges to keep list views
// fresh without polling.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kasirin/kasirin/app/models"
	"github.com/kasirin/kasirin/pkg/httpclient"
)

// APIError is a non-2xx response decoded into the server's error body.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("client: %s (%d): %s", e.Message, e.Status, e.Details)
	}
	return fmt.Sprintf("client: %s (%d)", e.Message, e.Status)
}

// Client calls the Kasirin API with a fixed base URL and bearer token.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	retries int
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetries sets the retry count for idempotent GET requests.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// New builds a client for the API at baseURL, e.g. "http://localhost:8080".
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		timeout: 10 * time.Second,
		retries: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	req := httpclient.Get(c.baseURL+path).
		Bearer(c.token).
		Timeout(c.timeout).
		Retry(c.retries, 500*time.Millisecond).
		WithContext(ctx)
	return c.send(req, dest)
}

func (c *Client) send(req *httpclient.Request, dest any) error {
	res, err := req.Send()
	if err != nil {
		return err
	}
	if !res.OK() {
		return decodeAPIError(res)
	}
	if dest == nil {
		return nil
	}
	return res.JSON(dest)
}

func (c *Client) mutate(ctx context.Context, req *httpclient.Request, body, dest any) error {
	req = req.Bearer(c.token).Timeout(c.timeout).WithContext(ctx)
	if body != nil {
		req = req.Body(body)
	}
	return c.send(req, dest)
}

func decodeAPIError(res *httpclient.Response) error {
	apiErr := &APIError{Status: res.StatusCode, Message: "request failed"}
	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if json.Unmarshal(res.Raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
	}
	return apiErr
}

// ─── Products ────────────────────────────────────────────────────────────

// ProductRequest is the create payload for a product.
type ProductRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Stock    int     `json:"stock"`
	Barcode  *string `json:"barcode,omitempty"`
	ImageURL *string `json:"image_url,omitempty"`
}

// Products lists the catalogue sorted by name.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.get(ctx, "/api/products", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProduct inserts a product and returns the stored record.
func (c *Client) CreateProduct(ctx context.Context, in ProductRequest) (*models.Product, error) {
	var out models.Product
	req := httpclient.Post(c.baseURL + "/api/products")
	if err := c.mutate(ctx, req, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct applies a partial update. Only the keys present in changes
// are written.
func (c *Client) UpdateProduct(ctx context.Context, id string, changes map[string]any) (*models.Product, error) {
	var out models.Product
	req := httpclient.Patch(c.baseURL + "/api/products/" + id)
	if err := c.mutate(ctx, req, changes, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	req := httpclient.Delete(c.baseURL + "/api/products/" + id)
	return c.mutate(ctx, req, nil, nil)
}

// ─── Customers ───────────────────────────────────────────────────────────

// CustomerRequest is the create payload for a customer.
type CustomerRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Status string `json:"status,omitempty"`
}

// Customers lists customers sorted by name.
func (c *Client) Customers(ctx context.Context) ([]models.Customer, error) {
	var out []models.Customer
	if err := c.get(ctx, "/api/customers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCustomer inserts a customer and returns the stored record.
func (c *Client) CreateCustomer(ctx context.Context, in CustomerRequest) (*models.Customer, error) {
	var out models.Customer
	req := httpclient.Post(c.baseURL + "/api/customers")
	if err := c.mutate(ctx, req, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCustomer applies a partial update.
func (c *Client) UpdateCustomer(ctx context.Context, id string, changes map[string]any) (*models.Customer, error) {
	var out models.Customer
	req := httpclient.Patch(c.baseURL + "/api/customers/" + id)
	if err := c.mutate(ctx, req, changes, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCustomer removes a customer.
func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	req := httpclient.Delete(c.baseURL + "/api/customers/" + id)
	return c.mutate(ctx, req, nil, nil)
}

// ─── Orders ──────────────────────────────────────────────────────────────

// CartLine is one line of an order request. Stock is the quantity the
// caller last saw; the server uses it for the post-sale stock write.
type CartLine struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Stock     int     `json:"stock"`
}

// OrderRequest is the checkout payload.
type OrderRequest struct {
	CustomerID    *string    `json:"customer_id,omitempty"`
	Total         float64    `json:"total"`
	PaymentMethod string     `json:"payment_method"`
	Cart          []CartLine `json:"cart"`
}

// Orders lists orders, newest first, with customer and line items attached.
func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := c.get(ctx, "/api/orders", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PlaceOrder submits a checkout and returns the new order id.
func (c *Client) PlaceOrder(ctx context.Context, in OrderRequest) (string, error) {
	var out struct {
		Success bool   `json:"success"`
		OrderID string `json:"order_id"`
	}
	req := httpclient.Post(c.baseURL + "/api/orders")
	if err := c.mutate(ctx, req, in, &out); err != nil {
		return "", err
	}
	return out.OrderID, nil
}

// ─── Payments ────────────────────────────────────────────────────────────

// PaymentResult is the simulated gateway response.
type PaymentResult struct {
	TransactionID     string  `json:"transaction_id"`
	OrderID           string  `json:"order_id"`
	GrossAmount       float64 `json:"gross_amount"`
	PaymentType       string  `json:"payment_type"`
	TransactionStatus string  `json:"transaction_status"`
	FraudStatus       string  `json:"fraud_status"`
	TransactionTime   string  `json:"transaction_time"`
}

// SimulatePayment runs the payment simulation for an order. The server
// holds the request for the configured gateway delay before answering.
func (c *Client) SimulatePayment(ctx context.Context, orderID string, amount float64) (*PaymentResult, error) {
	var out struct {
		Success bool          `json:"success"`
		Data    PaymentResult `json:"data"`
	}
	req := httpclient.Post(c.baseURL + "/api/payment/simulate")
	body := map[string]any{"order_id": orderID, "amount": amount}
	if err := c.mutate(ctx, req, body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ─── Users ───────────────────────────────────────────────────────────────

// Users lists all user profiles.
func (c *Client) Users(ctx context.Context) ([]models.UserProfile, error) {
	var out []models.UserProfile
	if err := c.get(ctx, "/api/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// User fetches a single profile. A missing profile is (nil, nil), matching
// the server's 200 null response.
func (c *Client) User(ctx context.Context, id string) (*models.UserProfile, error) {
	var out *models.UserProfile
	if err := c.get(ctx, "/api/users/"+id, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUser applies a partial profile update. Requires the admin role.
func (c *Client) UpdateUser(ctx context.Context, id string, changes map[string]any) (*models.UserProfile, error) {
	var out models.UserProfile
	req := httpclient.Patch(c.baseURL + "/api/users/" + id)
	if err := c.mutate(ctx, req, changes, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

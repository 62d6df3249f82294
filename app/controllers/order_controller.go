package controllers

import (
	"github.com/kasirin/kasirin/app/repositories"
	"github.com/kasirin/kasirin/app/services"
	"github.com/kasirin/kasirin/pkg/auth"
	"github.com/kasirin/kasirin/pkg/ctx"
)

// OrderController serves /api/orders.
type OrderController struct {
	orders  *repositories.OrderRepository
	service *services.OrderService
}

// NewOrderController creates the controller.
func NewOrderController(orders *repositories.OrderRepository, service *services.OrderService) *OrderController {
	return &OrderController{orders: orders, service: service}
}

// Index lists orders newest first with customer, creator, and item products
// attached.
func (oc *OrderController) Index(c *ctx.Context) {
	orders, err := oc.orders.List(c.Context())
	if err != nil {
		c.StoreError("Failed to fetch orders", err)
		return
	}
	c.OK(orders)
}

// Store captures a checkout. The creating user comes from the bearer token
// when present, never from the payload.
func (oc *OrderController) Store(c *ctx.Context) {
	var in services.PlaceOrderInput
	if !c.BindJSON(&in) {
		return
	}

	if id, ok := auth.FromCtx(c.Context()); ok {
		in.CreatedBy = &id.UserID
	}

	order, err := oc.service.PlaceOrder(c.Context(), in)
	if err != nil {
		c.StoreError("Failed to create order", err)
		return
	}

	c.OK(map[string]any{"success": true, "order_id": order.ID})
}

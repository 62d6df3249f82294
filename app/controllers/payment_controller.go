package controllers

import (
	"net/http"

	"github.com/kasirin/kasirin/app/services"
	"github.com/kasirin/kasirin/pkg/ctx"
)

// PaymentController serves /api/payment/simulate.
type PaymentController struct {
	payments *services.PaymentService
}

// NewPaymentController creates the controller.
func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// PaymentInput is the simulation payload.
type PaymentInput struct {
	OrderID string  `json:"order_id" validate:"required"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
}

// Simulate runs the fake gateway round trip and returns the captured
// transaction.
func (pc *PaymentController) Simulate(c *ctx.Context) {
	var in PaymentInput
	if !c.BindJSON(&in) {
		return
	}

	txn, err := pc.payments.Simulate(c.Context(), in.OrderID, in.Amount)
	if err != nil {
		c.Error(http.StatusInternalServerError, "Payment processing failed")
		return
	}

	c.OK(map[string]any{"success": true, "data": txn})
}

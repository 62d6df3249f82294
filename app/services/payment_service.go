package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kasirin/kasirin/pkg/metrics"
)

// Transaction is the fabricated gateway response.
type Transaction struct {
	TransactionID     string  `json:"transaction_id"`
	OrderID           string  `json:"order_id"`
	GrossAmount       float64 `json:"gross_amount"`
	PaymentType       string  `json:"payment_type"`
	TransactionStatus string  `json:"transaction_status"`
	FraudStatus       string  `json:"fraud_status"`
	TransactionTime   string  `json:"transaction_time"`
}

// PaymentService pretends to be a payment gateway. Every charge succeeds
// after a fixed processing delay.
type PaymentService struct {
	delay time.Duration
}

// NewPaymentService creates the service with the configured processing
// delay (PAYMENT_DELAY_MS).
func NewPaymentService(delay time.Duration) *PaymentService {
	return &PaymentService{delay: delay}
}

// Simulate waits the processing delay and returns a captured transaction.
// The only failure mode is context cancellation during the wait.
func (s *PaymentService) Simulate(ctx context.Context, orderID string, amount float64) (*Transaction, error) {
	start := time.Now()
	defer func() {
		metrics.PaymentSimDuration.Observe(time.Since(start).Seconds())
	}()

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("payment: simulation cancelled: %w", ctx.Err())
	case <-timer.C:
	}

	now := time.Now()
	return &Transaction{
		TransactionID:     fmt.Sprintf("TXN_%d", now.UnixMilli()),
		OrderID:           orderID,
		GrossAmount:       amount,
		PaymentType:       "credit_card",
		TransactionStatus: "capture",
		FraudStatus:       "accept",
		TransactionTime:   now.Format(time.RFC3339),
	}, nil
}

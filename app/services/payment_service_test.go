package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasirin/kasirin/app/services"
)

func TestSimulateReturnsCapturedTransaction(t *testing.T) {
	svc := services.NewPaymentService(10 * time.Millisecond)

	txn, err := svc.Simulate(context.Background(), "order-123", 42.5)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(txn.TransactionID, "TXN_"), "got %q", txn.TransactionID)
	assert.Equal(t, "order-123", txn.OrderID)
	assert.Equal(t, 42.5, txn.GrossAmount)
	assert.Equal(t, "credit_card", txn.PaymentType)
	assert.Equal(t, "capture", txn.TransactionStatus)
	assert.Equal(t, "accept", txn.FraudStatus)

	_, perr := time.Parse(time.RFC3339, txn.TransactionTime)
	assert.NoError(t, perr, "transaction time must be RFC3339")
}

func TestSimulateHonorsCancellation(t *testing.T) {
	svc := services.NewPaymentService(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := svc.Simulate(ctx, "order-123", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second, "cancellation must not wait out the delay")
}

package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasirin/kasirin/pkg/realtime"
)

func TestFetchRunsLoaderOnceUntilInvalidated(t *testing.T) {
	qc := NewQueryCache()
	calls := 0
	qc.Register("products", func(ctx context.Context) (any, error) {
		calls++
		return calls, nil
	})

	v, err := qc.Fetch(context.Background(), "products")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = qc.Fetch(context.Background(), "products")
	require.NoError(t, err)
	assert.Equal(t, 1, v, "cached result must be reused")

	qc.Invalidate("products")
	v, err = qc.Fetch(context.Background(), "products")
	require.NoError(t, err)
	assert.Equal(t, 2, v, "invalidation must force a re-fetch")
}

func TestFetchUnknownQuery(t *testing.T) {
	qc := NewQueryCache()
	_, err := qc.Fetch(context.Background(), "nope")
	assert.Error(t, err)
}

func TestLoaderErrorPropagates(t *testing.T) {
	qc := NewQueryCache()
	boom := errors.New("boom")
	qc.Register("products", func(ctx context.Context) (any, error) {
		return nil, boom
	})
	_, err := qc.Fetch(context.Background(), "products")
	assert.ErrorIs(t, err, boom)
}

func TestWatchChangesInvalidatesMappedQueries(t *testing.T) {
	qc := NewQueryCache()
	loads := map[string]int{}
	for _, name := range []string{"products", "customers", "orders"} {
		name := name
		qc.Register(name, func(ctx context.Context) (any, error) {
			loads[name]++
			return loads[name], nil
		})
	}
	for _, name := range []string{"products", "customers", "orders"} {
		_, err := qc.Fetch(context.Background(), name)
		require.NoError(t, err)
	}

	events := make(chan realtime.ChangeEvent, 4)
	events <- realtime.ChangeEvent{Table: "orders", Action: realtime.ActionInsert, ID: "o1"}
	events <- realtime.ChangeEvent{Table: "unknown_table", Action: realtime.ActionInsert}
	close(events)
	WatchChanges(events, qc)

	// An order touches both the orders list and customer aggregates.
	v, err := qc.Fetch(context.Background(), "orders")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	v, err = qc.Fetch(context.Background(), "customers")
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	v, err = qc.Fetch(context.Background(), "products")
	require.NoError(t, err)
	assert.Equal(t, 1, v, "products query untouched by order events")
}

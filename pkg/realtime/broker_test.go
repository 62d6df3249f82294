package realtime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasirin/kasirin/pkg/realtime"
)

func waitEvent(t *testing.T, sub *realtime.Subscription) realtime.ChangeEvent {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
		return realtime.ChangeEvent{}
	}
}

func TestBroker_WatchReceivesMatchingTable(t *testing.T) {
	b := realtime.NewBroker(4)
	defer b.Shutdown()

	sub := b.Watch("products")
	defer sub.Cancel()

	b.Publish(realtime.ChangeEvent{Table: "products", Action: realtime.ActionInsert, ID: "p1"})

	ev := waitEvent(t, sub)
	assert.Equal(t, "products", ev.Table)
	assert.Equal(t, realtime.ActionInsert, ev.Action)
	assert.Equal(t, "p1", ev.ID)
}

func TestBroker_OtherTableNotDelivered(t *testing.T) {
	b := realtime.NewBroker(4)
	defer b.Shutdown()

	sub := b.Watch("orders")
	defer sub.Cancel()

	b.Publish(realtime.ChangeEvent{Table: "products", Action: realtime.ActionUpdate})

	select {
	case ev := <-sub.Events():
		t.Fatalf("unexpected event for table %q", ev.Table)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroker_WildcardReceivesAll(t *testing.T) {
	b := realtime.NewBroker(4)
	defer b.Shutdown()

	sub := b.Watch(realtime.AllTables)
	defer sub.Cancel()

	b.Publish(realtime.ChangeEvent{Table: "customers", Action: realtime.ActionDelete, ID: "c9"})

	ev := waitEvent(t, sub)
	assert.Equal(t, "customers", ev.Table)
	assert.Equal(t, realtime.ActionDelete, ev.Action)
}

func TestBroker_CancelStopsDelivery(t *testing.T) {
	b := realtime.NewBroker(4)
	defer b.Shutdown()

	sub := b.Watch("products")
	sub.Cancel()
	sub.Cancel() // idempotent

	// Publishing after cancel must not panic or deliver.
	b.Publish(realtime.ChangeEvent{Table: "products", Action: realtime.ActionInsert})

	_, ok := <-sub.Events()
	assert.False(t, ok, "channel should be closed after Cancel")
}

func TestBroker_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := realtime.NewBroker(2)
	defer b.Shutdown()

	sub := b.Watch("orders")
	defer sub.Cancel()

	// Never read from sub; publish far more than its buffer holds.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			b.Publish(realtime.ChangeEvent{Table: "orders", Action: realtime.ActionInsert})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
}

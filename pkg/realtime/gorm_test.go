package realtime_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasirin/kasirin/app/models"
	"github.com/kasirin/kasirin/pkg/realtime"
	"github.com/kasirin/kasirin/pkg/testkit"
)

// capture records published events for assertions.
type capture struct {
	mu     sync.Mutex
	events []realtime.ChangeEvent
}

func (c *capture) Publish(ev realtime.ChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *capture) all() []realtime.ChangeEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]realtime.ChangeEvent(nil), c.events...)
}

func (c *capture) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

func TestInstrumentPublishesWrites(t *testing.T) {
	db := testkit.OpenDB(t)
	sink := &capture{}
	require.NoError(t, realtime.Instrument(db, sink))

	p := &models.Product{Name: "Coffee", Price: 5, Category: "drinks", Stock: 10}
	require.NoError(t, db.Create(p).Error)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, "products", events[0].Table)
	assert.Equal(t, realtime.ActionInsert, events[0].Action)
	assert.Equal(t, p.ID, events[0].ID)

	sink.reset()
	require.NoError(t, db.Model(p).Update("stock", 7).Error)
	events = sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, realtime.ActionUpdate, events[0].Action)

	sink.reset()
	require.NoError(t, db.Delete(p).Error)
	events = sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, realtime.ActionDelete, events[0].Action)
}

func TestInstrumentIgnoresUntrackedTables(t *testing.T) {
	db := testkit.OpenDB(t)
	sink := &capture{}
	require.NoError(t, realtime.Instrument(db, sink))

	order := &models.Order{PaymentMethod: "cash", PaymentStatus: "completed", TotalAmount: 5}
	require.NoError(t, db.Create(order).Error)
	sink.reset()

	item := &models.OrderItem{OrderID: order.ID, ProductID: "p1", Quantity: 1, UnitPrice: 5, TotalPrice: 5}
	require.NoError(t, db.Create(item).Error)
	assert.Empty(t, sink.all(), "order_items writes are not tracked")
}

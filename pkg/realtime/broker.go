// Package realtime publishes table change notifications to subscribers.
//
// Every create, update, or delete on a tracked table produces a ChangeEvent.
// Browsers receive events over SSE or WebSocket and re-fetch the affected
// query; server-side consumers call Watch directly:
//
//	sub := broker.Watch("products")
//	defer sub.Cancel()
//	for ev := range sub.Events() {
//	    // invalidate, re-fetch, etc.
//	}
//
// Delivery is at least once and unordered relative to commits. A subscriber
// that falls behind loses events rather than blocking writers.
package realtime

import (
	"sync"

	"github.com/kasirin/kasirin/pkg/logger"
	"github.com/kasirin/kasirin/pkg/metrics"
	"github.com/kasirin/kasirin/pkg/workerpool"
)

// Actions carried by a ChangeEvent.
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// AllTables subscribes to changes on every tracked table.
const AllTables = "*"

// ChangeEvent describes one row-level change.
type ChangeEvent struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
}

// Subscription is one subscriber's event feed. Events stop after Cancel.
type Subscription struct {
	broker *Broker
	table  string
	ch     chan ChangeEvent
	once   sync.Once
}

// Events returns the subscriber's channel. Closed by Cancel.
func (s *Subscription) Events() <-chan ChangeEvent { return s.ch }

// Cancel detaches the subscription and closes its channel.
// Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.broker.remove(s)
		close(s.ch)
	})
}

// Broker fans change events out to subscribers through a bounded worker
// pool so a slow subscriber cannot block the write path.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{} // table -> subscriptions
	pool *workerpool.Pool
}

// NewBroker creates a broker with the given fan-out worker count.
func NewBroker(workers int) *Broker {
	return &Broker{
		subs: make(map[string]map[*Subscription]struct{}),
		pool: workerpool.New(workers),
	}
}

// Watch subscribes to changes on table. Pass AllTables for every table.
func (b *Broker) Watch(table string) *Subscription {
	sub := &Subscription{
		broker: b,
		table:  table,
		ch:     make(chan ChangeEvent, 64),
	}
	b.mu.Lock()
	if b.subs[table] == nil {
		b.subs[table] = make(map[*Subscription]struct{})
	}
	b.subs[table][sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[sub.table]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(b.subs, sub.table)
		}
	}
}

// Publish delivers ev to all subscribers of ev.Table and of AllTables.
// It never blocks: delivery runs on the worker pool, and a full subscriber
// channel drops the event for that subscriber.
func (b *Broker) Publish(ev ChangeEvent) {
	metrics.ChangeEventsPublished.WithLabelValues(ev.Table, ev.Action).Inc()

	b.mu.RLock()
	targets := make([]*Subscription, 0, 8)
	for s := range b.subs[ev.Table] {
		targets = append(targets, s)
	}
	for s := range b.subs[AllTables] {
		targets = append(targets, s)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		sub := sub
		err := b.pool.Submit(func() {
			defer func() { recover() }() //nolint:errcheck // channel may close under us
			select {
			case sub.ch <- ev:
			default:
				// Subscriber is not keeping up; drop.
			}
		})
		if err != nil {
			logger.Warn("realtime: delivery pool saturated", "table", ev.Table)
		}
	}
}

// Shutdown stops the fan-out pool. Outstanding deliveries finish first.
func (b *Broker) Shutdown() {
	b.pool.Shutdown()
}

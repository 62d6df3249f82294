// Package event is a small in-process event dispatcher. Services fire
// events (order placed, product updated) and decoupled listeners react.
package event

import (
	"sync"

	"github.com/kasirin/kasirin/pkg/logger"
)

// Event carries a name and an arbitrary payload.
type Event struct {
	Name    string
	Payload any
}

// Listener handles a fired event.
type Listener func(Event)

// Dispatcher routes events to registered listeners.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	wg        sync.WaitGroup
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[string][]Listener)}
}

// Default is the application-wide dispatcher.
var Default = NewDispatcher()

// Listen registers a listener on the default dispatcher.
func Listen(name string, l Listener) { Default.Listen(name, l) }

// Fire delivers an event through the default dispatcher.
func Fire(name string, payload any) { Default.Fire(name, payload) }

// FireAsync delivers an event asynchronously through the default dispatcher.
func FireAsync(name string, payload any) { Default.FireAsync(name, payload) }

// Listen registers a listener for the named event.
func (d *Dispatcher) Listen(name string, l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[name] = append(d.listeners[name], l)
}

// Fire delivers the event to all listeners synchronously, in registration
// order. A panicking listener does not stop the others.
func (d *Dispatcher) Fire(name string, payload any) {
	d.mu.RLock()
	ls := d.listeners[name]
	d.mu.RUnlock()

	ev := Event{Name: name, Payload: payload}
	for _, l := range ls {
		d.deliver(l, ev)
	}
}

// FireAsync delivers the event in a separate goroutine per listener.
// Use Flush to wait for in-flight deliveries.
func (d *Dispatcher) FireAsync(name string, payload any) {
	d.mu.RLock()
	ls := d.listeners[name]
	d.mu.RUnlock()

	ev := Event{Name: name, Payload: payload}
	for _, l := range ls {
		d.wg.Add(1)
		go func(l Listener) {
			defer d.wg.Done()
			d.deliver(l, ev)
		}(l)
	}
}

// Flush blocks until all async deliveries have finished.
func (d *Dispatcher) Flush() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(l Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.L.Error("event listener panicked", "event", ev.Name, "panic", r)
		}
	}()
	l(ev)
}

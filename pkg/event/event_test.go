package event

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFireDeliversInRegistrationOrder(t *testing.T) {
	d := NewDispatcher()
	var got []int
	d.Listen("order.placed", func(ev Event) { got = append(got, 1) })
	d.Listen("order.placed", func(ev Event) { got = append(got, 2) })

	d.Fire("order.placed", nil)
	assert.Equal(t, []int{1, 2}, got)
}

func TestFireSkipsOtherEvents(t *testing.T) {
	d := NewDispatcher()
	called := false
	d.Listen("order.placed", func(ev Event) { called = true })

	d.Fire("product.updated", nil)
	assert.False(t, called)
}

func TestPanickingListenerDoesNotStopOthers(t *testing.T) {
	d := NewDispatcher()
	called := false
	d.Listen("order.placed", func(ev Event) { panic("boom") })
	d.Listen("order.placed", func(ev Event) { called = true })

	d.Fire("order.placed", nil)
	assert.True(t, called)
}

func TestFireAsyncFlush(t *testing.T) {
	d := NewDispatcher()
	var count atomic.Int32
	for i := 0; i < 3; i++ {
		d.Listen("order.placed", func(ev Event) { count.Add(1) })
	}

	d.FireAsync("order.placed", "payload")
	d.Flush()
	assert.EqualValues(t, 3, count.Load())
}

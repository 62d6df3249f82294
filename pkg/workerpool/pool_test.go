package workerpool_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasirin/kasirin/pkg/workerpool"
)

func TestFanOutDeliversEveryTask(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	// Simulates the change-event fan-out: each task delivers one event to a
	// subscriber counter.
	const events = 100
	var delivered atomic.Int64

	var wg sync.WaitGroup
	wg.Add(events)
	for i := 0; i < events; i++ {
		err := pool.SubmitWait(func() {
			defer wg.Done()
			delivered.Add(1)
		})
		require.NoError(t, err)
	}
	wg.Wait()

	assert.Equal(t, int64(events), delivered.Load())
}

func TestSubmitRejectsWhenQueueFull(t *testing.T) {
	// Size-1 pool whose only worker is blocked, the way a stalled realtime
	// subscriber would pin it.
	pool := workerpool.New(1)
	defer pool.Shutdown()

	blocker := make(chan struct{})
	running := make(chan struct{})

	_ = pool.SubmitWait(func() {
		close(running)
		<-blocker
	})
	<-running

	// Fill the 2-slot queue (buffer = 2x worker count).
	_ = pool.Submit(func() {})
	_ = pool.Submit(func() {})

	// Publishers must get an immediate rejection, never block.
	err := pool.Submit(func() {})
	assert.ErrorIs(t, err, workerpool.ErrPoolFull)

	close(blocker)
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()

	err := pool.Submit(func() {})
	assert.ErrorIs(t, err, workerpool.ErrPoolClosed)
}

func TestPanickingTaskDoesNotKillWorker(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	wg.Add(1)
	_ = pool.SubmitWait(func() {
		defer wg.Done()
		panic("subscriber callback blew up")
	})
	wg.Wait()

	// Delivery must keep flowing afterwards.
	next := make(chan struct{})
	_ = pool.SubmitWait(func() { close(next) })

	select {
	case <-next:
	case <-time.After(2 * time.Second):
		t.Fatal("pool stopped processing after a panicking task")
	}
}

func TestShutdownWaitsForInFlightTasks(t *testing.T) {
	pool := workerpool.New(10)

	var done atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		_ = pool.SubmitWait(func() {
			defer wg.Done()
			time.Sleep(time.Millisecond)
			done.Add(1)
		})
	}

	wg.Wait()
	pool.Shutdown()

	assert.Equal(t, int64(50), done.Load())
}

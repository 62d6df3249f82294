package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func makeEntry(interval time.Duration) *entry {
	return &entry{id: "t", interval: interval, task: func() {}}
}

func TestIsDueFirstRun(t *testing.T) {
	e := makeEntry(time.Hour)
	assert.True(t, isDue(e, time.Now()))
}

func TestIsDueRespectsInterval(t *testing.T) {
	e := makeEntry(time.Hour)
	e.lastRun = time.Now().Add(-30 * time.Minute)
	assert.False(t, isDue(e, time.Now()))

	e.lastRun = time.Now().Add(-2 * time.Hour)
	assert.True(t, isDue(e, time.Now()))
}

func TestWithoutOverlappingSkipsRunningTask(t *testing.T) {
	done := make(chan struct{})
	release := make(chan struct{})
	var runs int

	e := &entry{id: "t", interval: time.Millisecond, noOverlap: true}
	e.task = func() {
		runs++
		close(done)
		<-release
	}

	dispatch(e)
	<-done

	// Second dispatch while the first is still in flight.
	dispatch(e)
	close(release)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, runs)
}

package queue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasirin/kasirin/pkg/queue"
)

// processed records which customers had their stats refreshed, so tests can
// observe the payload after its round trip through the queue envelope.
var processed = struct {
	mu  sync.Mutex
	ids []string
}{}

func processedIDs() []string {
	processed.mu.Lock()
	defer processed.mu.Unlock()
	return append([]string(nil), processed.ids...)
}

type statsRefreshJob struct {
	CustomerID string `json:"customer_id"`
}

func (j *statsRefreshJob) Handle() error {
	processed.mu.Lock()
	processed.ids = append(processed.ids, j.CustomerID)
	processed.mu.Unlock()
	return nil
}

type lowStockAlertJob struct {
	ProductID string `json:"product_id"`
}

func (j *lowStockAlertJob) Handle() error {
	return errors.New("alert channel unreachable")
}

func init() {
	queue.Register("*queue_test.statsRefreshJob", func() queue.Job { return &statsRefreshJob{} })
	queue.Register("*queue_test.lowStockAlertJob", func() queue.Job { return &lowStockAlertJob{} })
	queue.StartWorkers(context.Background(), 2)
}

func TestDispatchCarriesPayloadToWorker(t *testing.T) {
	require.NoError(t, queue.Dispatch(&statsRefreshJob{CustomerID: "cus-1"}))

	assert.Eventually(t, func() bool {
		for _, id := range processedIDs() {
			if id == "cus-1" {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
}

func TestExhaustedRetriesLandInFailedJobs(t *testing.T) {
	queue.SetMaxRetry(1)
	defer queue.SetMaxRetry(3)

	require.NoError(t, queue.Dispatch(&lowStockAlertJob{ProductID: "prod-1"}))

	// 1 attempt + 1s backoff + slack.
	assert.Eventually(t, func() bool {
		for _, f := range queue.FailedJobs() {
			if _, ok := f.Job.(*lowStockAlertJob); ok {
				return true
			}
		}
		return false
	}, 4*time.Second, 50*time.Millisecond)
}

func TestConcurrentDispatchProcessesEveryJob(t *testing.T) {
	before := len(processedIDs())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			queue.Dispatch(&statsRefreshJob{CustomerID: "cus-bulk"}) //nolint:errcheck
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool {
		return len(processedIDs()) >= before+20
	}, 3*time.Second, 20*time.Millisecond)
}

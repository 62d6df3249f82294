package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kasirin/kasirin/pkg/httpclient"
	"github.com/kasirin/kasirin/pkg/logger"
	"github.com/kasirin/kasirin/pkg/realtime"
)

// QueryForTable maps a changed table to the query names it invalidates.
var QueryForTable = map[string][]string{
	"products":      {"products"},
	"customers":     {"customers"},
	"orders":        {"orders", "customers"},
	"user_profiles": {"users"},
}

// Changes opens the server's SSE stream and decodes change events until
// ctx is cancelled or the connection drops. The returned channel is
// closed on exit.
func (c *Client) Changes(ctx context.Context, tables ...string) (<-chan realtime.ChangeEvent, error) {
	url := c.baseURL + "/api/realtime"
	if len(tables) > 0 {
		url += "?tables=" + strings.Join(tables, ",")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("client: build stream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "text/event-stream")

	res, err := httpclient.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: open stream: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, &APIError{Status: res.StatusCode, Message: "stream rejected"}
	}

	out := make(chan realtime.ChangeEvent, 16)
	go func() {
		defer close(out)
		defer res.Body.Close()
		scanner := bufio.NewScanner(res.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			var ev realtime.ChangeEvent
			if err := json.Unmarshal([]byte(strings.TrimSpace(line[len("data:"):])), &ev); err != nil {
				logger.Warn("client: bad change event", "error", err)
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// WatchChanges invalidates queries as change events arrive, using
// QueryForTable to translate tables to query names. It blocks until the
// channel closes, so run it in its own goroutine.
func WatchChanges(events <-chan realtime.ChangeEvent, qc *QueryCache) {
	for ev := range events {
		names, ok := QueryForTable[ev.Table]
		if !ok {
			continue
		}
		for _, name := range names {
			qc.Invalidate(name)
		}
	}
}

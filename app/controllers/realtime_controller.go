package controllers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/kasirin/kasirin/pkg/ctx"
	"github.com/kasirin/kasirin/pkg/realtime"
	"github.com/kasirin/kasirin/pkg/sse"
	"github.com/kasirin/kasirin/pkg/ws"
)

// heartbeatInterval keeps idle SSE connections from being reaped by
// intermediaries.
const heartbeatInterval = 25 * time.Second

// RealtimeController streams change notifications to browsers over SSE and
// WebSocket.
type RealtimeController struct {
	broker *realtime.Broker
	hub    *ws.Hub
}

// NewRealtimeController creates the controller and starts the WebSocket hub
// feed. The hub rebroadcasts every change event to its clients.
func NewRealtimeController(broker *realtime.Broker) *RealtimeController {
	rc := &RealtimeController{
		broker: broker,
		hub:    ws.NewHub(),
	}
	go rc.hub.Run()
	go rc.feedHub()
	return rc
}

func (rc *RealtimeController) feedHub() {
	sub := rc.broker.Watch(realtime.AllTables)
	defer sub.Cancel()
	for ev := range sub.Events() {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		rc.hub.Broadcast <- payload
	}
}

// Stream serves the SSE feed. An optional ?tables=products,orders query
// restricts which tables the client hears about.
func (rc *RealtimeController) Stream(c *ctx.Context) {
	stream := sse.New(c.W, c.R)
	if stream == nil {
		return
	}

	filter := tableFilter(c.Query("tables"))

	sub := rc.broker.Watch(realtime.AllTables)
	defer sub.Cancel()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.R.Context().Done():
			return
		case <-heartbeat.C:
			stream.Comment("keepalive")
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if filter != nil && !filter[ev.Table] {
				continue
			}
			stream.Send("change", ev)
			if stream.IsClosed() {
				return
			}
		}
	}
}

// Socket upgrades the connection and attaches it to the change feed hub.
func (rc *RealtimeController) Socket(c *ctx.Context) {
	ws.Upgrade(c.W, c.R, rc.hub)
}

// tableFilter parses "products,orders" into a set. Nil means no filter.
func tableFilter(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	set := map[string]bool{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			set[t] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/kasirin/kasirin/pkg/logger"
)

const redisChannel = "kasirin:changes"

// RedisBridge mirrors change events across processes through Redis pub/sub.
// Local events go out on the channel; events published by other instances
// are fed into the local broker.
type RedisBridge struct {
	rdb    *redis.Client
	broker *Broker
	cancel context.CancelFunc
}

// NewRedisBridge wires broker to Redis and starts the subscriber loop.
// Call Close on shutdown.
func NewRedisBridge(rdb *redis.Client, broker *Broker) *RedisBridge {
	ctx, cancel := context.WithCancel(context.Background())
	b := &RedisBridge{rdb: rdb, broker: broker, cancel: cancel}
	go b.receive(ctx)
	return b
}

// Publish sends ev to every instance, including this one. The local broker
// receives it through the subscriber loop, so callers that use a bridge
// should publish here instead of on the broker directly.
func (b *RedisBridge) Publish(ev ChangeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Warn("realtime: marshal change event", "error", err)
		return
	}
	if err := b.rdb.Publish(context.Background(), redisChannel, payload).Err(); err != nil {
		logger.Warn("realtime: redis publish failed", "error", err)
		// Fall back to local delivery so in-process watchers still see it.
		b.broker.Publish(ev)
	}
}

func (b *RedisBridge) receive(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, redisChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Warn("realtime: bad change payload", "error", err)
				continue
			}
			b.broker.Publish(ev)
		}
	}
}

// Close stops the subscriber loop.
func (b *RedisBridge) Close() {
	b.cancel()
}

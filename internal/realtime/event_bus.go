package realtime

import (
	"context"
	"encoding/json"
	"time"

	"go-jobswipe-backend/pkg/logger"
)

const (
	busQueueSize      = 1024
	busPublishTimeout = 3 * time.Second
)

type outbound struct {
	topic   string
	payload []byte
}

// EventBus serializes events and hands them to the broker from a single goroutine,
// so events published in some order reach the broker in that same order.
// Publish never blocks; when the queue is full the event is dropped and logged.
type EventBus struct {
	broker Broker
	queue  chan outbound
}

func NewEventBus(broker Broker) *EventBus {
	return &EventBus{broker: broker, queue: make(chan outbound, busQueueSize)}
}

func (b *EventBus) Publish(_ context.Context, topic string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Log.Error("Failed to encode realtime event", "topic", topic, "error", err)
		return
	}
	select {
	case b.queue <- outbound{topic: topic, payload: payload}:
	default:
		logger.Log.Warn("Realtime queue full, dropping event", "topic", topic)
	}
}

// Run drains the queue until ctx is canceled.
func (b *EventBus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case out := <-b.queue:
			b.send(ctx, out)
		}
	}
}

func (b *EventBus) send(ctx context.Context, out outbound) {
	ctx, cancel := context.WithTimeout(ctx, busPublishTimeout)
	defer cancel()
	if err := b.broker.Publish(ctx, out.topic, out.payload); err != nil {
		logger.Log.Warn("Realtime publish failed", "topic", out.topic, "error", err)
	}
}

package realtime

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"go-jobswipe-backend/pkg/logger"
)

// Broker carries encoded events between API nodes and hands them to the local hub.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	// Run delivers remote events to the hub until ctx is canceled.
	Run(ctx context.Context) error
}

// LocalBroker is the single-node broker: publish goes straight to the hub.
type LocalBroker struct {
	hub *Hub
}

func NewLocalBroker(hub *Hub) *LocalBroker {
	return &LocalBroker{hub: hub}
}

func (b *LocalBroker) Publish(_ context.Context, topic string, payload []byte) error {
	b.hub.Deliver(topic, payload)
	return nil
}

func (b *LocalBroker) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

const redisChannelPrefix = "jobswipe:rt:"

// RedisBroker fans events out through Redis pub/sub so every node's hub sees them.
// Publishing never delivers locally; the node's own subscription does that.
type RedisBroker struct {
	client *redis.Client
	hub    *Hub
}

func NewRedisBroker(client *redis.Client, hub *Hub) *RedisBroker {
	return &RedisBroker{client: client, hub: hub}
}

func (b *RedisBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.client.Publish(ctx, redisChannelPrefix+topic, payload).Err()
}

func (b *RedisBroker) Run(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, redisChannelPrefix+"*")
	defer pubsub.Close()

	// Wait for the subscription to be confirmed before reporting readiness.
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	logger.Log.Info("Realtime broker subscribed", "pattern", redisChannelPrefix+"*")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			topic := strings.TrimPrefix(msg.Channel, redisChannelPrefix)
			b.hub.Deliver(topic, []byte(msg.Payload))
		}
	}
}

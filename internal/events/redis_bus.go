package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/harshitjain593/workree-chat/pkg/logger"
)

// RedisBus carries envelopes over Redis pub/sub. It is both the Publisher
// the chat stores write to and the Subscriber the WebSocket bridge reads
// from, so every API instance sees every event.
type RedisBus struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisBus(client *redis.Client, log *logger.Logger) *RedisBus {
	return &RedisBus{client: client, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, envelope Envelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return b.client.Publish(ctx, Channel(envelope), data).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, pattern string, handler Handler) error {
	pubsub := b.client.PSubscribe(ctx, pattern)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var envelope Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				if b.log != nil {
					b.log.Warnf("dropping malformed envelope on %s: %v", msg.Channel, err)
				}
				continue
			}
			handler(msg.Channel, envelope)
		}
	}
}

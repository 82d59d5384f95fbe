package websocket

import (
	"context"
	"encoding/json"

	"github.com/harshitjain593/workree-chat/internal/chat"
	"github.com/harshitjain593/workree-chat/internal/domain"
	"github.com/harshitjain593/workree-chat/internal/events"
	"github.com/harshitjain593/workree-chat/internal/presence"
	"github.com/harshitjain593/workree-chat/pkg/logger"
)

// RedisBridge is the transport side of the inbound-message path: it reads
// envelopes off the event bus, applies them to the session stores that hold
// the target conversation, and fans them out to subscribed WebSocket
// clients. Stores never republish what the bridge delivers, so events cross
// the bus exactly once.
type RedisBridge struct {
	subscriber events.Subscriber
	registry   *chat.Registry
	hub        *Hub
	log        *logger.Logger
}

func NewRedisBridge(subscriber events.Subscriber, registry *chat.Registry, hub *Hub, log *logger.Logger) *RedisBridge {
	return &RedisBridge{subscriber: subscriber, registry: registry, hub: hub, log: log}
}

// Run blocks until ctx is canceled.
func (b *RedisBridge) Run(ctx context.Context) error {
	return b.subscriber.Subscribe(ctx, "chat:*", func(channel string, envelope events.Envelope) {
		b.handle(ctx, channel, envelope)
	})
}

func (b *RedisBridge) handle(ctx context.Context, channel string, envelope events.Envelope) {
	switch envelope.EventType {
	case events.EventMessageSent:
		var msg domain.Message
		if err := envelope.DecodePayload(&msg); err != nil {
			b.warnf("decoding %s payload: %v", envelope.EventType, err)
			break
		}
		b.registry.Each(func(userID string, store *chat.Store) {
			if userID == msg.SenderID {
				return
			}
			// Stores without the conversation simply are not recipients.
			if err := store.Receive(ctx, msg); err != nil {
				return
			}
		})
	case events.EventTypingStarted, events.EventTypingStopped:
		var typing events.TypingPayload
		if err := envelope.DecodePayload(&typing); err != nil {
			b.warnf("decoding %s payload: %v", envelope.EventType, err)
			break
		}
		b.registry.Each(func(userID string, store *chat.Store) {
			if userID == typing.UserID {
				return
			}
			if envelope.EventType == events.EventTypingStarted {
				store.StartTyping(typing.ConversationID, typing.UserID)
			} else {
				store.StopTyping(typing.ConversationID, typing.UserID)
			}
		})
	case events.EventPresenceChanged:
		var status presence.Status
		if err := envelope.DecodePayload(&status); err != nil {
			b.warnf("decoding %s payload: %v", envelope.EventType, err)
			break
		}
		b.registry.Each(func(userID string, store *chat.Store) {
			store.SetUserPresence(status.UserID, status.IsOnline, status.LastSeen)
		})
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		b.warnf("re-encoding envelope: %v", err)
		return
	}
	b.hub.Broadcast(channel, payload)
}

func (b *RedisBridge) warnf(template string, args ...interface{}) {
	if b.log != nil {
		b.log.Warnf(template, args...)
	}
}

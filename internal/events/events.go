package events

import (
	"context"
	"encoding/json"
	"time"
)

type EventType string

const (
	EventMessageSent         EventType = "message.sent"
	EventConversationCreated EventType = "conversation.created"
	EventConversationDeleted EventType = "conversation.deleted"
	EventConversationRead    EventType = "conversation.read"
	EventTypingStarted       EventType = "typing.started"
	EventTypingStopped       EventType = "typing.stopped"
	EventPresenceChanged     EventType = "presence.changed"
)

// Envelope is the wire form every event travels in, both over Redis pub/sub
// and down to WebSocket clients.
type Envelope struct {
	EventType     EventType       `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope wraps payload, which must be JSON-marshalable.
func NewEnvelope(eventType EventType, aggregateType, aggregateID string, payload any) (Envelope, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, err
		}
		raw = data
	}
	return Envelope{
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		OccurredAt:    time.Now().UTC(),
		Payload:       raw,
	}, nil
}

// DecodePayload unmarshals the envelope payload into out.
func (e Envelope) DecodePayload(out any) error {
	return json.Unmarshal(e.Payload, out)
}

// TypingPayload rides in typing.started / typing.stopped envelopes.
type TypingPayload struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

type Handler func(channel string, envelope Envelope)

type Publisher interface {
	Publish(ctx context.Context, envelope Envelope) error
}

type Subscriber interface {
	// Subscribe blocks until ctx is canceled, invoking handler for every
	// envelope received on channels matching pattern.
	Subscribe(ctx context.Context, pattern string, handler Handler) error
}

// Channel returns the pub/sub channel an envelope is routed to.
func Channel(e Envelope) string {
	return "chat:" + e.AggregateType + ":" + e.AggregateID
}

// NopPublisher discards every event. Used when no broker is configured and
// in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, envelope Envelope) error { return nil }

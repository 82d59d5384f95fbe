package domain

import "time"

// Conversation is a thread between the session owner and one (direct) or
// more (team) participants.
//
// Invariants maintained by the chat store:
//   - LastMessage is the message with the greatest Timestamp in Messages,
//     nil iff Messages is empty.
//   - UpdatedAt equals LastMessage.Timestamp when LastMessage is set.
//   - UnreadCount counts messages received while the conversation was not
//     active; it is never negative.
//   - Direct conversations record exactly one participant (the peer); the
//     session owner is implicit.
//   - Team conversations carry a TeamID and one or more participants.
type Conversation struct {
	ID           string           `json:"id"`
	Type         ConversationType `json:"type"`
	Name         string           `json:"name"`
	AvatarURL    string           `json:"avatar_url,omitempty"`
	TeamID       string           `json:"team_id,omitempty"`
	Participants []Participant    `json:"participants"`
	Messages     []Message        `json:"messages"`
	LastMessage  *Message         `json:"last_message,omitempty"`
	UnreadCount  int              `json:"unread_count"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// HasParticipant reports whether userID is among the recorded participants.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hold a snapshot without sharing
// the store's slices.
func (c *Conversation) Clone() Conversation {
	out := *c
	out.Participants = append([]Participant(nil), c.Participants...)
	out.Messages = append([]Message(nil), c.Messages...)
	if c.LastMessage != nil {
		last := *c.LastMessage
		out.LastMessage = &last
	}
	return out
}

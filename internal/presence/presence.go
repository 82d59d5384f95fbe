package presence

import (
	"context"
	"time"
)

// Status is a user's current presence as reported by the source.
type Status struct {
	UserID   string    `json:"user_id"`
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

// Source supplies online/offline state for users. The chat store consults it
// when snapshotting participants instead of guessing, and the WebSocket layer
// drives SetOnline/SetOffline from connection lifecycle.
type Source interface {
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
	IsOnline(ctx context.Context, userID string) (bool, error)
	GetPresence(ctx context.Context, userID string) (Status, error)
	OnlineUsers(ctx context.Context) ([]string, error)
}

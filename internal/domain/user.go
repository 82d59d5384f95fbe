package domain

import "time"

// Participant is a user as known inside a conversation. The ID is the join
// key to the marketplace identity system; everything else is a value snapshot
// taken at conversation-creation time, so later profile changes do not
// propagate into existing conversations.
type Participant struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	Role      string     `json:"role,omitempty"`
	IsOnline  bool       `json:"is_online"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
}

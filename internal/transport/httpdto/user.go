package httpdto

import (
	"time"

	"github.com/harshitjain593/workree-chat/internal/domain"
)

type UserResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	Role      string     `json:"role,omitempty"`
	IsOnline  bool       `json:"is_online"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
}

type SearchUsersResponse struct {
	Users []UserResponse `json:"users"`
}

func FromParticipant(p domain.Participant) UserResponse {
	return UserResponse{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		AvatarURL: p.AvatarURL,
		Role:      p.Role,
		IsOnline:  p.IsOnline,
		LastSeen:  p.LastSeen,
	}
}

func FromParticipantSlice(users []domain.Participant) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, FromParticipant(u))
	}
	return out
}

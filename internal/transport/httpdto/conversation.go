package httpdto

import (
	"time"

	"github.com/harshitjain593/workree-chat/internal/domain"
)

type CreateDirectConversationRequest struct {
	Participant ParticipantPayload `json:"participant" binding:"required"`
}

type CreateTeamConversationRequest struct {
	TeamID   string               `json:"team_id" binding:"required"`
	TeamName string               `json:"team_name" binding:"required"`
	Members  []ParticipantPayload `json:"members" binding:"required,min=1"`
}

type ParticipantPayload struct {
	ID        string `json:"id" binding:"required"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	Role      string `json:"role"`
}

func (p ParticipantPayload) ToDomain() domain.Participant {
	return domain.Participant{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		AvatarURL: p.AvatarURL,
		Role:      p.Role,
	}
}

type ConversationResponse struct {
	ID           string            `json:"id"`
	Type         string            `json:"type"`
	Name         string            `json:"name"`
	AvatarURL    string            `json:"avatar_url,omitempty"`
	TeamID       string            `json:"team_id,omitempty"`
	Participants []UserResponse    `json:"participants"`
	LastMessage  *MessageResponse  `json:"last_message,omitempty"`
	UnreadCount  int               `json:"unread_count"`
	Messages     []MessageResponse `json:"messages,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type ListConversationsResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
	Total         int                    `json:"total"`
}

// FromConversation maps the domain conversation. Messages are included only
// when withMessages is set; list views stay light.
func FromConversation(conv domain.Conversation, withMessages bool) ConversationResponse {
	out := ConversationResponse{
		ID:          conv.ID,
		Type:        string(conv.Type),
		Name:        conv.Name,
		AvatarURL:   conv.AvatarURL,
		TeamID:      conv.TeamID,
		UnreadCount: conv.UnreadCount,
		CreatedAt:   conv.CreatedAt,
		UpdatedAt:   conv.UpdatedAt,
	}
	out.Participants = make([]UserResponse, 0, len(conv.Participants))
	for _, p := range conv.Participants {
		out.Participants = append(out.Participants, FromParticipant(p))
	}
	if conv.LastMessage != nil {
		last := FromMessage(*conv.LastMessage)
		out.LastMessage = &last
	}
	if withMessages {
		out.Messages = make([]MessageResponse, 0, len(conv.Messages))
		for _, m := range conv.Messages {
			out.Messages = append(out.Messages, FromMessage(m))
		}
	}
	return out
}

func FromConversationSlice(convs []domain.Conversation) []ConversationResponse {
	out := make([]ConversationResponse, 0, len(convs))
	for _, c := range convs {
		out = append(out, FromConversation(c, false))
	}
	return out
}

package httpdto

import (
	"time"

	"github.com/harshitjain593/workree-chat/internal/domain"
)

type SendMessageRequest struct {
	Content     string              `json:"content" binding:"required"`
	Type        string              `json:"type"`
	Attachments []AttachmentPayload `json:"attachments"`
}

type AttachmentPayload struct {
	ID       string `json:"id"`
	FileName string `json:"file_name" binding:"required"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
	URL      string `json:"url" binding:"required"`
}

func (a AttachmentPayload) ToDomain() domain.Attachment {
	return domain.Attachment{
		ID:       a.ID,
		FileName: a.FileName,
		FileSize: a.FileSize,
		MimeType: a.MimeType,
		URL:      a.URL,
	}
}

type TypingRequest struct {
	Typing bool `json:"typing"`
}

type TypingUsersResponse struct {
	ConversationID string   `json:"conversation_id"`
	UserIDs        []string `json:"user_ids"`
}

type MessageResponse struct {
	ID             string              `json:"id"`
	ConversationID string              `json:"conversation_id"`
	SenderID       string              `json:"sender_id"`
	SenderName     string              `json:"sender_name"`
	SenderAvatar   string              `json:"sender_avatar,omitempty"`
	Content        string              `json:"content"`
	Timestamp      time.Time           `json:"timestamp"`
	Read           bool                `json:"read"`
	Type           string              `json:"type"`
	Attachments    []AttachmentPayload `json:"attachments,omitempty"`
}

func FromMessage(m domain.Message) MessageResponse {
	out := MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		SenderName:     m.SenderName,
		SenderAvatar:   m.SenderAvatar,
		Content:        m.Content,
		Timestamp:      m.Timestamp,
		Read:           m.Read,
		Type:           string(m.Type),
	}
	for _, a := range m.Attachments {
		out.Attachments = append(out.Attachments, AttachmentPayload{
			ID:       a.ID,
			FileName: a.FileName,
			FileSize: a.FileSize,
			MimeType: a.MimeType,
			URL:      a.URL,
		})
	}
	return out
}

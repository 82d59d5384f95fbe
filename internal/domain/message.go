package domain

import "time"

// Attachment describes a file carried by an image or file message. The URL
// points at object storage; the store never holds file bytes.
type Attachment struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
	URL      string `json:"url"`
}

// Message is immutable once created except for the Read flag, which
// transitions false to true only. Timestamp is the authoritative sort key.
type Message struct {
	ID             string       `json:"id"`
	ConversationID string       `json:"conversation_id"`
	SenderID       string       `json:"sender_id"`
	SenderName     string       `json:"sender_name"`
	SenderAvatar   string       `json:"sender_avatar,omitempty"`
	Content        string       `json:"content"`
	Timestamp      time.Time    `json:"timestamp"`
	Read           bool         `json:"read"`
	Type           MessageType  `json:"type"`
	Attachments    []Attachment `json:"attachments,omitempty"`
}

package domain

type ConversationType string

const (
	ConversationTypeDirect ConversationType = "direct"
	ConversationTypeTeam   ConversationType = "team"
)

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeImage  MessageType = "image"
	MessageTypeFile   MessageType = "file"
	MessageTypeSystem MessageType = "system"
)

// SystemSenderID is the synthetic sender used for conversation-lifecycle
// announcements such as the team-chat welcome message.
const SystemSenderID = "system"

// Valid reports whether t is one of the known message types.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypeSystem:
		return true
	}
	return false
}

// CarriesAttachments reports whether messages of this type may carry
// attachment metadata.
func (t MessageType) CarriesAttachments() bool {
	return t == MessageTypeImage || t == MessageTypeFile
}

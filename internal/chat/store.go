package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harshitjain593/workree-chat/internal/domain"
	"github.com/harshitjain593/workree-chat/internal/events"
	"github.com/harshitjain593/workree-chat/internal/presence"
	chaterrors "github.com/harshitjain593/workree-chat/pkg/errors"
	"github.com/harshitjain593/workree-chat/pkg/logger"
)

// Directory is the user-lookup collaborator used to populate
// start-new-conversation search.
type Directory interface {
	Search(ctx context.Context, query string) ([]domain.Participant, error)
}

// Deps are the collaborators a Store needs. Zero-value fields get safe
// defaults from fill.
type Deps struct {
	Directory Directory
	Presence  presence.Source
	Publisher events.Publisher
	Logger    *logger.Logger
	Clock     func() time.Time
	NewID     func() string
}

func (d *Deps) fill() {
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
}

// Store is the single source of truth for one user's conversations,
// messages, and transient typing/presence state. All mutations go through
// its methods; the mutex keeps operations on the same conversation applied
// in invocation order.
//
// Conversations live in an indexed map and "active" is an id reference, so
// there is never a second copy of the active conversation to keep in sync.
type Store struct {
	mu   sync.Mutex
	self domain.Participant
	deps Deps

	conversations map[string]*domain.Conversation
	order         []string // conversation ids, most recently updated first
	activeID      string
	searchResults []domain.Participant
	online        map[string]struct{}
	typing        map[string]map[string]struct{}
}

// NewStore creates the session store for self.
func NewStore(self domain.Participant, deps Deps) *Store {
	deps.fill()
	return &Store{
		self:          self,
		deps:          deps,
		conversations: make(map[string]*domain.Conversation),
		online:        make(map[string]struct{}),
		typing:        make(map[string]map[string]struct{}),
	}
}

// Self returns the session owner.
func (s *Store) Self() domain.Participant { return s.self }

// Conversations returns the conversation list, most recently updated first.
// A non-empty filter matches case-insensitively against conversation and
// participant names.
func (s *Store) Conversations(filter string) []domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	filter = strings.ToLower(strings.TrimSpace(filter))
	out := make([]domain.Conversation, 0, len(s.order))
	for _, id := range s.order {
		conv := s.conversations[id]
		if filter != "" && !matchesFilter(conv, filter) {
			continue
		}
		out = append(out, conv.Clone())
	}
	return out
}

func matchesFilter(conv *domain.Conversation, filter string) bool {
	if strings.Contains(strings.ToLower(conv.Name), filter) {
		return true
	}
	for _, p := range conv.Participants {
		if strings.Contains(strings.ToLower(p.Name), filter) {
			return true
		}
	}
	return false
}

// Active returns the currently selected conversation, if any.
func (s *Store) Active() (domain.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[s.activeID]
	if !ok {
		return domain.Conversation{}, false
	}
	return conv.Clone(), true
}

// Select makes the conversation active, marks every message from other
// senders read and resets the unread counter. Selecting the already-active
// conversation re-applies the same sweep with no new effect.
func (s *Store) Select(ctx context.Context, conversationID string) (domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return domain.Conversation{}, fmt.Errorf("select conversation %s: %w", conversationID, chaterrors.ErrNotFound)
	}
	s.activeID = conversationID
	s.markReadLocked(conv)
	s.publish(ctx, events.EventConversationRead, "conversation", conv.ID, readReceipt{
		ConversationID: conv.ID,
		UserID:         s.self.ID,
	})
	return conv.Clone(), nil
}

type readReceipt struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

// CreateDirect starts a direct conversation with peer, or re-activates the
// existing one: the dedup key is the peer's user id, so calling this twice
// with the same peer yields the same conversation.
func (s *Store) CreateDirect(ctx context.Context, peer domain.Participant) (domain.Conversation, error) {
	if peer.ID == "" {
		return domain.Conversation{}, fmt.Errorf("create direct conversation: %w", chaterrors.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		conv := s.conversations[id]
		if conv.Type == domain.ConversationTypeDirect && conv.HasParticipant(peer.ID) {
			s.activeID = conv.ID
			s.markReadLocked(conv)
			return conv.Clone(), nil
		}
	}

	now := s.deps.Clock()
	peer.IsOnline = s.isOnline(ctx, peer.ID)
	conv := &domain.Conversation{
		ID:           s.deps.NewID(),
		Type:         domain.ConversationTypeDirect,
		Name:         peer.Name,
		AvatarURL:    peer.AvatarURL,
		Participants: []domain.Participant{peer},
		Messages:     []domain.Message{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.insertFront(conv)
	s.activeID = conv.ID

	s.publish(ctx, events.EventConversationCreated, "conversation", conv.ID, conv.Clone())
	return conv.Clone(), nil
}

// CreateTeam starts a team conversation seeded with a snapshot of the team
// members and a system welcome message. It is idempotent per team id: a
// second call for the same team re-activates the existing conversation.
func (s *Store) CreateTeam(ctx context.Context, teamID, teamName string, members []domain.Participant) (domain.Conversation, error) {
	if teamID == "" || teamName == "" {
		return domain.Conversation{}, fmt.Errorf("create team conversation: %w", chaterrors.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		conv := s.conversations[id]
		if conv.Type == domain.ConversationTypeTeam && conv.TeamID == teamID {
			s.activeID = conv.ID
			s.markReadLocked(conv)
			return conv.Clone(), nil
		}
	}

	now := s.deps.Clock()
	participants := make([]domain.Participant, 0, len(members))
	for _, m := range members {
		m.IsOnline = s.isOnline(ctx, m.ID)
		participants = append(participants, m)
	}

	conv := &domain.Conversation{
		ID:           s.deps.NewID(),
		Type:         domain.ConversationTypeTeam,
		Name:         teamName,
		TeamID:       teamID,
		Participants: participants,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	welcome := domain.Message{
		ID:             s.deps.NewID(),
		ConversationID: conv.ID,
		SenderID:       domain.SystemSenderID,
		SenderName:     "System",
		Content:        fmt.Sprintf("Welcome to %s! This is the beginning of your team conversation.", teamName),
		Timestamp:      now,
		Read:           true,
		Type:           domain.MessageTypeSystem,
	}
	conv.Messages = []domain.Message{welcome}
	s.syncLastMessage(conv)
	s.insertFront(conv)
	s.activeID = conv.ID

	s.publish(ctx, events.EventConversationCreated, "conversation", conv.ID, conv.Clone())
	return conv.Clone(), nil
}

// Send appends a message authored by the session owner. Whitespace-only
// content fails with ErrEmptyContent and leaves the conversation untouched.
func (s *Store) Send(ctx context.Context, conversationID, content string, msgType domain.MessageType, attachments []domain.Attachment) (domain.Message, error) {
	if msgType == "" {
		msgType = domain.MessageTypeText
	}
	if !msgType.Valid() || msgType == domain.MessageTypeSystem {
		return domain.Message{}, fmt.Errorf("send message: type %q: %w", msgType, chaterrors.ErrInvalidInput)
	}
	if strings.TrimSpace(content) == "" {
		return domain.Message{}, fmt.Errorf("send message: %w", chaterrors.ErrEmptyContent)
	}
	if len(attachments) > 0 && !msgType.CarriesAttachments() {
		return domain.Message{}, fmt.Errorf("send message: attachments on %s message: %w", msgType, chaterrors.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return domain.Message{}, fmt.Errorf("send message to %s: %w", conversationID, chaterrors.ErrNotFound)
	}

	msg := domain.Message{
		ID:             s.deps.NewID(),
		ConversationID: conversationID,
		SenderID:       s.self.ID,
		SenderName:     s.self.Name,
		SenderAvatar:   s.self.AvatarURL,
		Content:        content,
		Timestamp:      s.deps.Clock(),
		Type:           msgType,
		Attachments:    append([]domain.Attachment(nil), attachments...),
	}
	conv.Messages = append(conv.Messages, msg)
	s.syncLastMessage(conv)

	s.publish(ctx, events.EventMessageSent, "conversation", conversationID, msg)
	return msg, nil
}

// Receive is the inbound entry point the transport layer calls for messages
// authored elsewhere. The unread rule: the counter grows only when the
// target conversation is not active; messages arriving on the open thread
// are marked read immediately.
func (s *Store) Receive(ctx context.Context, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[msg.ConversationID]
	if !ok {
		return fmt.Errorf("receive message for %s: %w", msg.ConversationID, chaterrors.ErrNotFound)
	}

	if msg.ID == "" {
		msg.ID = s.deps.NewID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.deps.Clock()
	}
	if msg.Type == "" {
		msg.Type = domain.MessageTypeText
	}

	own := msg.SenderID == s.self.ID
	if s.activeID == conv.ID || own {
		msg.Read = true
	} else {
		msg.Read = false
		conv.UnreadCount++
	}
	conv.Messages = append(conv.Messages, msg)
	s.syncLastMessage(conv)
	return nil
}

// MarkRead resets the unread counter and marks every message from other
// senders read, without changing which conversation is active.
func (s *Store) MarkRead(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return fmt.Errorf("mark read %s: %w", conversationID, chaterrors.ErrNotFound)
	}
	s.markReadLocked(conv)
	s.publish(ctx, events.EventConversationRead, "conversation", conv.ID, readReceipt{
		ConversationID: conv.ID,
		UserID:         s.self.ID,
	})
	return nil
}

// Delete removes the conversation. Destructive: no tombstone, no undo. The
// active selection is cleared when it pointed at the deleted conversation.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conversationID]; !ok {
		return fmt.Errorf("delete conversation %s: %w", conversationID, chaterrors.ErrNotFound)
	}
	delete(s.conversations, conversationID)
	delete(s.typing, conversationID)
	for i, id := range s.order {
		if id == conversationID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.activeID == conversationID {
		s.activeID = ""
	}
	s.publish(ctx, events.EventConversationDeleted, "conversation", conversationID, nil)
	return nil
}

// StartTyping records userID as composing in the conversation. Idempotent.
func (s *Store) StartTyping(conversationID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.typing[conversationID]
	if !ok {
		set = make(map[string]struct{})
		s.typing[conversationID] = set
	}
	set[userID] = struct{}{}
}

// StopTyping removes userID from the conversation's typing set. Removing an
// absent user is a no-op. The store holds no timers; the debounce that calls
// this after ~1s of inactivity belongs to the caller.
func (s *Store) StopTyping(conversationID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.typing[conversationID]; ok {
		delete(set, userID)
		if len(set) == 0 {
			delete(s.typing, conversationID)
		}
	}
}

// TypingUsers returns the ids currently composing in the conversation.
func (s *Store) TypingUsers(conversationID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.typing[conversationID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SearchDirectory looks up users for starting a new conversation and caches
// the result set.
func (s *Store) SearchDirectory(ctx context.Context, query string) ([]domain.Participant, error) {
	if s.deps.Directory == nil {
		return nil, nil
	}
	results, err := s.deps.Directory.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("directory search: %w", err)
	}
	s.mu.Lock()
	s.searchResults = results
	s.mu.Unlock()
	return results, nil
}

// SearchResults returns the last directory search results.
func (s *Store) SearchResults() []domain.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Participant(nil), s.searchResults...)
}

// SetUserPresence applies a presence change to the online set and to the
// participant snapshots in every conversation. Only the transient presence
// fields are touched; profile data stays as snapshotted.
func (s *Store) SetUserPresence(userID string, isOnline bool, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if isOnline {
		s.online[userID] = struct{}{}
	} else {
		delete(s.online, userID)
	}
	for _, conv := range s.conversations {
		for i := range conv.Participants {
			if conv.Participants[i].ID == userID {
				conv.Participants[i].IsOnline = isOnline
				if !at.IsZero() {
					seen := at
					conv.Participants[i].LastSeen = &seen
				}
			}
		}
	}
}

// OnlineUsers returns the ids currently marked online in this session.
func (s *Store) OnlineUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.online))
	for id := range s.online {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// markReadLocked zeroes the unread counter and flips every non-self message
// to read. Caller holds the mutex.
func (s *Store) markReadLocked(conv *domain.Conversation) {
	conv.UnreadCount = 0
	for i := range conv.Messages {
		if conv.Messages[i].SenderID != s.self.ID {
			conv.Messages[i].Read = true
		}
	}
}

// syncLastMessage re-derives LastMessage and UpdatedAt from the message set
// and moves the conversation to the front of the list. Caller holds the
// mutex.
func (s *Store) syncLastMessage(conv *domain.Conversation) {
	if len(conv.Messages) == 0 {
		conv.LastMessage = nil
	} else {
		last := conv.Messages[0]
		for _, m := range conv.Messages[1:] {
			if m.Timestamp.After(last.Timestamp) {
				last = m
			}
		}
		conv.LastMessage = &last
		conv.UpdatedAt = last.Timestamp
	}
	s.moveToFront(conv.ID)
}

func (s *Store) insertFront(conv *domain.Conversation) {
	s.conversations[conv.ID] = conv
	s.order = append([]string{conv.ID}, s.order...)
}

func (s *Store) moveToFront(conversationID string) {
	for i, id := range s.order {
		if id == conversationID {
			if i > 0 {
				s.order = append(s.order[:i], s.order[i+1:]...)
				s.order = append([]string{conversationID}, s.order...)
			}
			return
		}
	}
}

func (s *Store) isOnline(ctx context.Context, userID string) bool {
	if s.deps.Presence == nil {
		return false
	}
	online, err := s.deps.Presence.IsOnline(ctx, userID)
	if err != nil {
		if s.deps.Logger != nil {
			s.deps.Logger.Warnf("presence lookup for %s failed: %v", userID, err)
		}
		return false
	}
	return online
}

func (s *Store) publish(ctx context.Context, eventType events.EventType, aggregateType, aggregateID string, payload any) {
	envelope, err := events.NewEnvelope(eventType, aggregateType, aggregateID, payload)
	if err != nil {
		if s.deps.Logger != nil {
			s.deps.Logger.Errorf("building %s envelope: %v", eventType, err)
		}
		return
	}
	if err := s.deps.Publisher.Publish(ctx, envelope); err != nil && s.deps.Logger != nil {
		s.deps.Logger.Warnf("publishing %s for %s: %v", eventType, aggregateID, err)
	}
}

package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshitjain593/workree-chat/internal/domain"
	"github.com/harshitjain593/workree-chat/internal/events"
	chaterrors "github.com/harshitjain593/workree-chat/pkg/errors"
)

type capturingPublisher struct {
	mu        sync.Mutex
	envelopes []events.Envelope
}

func (p *capturingPublisher) Publish(ctx context.Context, envelope events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envelopes = append(p.envelopes, envelope)
	return nil
}

func (p *capturingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, 0, len(p.envelopes))
	for _, e := range p.envelopes {
		out = append(out, e.EventType)
	}
	return out
}

type fakeDirectory struct {
	results []domain.Participant
	err     error
	queries []string
}

func (d *fakeDirectory) Search(ctx context.Context, query string) ([]domain.Participant, error) {
	d.queries = append(d.queries, query)
	return d.results, d.err
}

type fixture struct {
	store *Store
	pub   *capturingPublisher
	dir   *fakeDirectory
	now   time.Time
	seq   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		pub: &capturingPublisher{},
		dir: &fakeDirectory{},
		now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	self := domain.Participant{ID: "me", Name: "Alex Rivera", Email: "alex@example.com"}
	f.store = NewStore(self, Deps{
		Directory: f.dir,
		Publisher: f.pub,
		Clock: func() time.Time {
			f.now = f.now.Add(time.Second)
			return f.now
		},
		NewID: func() string {
			f.seq++
			return fmt.Sprintf("id-%d", f.seq)
		},
	})
	return f
}

func (f *fixture) peer() domain.Participant {
	return domain.Participant{ID: "u-2", Name: "Priya Sharma", Email: "priya@example.com"}
}

func (f *fixture) directConversation(t *testing.T) domain.Conversation {
	t.Helper()
	conv, err := f.store.CreateDirect(context.Background(), f.peer())
	require.NoError(t, err)
	return conv
}

func TestCreateDirectActivatesNewConversation(t *testing.T) {
	f := newFixture(t)

	conv := f.directConversation(t)

	assert.Equal(t, domain.ConversationTypeDirect, conv.Type)
	assert.Equal(t, "Priya Sharma", conv.Name)
	require.Len(t, conv.Participants, 1)
	assert.Equal(t, "u-2", conv.Participants[0].ID)
	assert.Empty(t, conv.Messages)
	assert.Nil(t, conv.LastMessage)

	active, ok := f.store.Active()
	require.True(t, ok)
	assert.Equal(t, conv.ID, active.ID)
	assert.Equal(t, []events.EventType{events.EventConversationCreated}, f.pub.types())
}

func TestCreateDirectDedupsByPeer(t *testing.T) {
	f := newFixture(t)
	first := f.directConversation(t)

	// Point selection elsewhere so reactivation is observable.
	other, err := f.store.CreateDirect(context.Background(), domain.Participant{ID: "u-3", Name: "Mei Lin"})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, other.ID)

	again, err := f.store.CreateDirect(context.Background(), f.peer())
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	active, ok := f.store.Active()
	require.True(t, ok)
	assert.Equal(t, first.ID, active.ID)
	assert.Len(t, f.store.Conversations(""), 2)
}

func TestCreateDirectRejectsEmptyPeer(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CreateDirect(context.Background(), domain.Participant{Name: "Ghost"})
	assert.ErrorIs(t, err, chaterrors.ErrInvalidInput)
}

func TestCreateTeamSeedsWelcomeMessage(t *testing.T) {
	f := newFixture(t)
	members := []domain.Participant{
		{ID: "u-2", Name: "Priya Sharma"},
		{ID: "u-3", Name: "Mei Lin"},
	}

	conv, err := f.store.CreateTeam(context.Background(), "team-7", "Platform Crew", members)
	require.NoError(t, err)

	assert.Equal(t, domain.ConversationTypeTeam, conv.Type)
	assert.Equal(t, "team-7", conv.TeamID)
	assert.Equal(t, "Platform Crew", conv.Name)
	require.Len(t, conv.Messages, 1)

	welcome := conv.Messages[0]
	assert.Equal(t, domain.SystemSenderID, welcome.SenderID)
	assert.Equal(t, domain.MessageTypeSystem, welcome.Type)
	assert.True(t, welcome.Read)
	assert.Equal(t, "Welcome to Platform Crew! This is the beginning of your team conversation.", welcome.Content)

	require.NotNil(t, conv.LastMessage)
	assert.Equal(t, welcome.ID, conv.LastMessage.ID)
	assert.Equal(t, welcome.Timestamp, conv.UpdatedAt)
	assert.Zero(t, conv.UnreadCount)
}

func TestCreateTeamIdempotentPerTeamID(t *testing.T) {
	f := newFixture(t)
	members := []domain.Participant{{ID: "u-2", Name: "Priya Sharma"}}

	first, err := f.store.CreateTeam(context.Background(), "team-7", "Platform Crew", members)
	require.NoError(t, err)

	again, err := f.store.CreateTeam(context.Background(), "team-7", "Platform Crew", members)
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, f.store.Conversations(""), 1)
	require.Len(t, again.Messages, 1)
}

func TestCreateTeamRequiresIDAndName(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CreateTeam(context.Background(), "", "Platform Crew", nil)
	assert.ErrorIs(t, err, chaterrors.ErrInvalidInput)

	_, err = f.store.CreateTeam(context.Background(), "team-7", "", nil)
	assert.ErrorIs(t, err, chaterrors.ErrInvalidInput)
}

func TestSendAppendsAndPublishes(t *testing.T) {
	f := newFixture(t)
	conv := f.directConversation(t)

	msg, err := f.store.Send(context.Background(), conv.ID, "hello there", "", nil)
	require.NoError(t, err)

	assert.Equal(t, domain.MessageTypeText, msg.Type)
	assert.Equal(t, "me", msg.SenderID)
	assert.Equal(t, "Alex Rivera", msg.SenderName)

	active, ok := f.store.Active()
	require.True(t, ok)
	require.Len(t, active.Messages, 1)
	require.NotNil(t, active.LastMessage)
	assert.Equal(t, msg.ID, active.LastMessage.ID)
	assert.Equal(t, msg.Timestamp, active.UpdatedAt)

	assert.Contains(t, f.pub.types(), events.EventMessageSent)
}

func TestSendRejectsWhitespaceOnly(t *testing.T) {
	f := newFixture(t)
	conv := f.directConversation(t)
	sent, err := f.store.Send(context.Background(), conv.ID, "first", "", nil)
	require.NoError(t, err)

	_, err = f.store.Send(context.Background(), conv.ID, "   \n\t ", "", nil)
	assert.ErrorIs(t, err, chaterrors.ErrEmptyContent)

	// Rejected sends leave the thread untouched.
	active, ok := f.store.Active()
	require.True(t, ok)
	require.Len(t, active.Messages, 1)
	require.NotNil(t, active.LastMessage)
	assert.Equal(t, sent.ID, active.LastMessage.ID)
}

func TestSendRejectsBadTypes(t *testing.T) {
	f := newFixture(t)
	conv := f.directConversation(t)

	_, err := f.store.Send(context.Background(), conv.ID, "hi", domain.MessageTypeSystem, nil)
	assert.ErrorIs(t, err, chaterrors.ErrInvalidInput)

	_, err = f.store.Send(context.Background(), conv.ID, "hi", "carrier-pigeon", nil)
	assert.ErrorIs(t, err, chaterrors.ErrInvalidInput)
}

func TestSendAttachmentsOnlyOnFileCarryingTypes(t *testing.T) {
	f := newFixture(t)
	conv := f.directConversation(t)
	attachments := []domain.Attachment{{ID: "a-1", FileName: "spec.pdf", MimeType: "application/pdf"}}

	_, err := f.store.Send(context.Background(), conv.ID, "see attached", domain.MessageTypeText, attachments)
	assert.ErrorIs(t, err, chaterrors.ErrInvalidInput)

	msg, err := f.store.Send(context.Background(), conv.ID, "see attached", domain.MessageTypeFile, attachments)
	require.NoError(t, err)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "spec.pdf", msg.Attachments[0].FileName)
}

func TestSendUnknownConversation(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.Send(context.Background(), "nope", "hi", "", nil)
	assert.ErrorIs(t, err, chaterrors.ErrNotFound)
}

func TestReceiveIncrementsUnreadWhenInactive(t *testing.T) {
	f := newFixture(t)
	conv := f.directConversation(t)
	// Deselect by activating a different conversation.
	_, err := f.store.CreateDirect(context.Background(), domain.Participant{ID: "u-3", Name: "Mei Lin"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		err := f.store.Receive(context.Background(), domain.Message{
			ConversationID: conv.ID,
			SenderID:       "u-2",
			SenderName:     "Priya Sharma",
			Content:        fmt.Sprintf("ping %d", i),
		})
		require.NoError(t, err)
	}

	convs := f.store.Conversations("")
	require.Len(t, convs, 2)
	assert.Equal(t, conv.ID, convs[0].ID, "latest message moves the thread to the front")
	assert.Equal(t, 3, convs[0].UnreadCount)
	for _, m := range convs[0].Messages {
		assert.False(t, m.Read)
	}

	// Selecting sweeps everything read.
	selected, err := f.store.Select(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Zero(t, selected.UnreadCount)
	for _, m := range selected.Messages {
		assert.True(t, m.Read)
	}
}

func TestReceiveOnActiveConversationIsRead(t *testing.T) {
	f := newFixture(t)
	conv := f.directConversation(t)

	err := f.store.Receive(context.Background(), domain.Message{
		ConversationID: conv.ID,
		SenderID:       "u-2",
		Content:        "ping",
	})
	require.NoError(t, err)

	active, ok := f.store.Active()
	require.True(t, ok)
	assert.Zero(t, active.UnreadCount)
	require.Len(t, active.Messages, 1)
	assert.True(t, active.Messages[0].Read)
}

func TestReceiveOwnEchoIsRead(t *testing.T) {
	f := newFixture(t)
	conv := f.directConversation(t)
	_, err := f.store.CreateDirect(context.Background(), domain.Participant{ID: "u-3", Name: "Mei Lin"})
	require.NoError(t, err)

	// An echo of our own message from another device never counts as unread.
	err = f.store.Receive(context.Background(), domain.Message{
		ConversationID: conv.ID,
		SenderID:       "me",
		Content:        "sent from my phone",
	})
	require.NoError(t, err)

	convs := f.store.Conversations("")
	assert.Equal(t, conv.ID, convs[0].ID)
	assert.Zero(t, convs[0].UnreadCount)
	assert.True(t, convs[0].Messages[0].Read)
}

func TestReceiveFillsDefaults(t *testing.T) {
	f := newFixture(t)
	conv := f.directConversation(t)

	err := f.store.Receive(context.Background(), domain.Message{
		ConversationID: conv.ID,
		SenderID:       "u-2",
		Content:        "bare message",
	})
	require.NoError(t, err)

	active, _ := f.store.Active()
	got := active.Messages[0]
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, domain.MessageTypeText, got.Type)
}

func TestReceiveUnknownConversation(t *testing.T) {
	f := newFixture(t)

	err := f.store.Receive(context.Background(), domain.Message{ConversationID: "nope", SenderID: "u-2", Content: "hi"})
	assert.ErrorIs(t, err, chaterrors.ErrNotFound)
}

func TestSelectNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.Select(context.Background(), "missing")
	assert.ErrorIs(t, err, chaterrors.ErrNotFound)

	_, ok := f.store.Active()
	assert.False(t, ok)
}

func TestSelectPublishesReadReceipt(t *testing.T) {
	f := newFixture(t)
	conv := f.directConversation(t)

	_, err := f.store.Select(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Contains(t, f.pub.types(), events.EventConversationRead)
}

func TestMarkReadKeepsSelection(t *testing.T) {
	f := newFixture(t)
	first := f.directConversation(t)
	second, err := f.store.CreateDirect(context.Background(), domain.Participant{ID: "u-3", Name: "Mei Lin"})
	require.NoError(t, err)

	err = f.store.Receive(context.Background(), domain.Message{ConversationID: first.ID, SenderID: "u-2", Content: "ping"})
	require.NoError(t, err)

	require.NoError(t, f.store.MarkRead(context.Background(), first.ID))

	convs := f.store.Conversations("")
	for _, c := range convs {
		if c.ID == first.ID {
			assert.Zero(t, c.UnreadCount)
		}
	}
	active, ok := f.store.Active()
	require.True(t, ok)
	assert.Equal(t, second.ID, active.ID, "marking read must not steal the active selection")
}

func TestDeleteClearsActiveAndTyping(t *testing.T) {
	f := newFixture(t)
	conv := f.directConversation(t)
	f.store.StartTyping(conv.ID, "u-2")

	require.NoError(t, f.store.Delete(context.Background(), conv.ID))

	_, ok := f.store.Active()
	assert.False(t, ok)
	assert.Empty(t, f.store.Conversations(""))
	assert.Empty(t, f.store.TypingUsers(conv.ID))
	assert.Contains(t, f.pub.types(), events.EventConversationDeleted)

	assert.ErrorIs(t, f.store.Delete(context.Background(), conv.ID), chaterrors.ErrNotFound)
}

func TestTypingSetSemantics(t *testing.T) {
	f := newFixture(t)
	conv := f.directConversation(t)

	f.store.StartTyping(conv.ID, "u-3")
	f.store.StartTyping(conv.ID, "u-2")
	f.store.StartTyping(conv.ID, "u-2") // idempotent

	assert.Equal(t, []string{"u-2", "u-3"}, f.store.TypingUsers(conv.ID))

	f.store.StopTyping(conv.ID, "u-9") // absent user, no-op
	assert.Equal(t, []string{"u-2", "u-3"}, f.store.TypingUsers(conv.ID))

	f.store.StopTyping(conv.ID, "u-2")
	f.store.StopTyping(conv.ID, "u-3")
	assert.Empty(t, f.store.TypingUsers(conv.ID))
}

func TestConversationsFilter(t *testing.T) {
	f := newFixture(t)
	f.directConversation(t)
	_, err := f.store.CreateTeam(context.Background(), "team-7", "Platform Crew", []domain.Participant{{ID: "u-3", Name: "Mei Lin"}})
	require.NoError(t, err)

	byName := f.store.Conversations("platform")
	require.Len(t, byName, 1)
	assert.Equal(t, "Platform Crew", byName[0].Name)

	byParticipant := f.store.Conversations("priya")
	require.Len(t, byParticipant, 1)
	assert.Equal(t, "Priya Sharma", byParticipant[0].Name)

	assert.Empty(t, f.store.Conversations("zzz"))
	assert.Len(t, f.store.Conversations("  "), 2)
}

func TestLastMessageTracksMaxTimestamp(t *testing.T) {
	f := newFixture(t)
	conv := f.directConversation(t)

	latest, err := f.store.Send(context.Background(), conv.ID, "current", "", nil)
	require.NoError(t, err)

	// A straggler with an older timestamp must not regress the preview.
	err = f.store.Receive(context.Background(), domain.Message{
		ID:             "old-1",
		ConversationID: conv.ID,
		SenderID:       "u-2",
		Content:        "delayed delivery",
		Timestamp:      latest.Timestamp.Add(-time.Hour),
	})
	require.NoError(t, err)

	active, _ := f.store.Active()
	require.NotNil(t, active.LastMessage)
	assert.Equal(t, latest.ID, active.LastMessage.ID)
	assert.Equal(t, latest.Timestamp, active.UpdatedAt)
	assert.Len(t, active.Messages, 2)
}

func TestSetUserPresenceUpdatesSnapshots(t *testing.T) {
	f := newFixture(t)
	f.directConversation(t)

	seen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.store.SetUserPresence("u-2", true, seen)
	assert.Equal(t, []string{"u-2"}, f.store.OnlineUsers())

	convs := f.store.Conversations("")
	require.Len(t, convs, 1)
	assert.True(t, convs[0].Participants[0].IsOnline)
	require.NotNil(t, convs[0].Participants[0].LastSeen)
	assert.Equal(t, seen, *convs[0].Participants[0].LastSeen)

	f.store.SetUserPresence("u-2", false, seen.Add(time.Minute))
	assert.Empty(t, f.store.OnlineUsers())
	convs = f.store.Conversations("")
	assert.False(t, convs[0].Participants[0].IsOnline)
}

func TestSearchDirectoryCachesResults(t *testing.T) {
	f := newFixture(t)
	f.dir.results = []domain.Participant{{ID: "u-5", Name: "Sara Haddad"}}

	results, err := f.store.SearchDirectory(context.Background(), "sara")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"sara"}, f.dir.queries)
	assert.Equal(t, results, f.store.SearchResults())
}

func TestSearchDirectoryPropagatesError(t *testing.T) {
	f := newFixture(t)
	f.dir.err = fmt.Errorf("directory offline")

	_, err := f.store.SearchDirectory(context.Background(), "sara")
	assert.Error(t, err)
}

package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshitjain593/workree-chat/internal/domain"
	chaterrors "github.com/harshitjain593/workree-chat/pkg/errors"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	parser := NewTokenParser("test-secret")
	user := domain.Participant{
		ID:        "u-1",
		Name:      "Alex Rivera",
		Email:     "alex@example.com",
		AvatarURL: "https://cdn.example.com/a.png",
	}

	token, err := parser.Issue(user, time.Hour)
	require.NoError(t, err)

	parsed, err := parser.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user, parsed)
}

func TestParseRejectsEmptyToken(t *testing.T) {
	parser := NewTokenParser("test-secret")

	_, err := parser.Parse("")
	assert.ErrorIs(t, err, chaterrors.ErrUnauthorized)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenParser("secret-a")
	token, err := issuer.Issue(domain.Participant{ID: "u-1"}, time.Hour)
	require.NoError(t, err)

	_, err = NewTokenParser("secret-b").Parse(token)
	assert.ErrorIs(t, err, chaterrors.ErrUnauthorized)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	parser := NewTokenParser("test-secret")
	token, err := parser.Issue(domain.Participant{ID: "u-1"}, -time.Minute)
	require.NoError(t, err)

	_, err = parser.Parse(token)
	assert.ErrorIs(t, err, chaterrors.ErrUnauthorized)
}

func TestParseRejectsMissingSubject(t *testing.T) {
	parser := NewTokenParser("test-secret")
	token, err := parser.Issue(domain.Participant{}, time.Hour)
	require.NoError(t, err)

	_, err = parser.Parse(token)
	assert.ErrorIs(t, err, chaterrors.ErrUnauthorized)
}

func TestParticipantContextRoundTrip(t *testing.T) {
	user := domain.Participant{ID: "u-1", Name: "Alex Rivera"}

	ctx := WithParticipant(context.Background(), user)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}

package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/harshitjain593/workree-chat/internal/domain"
	chaterrors "github.com/harshitjain593/workree-chat/pkg/errors"
)

// Claims is the token payload issued by the marketplace auth service. The
// subject is the user id; profile fields ride along so the chat service can
// snapshot the sender without a profile lookup.
type Claims struct {
	jwt.RegisteredClaims
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// TokenParser validates HS256 bearer tokens.
type TokenParser struct {
	secret []byte
}

func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

// Parse validates the token and returns the participant it identifies.
func (p *TokenParser) Parse(tokenString string) (domain.Participant, error) {
	if tokenString == "" {
		return domain.Participant{}, chaterrors.ErrUnauthorized
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Participant{}, fmt.Errorf("parse token: %w", chaterrors.ErrUnauthorized)
	}
	if claims.Subject == "" {
		return domain.Participant{}, fmt.Errorf("token missing subject: %w", chaterrors.ErrUnauthorized)
	}

	return domain.Participant{
		ID:        claims.Subject,
		Name:      claims.Name,
		Email:     claims.Email,
		AvatarURL: claims.AvatarURL,
	}, nil
}

// Issue signs a token for the participant. Used by tests and the dev token
// endpoint; production tokens come from the marketplace auth service.
func (p *TokenParser) Issue(user domain.Participant, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

type ctxKey struct{}

// WithParticipant stores the authenticated participant on the context.
func WithParticipant(ctx context.Context, user domain.Participant) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// FromContext returns the authenticated participant, if any.
func FromContext(ctx context.Context) (domain.Participant, bool) {
	user, ok := ctx.Value(ctxKey{}).(domain.Participant)
	return user, ok
}

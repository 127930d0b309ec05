package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/model"
)

// TokenLifetime is how long a session stays valid after login
const TokenLifetime = 7 * 24 * time.Hour

var (
	ErrInvalidToken = goerr.New("invalid token")
	ErrTokenExpired = goerr.New("token expired")
)

// TokenID is the public half of a session, sent as the token_id cookie
type TokenID string

// NewTokenID generates a random token ID
func NewTokenID() TokenID {
	return TokenID(uuid.NewString())
}

func (x TokenID) String() string { return string(x) }

// Validate checks the ID is a UUID
func (x TokenID) Validate() error {
	if x == "" {
		return goerr.Wrap(ErrInvalidToken, "token ID is empty")
	}
	if _, err := uuid.Parse(string(x)); err != nil {
		return goerr.Wrap(ErrInvalidToken, "token ID is not a UUID", goerr.V("token_id", x))
	}
	return nil
}

// TokenSecret is the private half of a session, sent as the token_secret
// cookie
type TokenSecret string

// NewTokenSecret generates a random secret of two UUIDs
func NewTokenSecret() TokenSecret {
	return TokenSecret(uuid.NewString() + uuid.NewString())
}

func (x TokenSecret) String() string { return string(x) }

// LogValue hides the secret from logs
func (x TokenSecret) LogValue() slog.Value { return slog.StringValue("[REDACTED]") }

// Token is a login session of an airform user
type Token struct {
	ID        TokenID      `json:"id" firestore:"id"`
	Secret    TokenSecret  `json:"-" firestore:"secret" masq:"secret"`
	UserID    model.UserID `json:"user_id" firestore:"user_id"`
	Sub       string       `json:"sub" firestore:"sub"`
	Email     string       `json:"email" firestore:"email"`
	Name      string       `json:"name" firestore:"name"`
	ExpiresAt time.Time    `json:"expires_at" firestore:"expires_at"`
	CreatedAt time.Time    `json:"created_at" firestore:"created_at"`
}

// NewToken issues a session for userID. sub is the Airtable user ID.
func NewToken(userID model.UserID, sub, email, name string) *Token {
	now := time.Now()
	return &Token{
		ID:        NewTokenID(),
		Secret:    NewTokenSecret(),
		UserID:    userID,
		Sub:       sub,
		Email:     email,
		Name:      name,
		ExpiresAt: now.Add(TokenLifetime),
		CreatedAt: now,
	}
}

// Validate checks that the token carries an ID, a secret and a user
func (x *Token) Validate() error {
	if x == nil {
		return goerr.Wrap(ErrInvalidToken, "token is nil")
	}
	if err := x.ID.Validate(); err != nil {
		return err
	}
	if x.Secret == "" {
		return goerr.Wrap(ErrInvalidToken, "token secret is empty", goerr.V("token_id", x.ID))
	}
	if x.UserID == "" {
		return goerr.Wrap(ErrInvalidToken, "token has no user", goerr.V("token_id", x.ID))
	}
	return nil
}

// IsExpired reports whether the session is past its expiry
func (x *Token) IsExpired() bool {
	return time.Now().After(x.ExpiresAt)
}

// AnonymousUserID stands in for the Airtable account in no-auth mode when the
// token owner is unknown
const AnonymousUserID model.UserID = "anonymous"

type ctxTokenKey struct{}

// ContextWithToken stores the session of the current request
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext returns the session of the current request, or an error
// when the request is not authenticated
func TokenFromContext(ctx context.Context) (*Token, error) {
	token, ok := ctx.Value(ctxTokenKey{}).(*Token)
	if !ok || token == nil {
		return nil, goerr.New("no authentication token in context")
	}
	return token, nil
}

package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/domain/model/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// sessionDocument keeps expires_at as a timestamp so a Firestore TTL policy
// can drop stale sessions
type sessionDocument struct {
	ID        string    `firestore:"id"`
	Secret    string    `firestore:"secret"`
	UserID    string    `firestore:"user_id"`
	Sub       string    `firestore:"airtable_user_id"`
	Email     string    `firestore:"email"`
	Name      string    `firestore:"name"`
	ExpiresAt time.Time `firestore:"expires_at"`
	CreatedAt time.Time `firestore:"created_at"`
}

func toSessionDocument(t *auth.Token) *sessionDocument {
	return &sessionDocument{
		ID:        t.ID.String(),
		Secret:    t.Secret.String(),
		UserID:    t.UserID.String(),
		Sub:       t.Sub,
		Email:     t.Email,
		Name:      t.Name,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
	}
}

func toSessionModel(doc *sessionDocument) *auth.Token {
	return &auth.Token{
		ID:        auth.TokenID(doc.ID),
		Secret:    auth.TokenSecret(doc.Secret),
		UserID:    model.UserID(doc.UserID),
		Sub:       doc.Sub,
		Email:     doc.Email,
		Name:      doc.Name,
		ExpiresAt: doc.ExpiresAt,
		CreatedAt: doc.CreatedAt,
	}
}

func (r *Firestore) sessionRef(id auth.TokenID) *firestore.DocumentRef {
	return r.client.Collection(r.collectionName(tokensCollection)).Doc(id.String())
}

func (r *Firestore) PutToken(ctx context.Context, token *auth.Token) error {
	if err := token.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token")
	}

	if _, err := r.sessionRef(token.ID).Set(ctx, toSessionDocument(token)); err != nil {
		return goerr.Wrap(err, "failed to store session", goerr.V("token_id", token.ID))
	}
	return nil
}

func (r *Firestore) GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error) {
	if err := tokenID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid token ID")
	}

	snap, err := r.sessionRef(tokenID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("token_id", tokenID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("token_id", tokenID))
	}

	var doc sessionDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode session", goerr.V("token_id", tokenID))
	}
	return toSessionModel(&doc), nil
}

// DeleteToken fails with ErrNotFound when the session is already gone
func (r *Firestore) DeleteToken(ctx context.Context, tokenID auth.TokenID) error {
	if err := tokenID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token ID")
	}

	_, err := r.sessionRef(tokenID).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return goerr.Wrap(ErrNotFound, "session not found", goerr.V("token_id", tokenID))
	}
	if err != nil {
		return goerr.Wrap(err, "failed to delete session", goerr.V("token_id", tokenID))
	}
	return nil
}

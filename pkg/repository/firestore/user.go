package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type userDocument struct {
	ID             string    `firestore:"id"`
	AirtableUserID string    `firestore:"airtable_user_id"`
	Email          string    `firestore:"email"`
	Name           string    `firestore:"name"`
	AccessToken    string    `firestore:"access_token"`
	RefreshToken   string    `firestore:"refresh_token"`
	TokenExpiresAt time.Time `firestore:"token_expires_at"`
	LastLoginAt    time.Time `firestore:"last_login_at"`
	CreatedAt      time.Time `firestore:"created_at"`
	UpdatedAt      time.Time `firestore:"updated_at"`
}

func toUserDocument(u *model.User) *userDocument {
	return &userDocument{
		ID:             u.ID.String(),
		AirtableUserID: u.AirtableUserID,
		Email:          u.Email,
		Name:           u.Name,
		AccessToken:    u.Tokens.AccessToken,
		RefreshToken:   u.Tokens.RefreshToken,
		TokenExpiresAt: u.Tokens.ExpiresAt,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func toUserModel(doc *userDocument) *model.User {
	return &model.User{
		ID:             model.UserID(doc.ID),
		AirtableUserID: doc.AirtableUserID,
		Email:          doc.Email,
		Name:           doc.Name,
		Tokens: model.OAuthTokens{
			AccessToken:  doc.AccessToken,
			RefreshToken: doc.RefreshToken,
			ExpiresAt:    doc.TokenExpiresAt,
		},
		LastLoginAt: doc.LastLoginAt,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
}

type userRepository struct {
	client     *firestore.Client
	collection string
}

func (r *userRepository) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	if user.AirtableUserID == "" {
		return nil, goerr.New("user has no Airtable user ID")
	}

	col := r.client.Collection(r.collection)
	var saved model.User

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		saved = *user
		now := time.Now().UTC()

		iter := tx.Documents(col.Where("airtable_user_id", "==", user.AirtableUserID).Limit(1))
		snap, err := iter.Next()
		iter.Stop()

		switch {
		case err == iterator.Done:
			if saved.ID == "" {
				saved.ID = model.UserID(uuid.NewString())
			}
			saved.CreatedAt = now

		case err != nil:
			return goerr.Wrap(err, "failed to look up user", goerr.V("airtable_user_id", user.AirtableUserID))

		default:
			var existing userDocument
			if err := snap.DataTo(&existing); err != nil {
				return goerr.Wrap(err, "failed to unmarshal user", goerr.V("id", snap.Ref.ID))
			}
			saved.ID = model.UserID(existing.ID)
			saved.CreatedAt = existing.CreatedAt
			if saved.Tokens.RefreshToken == "" {
				saved.Tokens.RefreshToken = existing.RefreshToken
			}
		}
		saved.UpdatedAt = now

		return tx.Set(col.Doc(saved.ID.String()), toUserDocument(&saved))
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert user", goerr.V("airtable_user_id", user.AirtableUserID))
	}

	return &saved, nil
}

func (r *userRepository) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	docSnap, err := r.client.Collection(r.collection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}

	var doc userDocument
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("id", id))
	}
	return toUserModel(&doc), nil
}

func (r *userRepository) GetByAirtableID(ctx context.Context, airtableUserID string) (*model.User, error) {
	iter := r.client.Collection(r.collection).
		Where("airtable_user_id", "==", airtableUserID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("airtable_user_id", airtableUserID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query user", goerr.V("airtable_user_id", airtableUserID))
	}

	var doc userDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("id", snap.Ref.ID))
	}
	return toUserModel(&doc), nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	iter := r.client.Collection(r.collection).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	users := []*model.User{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users")
		}

		var doc userDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("id", snap.Ref.ID))
		}
		users = append(users, toUserModel(&doc))
	}
	return users, nil
}

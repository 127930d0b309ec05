package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/airform/pkg/domain/interfaces"
	"github.com/secmon-lab/airform/pkg/domain/model"
)

func runUserRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Upsert creates user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		airtableID := "usr" + uuid.NewString()

		created, err := repo.User().Upsert(ctx, &model.User{
			AirtableUserID: airtableID,
			Email:          "alice@example.com",
			Tokens: model.OAuthTokens{
				AccessToken:  "access-1",
				RefreshToken: "refresh-1",
				ExpiresAt:    time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond),
			},
			LastLoginAt: time.Now().UTC(),
		})
		gt.NoError(t, err).Required()
		gt.String(t, created.ID.String()).NotEqual("")

		got, err := repo.User().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.AirtableUserID).Equal(airtableID)
		gt.Value(t, got.Tokens.AccessToken).Equal("access-1")
		gt.Value(t, got.Tokens.RefreshToken).Equal("refresh-1")

		byAirtable, err := repo.User().GetByAirtableID(ctx, airtableID)
		gt.NoError(t, err).Required()
		gt.Value(t, byAirtable.ID).Equal(created.ID)
	})

	t.Run("Upsert updates existing user and keeps refresh token", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		airtableID := "usr" + uuid.NewString()

		first, err := repo.User().Upsert(ctx, &model.User{
			AirtableUserID: airtableID,
			Email:          "old@example.com",
			Tokens:         model.OAuthTokens{AccessToken: "access-1", RefreshToken: "refresh-1"},
		})
		gt.NoError(t, err).Required()

		second, err := repo.User().Upsert(ctx, &model.User{
			AirtableUserID: airtableID,
			Email:          "new@example.com",
			Tokens:         model.OAuthTokens{AccessToken: "access-2"},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, second.ID).Equal(first.ID)

		got, err := repo.User().Get(ctx, first.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Email).Equal("new@example.com")
		gt.Value(t, got.Tokens.AccessToken).Equal("access-2")
		gt.Value(t, got.Tokens.RefreshToken).Equal("refresh-1")
		gt.Bool(t, got.CreatedAt.Equal(first.CreatedAt)).True()
	})

	t.Run("Upsert requires Airtable user ID", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.User().Upsert(context.Background(), &model.User{Email: "x@example.com"})
		gt.Value(t, err).NotNil()
	})

	t.Run("Get not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.User().Get(ctx, model.UserID(uuid.NewString()))
		gt.Bool(t, isNotFound(err)).True()

		_, err = repo.User().GetByAirtableID(ctx, "usr"+uuid.NewString())
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("List users", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for range 2 {
			_, err := repo.User().Upsert(ctx, &model.User{AirtableUserID: "usr" + uuid.NewString()})
			gt.NoError(t, err).Required()
		}

		users, err := repo.User().List(ctx)
		gt.NoError(t, err).Required()
		gt.Bool(t, len(users) >= 2).True()
	})
}

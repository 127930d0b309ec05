package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/airform/pkg/domain/interfaces"
	"github.com/secmon-lab/airform/pkg/domain/model/auth"
)

func runAuthRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("PutToken and GetToken", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		token := auth.NewToken("user-123", "usr123", "test@example.com", "Test User")
		gt.NoError(t, repo.PutToken(ctx, token)).Required()

		retrieved, err := repo.GetToken(ctx, token.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.ID).Equal(token.ID)
		gt.Value(t, retrieved.Secret).Equal(token.Secret)
		gt.Value(t, retrieved.UserID).Equal(token.UserID)
		gt.Value(t, retrieved.Sub).Equal(token.Sub)
		gt.Value(t, retrieved.Email).Equal(token.Email)

		// Firestore keeps microsecond precision
		diff := retrieved.ExpiresAt.Sub(token.ExpiresAt)
		gt.Bool(t, diff < time.Second && diff > -time.Second).True()
	})

	t.Run("PutToken rejects invalid token", func(t *testing.T) {
		repo := newRepo(t)
		gt.Value(t, repo.PutToken(context.Background(), &auth.Token{})).NotNil()
	})

	t.Run("GetToken not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetToken(context.Background(), auth.NewTokenID())
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("DeleteToken", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		token := auth.NewToken("user-456", "usr456", "delete@example.com", "Delete User")
		gt.NoError(t, repo.PutToken(ctx, token)).Required()
		gt.NoError(t, repo.DeleteToken(ctx, token.ID)).Required()

		_, err := repo.GetToken(ctx, token.ID)
		gt.Bool(t, isNotFound(err)).True()

		gt.Bool(t, isNotFound(repo.DeleteToken(ctx, token.ID))).True()
	})
}

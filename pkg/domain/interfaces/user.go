package interfaces

import (
	"context"

	"github.com/secmon-lab/airform/pkg/domain/model"
)

// UserRepository defines the interface for User data access
type UserRepository interface {
	// Upsert creates or updates the user with the same AirtableUserID. An
	// empty refresh token keeps the stored one.
	Upsert(ctx context.Context, user *model.User) (*model.User, error)
	Get(ctx context.Context, id model.UserID) (*model.User, error)
	GetByAirtableID(ctx context.Context, airtableUserID string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}

package interfaces

import (
	"context"

	"github.com/secmon-lab/airform/pkg/domain/model"
)

// FormRepository defines the interface for Form data access
type FormRepository interface {
	// Create stores a new form. ID, CreatedAt and UpdatedAt are assigned when
	// empty.
	Create(ctx context.Context, form *model.Form) (*model.Form, error)
	Get(ctx context.Context, id model.FormID) (*model.Form, error)
	// ListByOwner returns the forms of owner, newest first
	ListByOwner(ctx context.Context, owner model.UserID) ([]*model.Form, error)
	// List returns every form, newest first
	List(ctx context.Context) ([]*model.Form, error)
	Update(ctx context.Context, form *model.Form) (*model.Form, error)
	Delete(ctx context.Context, id model.FormID) error
}

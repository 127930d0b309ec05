package interfaces

import (
	"context"

	"github.com/secmon-lab/airform/pkg/domain/model"
)

// ResponseRepository defines the interface for Response data access.
// Responses are never updated apart from the deletion flag.
type ResponseRepository interface {
	Create(ctx context.Context, response *model.Response) (*model.Response, error)
	Get(ctx context.Context, formID model.FormID, id model.ResponseID) (*model.Response, error)
	// ListByForm returns the responses of a form, newest first
	ListByForm(ctx context.Context, formID model.FormID) ([]*model.Response, error)
	// MarkDeleted flags a response whose Airtable record no longer exists
	MarkDeleted(ctx context.Context, formID model.FormID, id model.ResponseID) error
}

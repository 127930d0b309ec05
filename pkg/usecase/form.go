package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/interfaces"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/domain/types"
)

// FormUseCase manages the forms of the signed in user
type FormUseCase struct {
	uc *UseCases
}

// CreateFormInput is a form definition as sent by the form builder
type CreateFormInput struct {
	Title     string              `json:"title"`
	BaseID    string              `json:"airtableBaseId"`
	TableID   string              `json:"airtableTableId"`
	BaseName  string              `json:"airtableBaseName"`
	TableName string              `json:"airtableTableName"`
	Questions []model.RawQuestion `json:"questions"`
}

// CreateForm checks the definition against the live table schema and stores
// the normalized form
func (x *FormUseCase) CreateForm(ctx context.Context, input CreateFormInput) (*model.Form, error) {
	if input.Title == "" || input.BaseID == "" || input.TableID == "" {
		return nil, newError(ErrValidation, "title, airtableBaseId and airtableTableId are required", nil)
	}
	if len(input.Questions) == 0 {
		return nil, newError(ErrValidation, "At least one question is required", nil)
	}

	svc, user, err := x.uc.currentService(ctx)
	if err != nil {
		return nil, err
	}

	table, err := svc.GetTable(ctx, input.BaseID, input.TableID)
	if err != nil {
		return nil, upstream(goerr.Wrap(err, "failed to get table",
			goerr.V(BaseIDKey, input.BaseID), goerr.V(TableIDKey, input.TableID)),
			"Failed to fetch Airtable schema")
	}
	if table == nil {
		return nil, newError(ErrValidation, "Invalid Airtable table id", nil)
	}

	questions, err := model.BuildForm(input.Questions, table.Fields)
	if err != nil {
		return nil, newError(ErrValidation, causeMessage(err), err)
	}

	form := &model.Form{
		OwnerID:   user.ID,
		Title:     input.Title,
		BaseID:    input.BaseID,
		TableID:   input.TableID,
		BaseName:  input.BaseName,
		TableName: input.TableName,
		Questions: questions,
	}
	// The metadata API lists tables without their base, so the table name
	// stands in for both.
	if form.BaseName == "" {
		form.BaseName = table.Name
	}
	if form.TableName == "" {
		form.TableName = table.Name
	}

	created, err := x.uc.repo.Form().Create(ctx, form)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create form", goerr.V(UserIDKey, user.ID))
	}
	return created, nil
}

// ListForms returns the forms of the signed in user, newest first
func (x *FormUseCase) ListForms(ctx context.Context) ([]*model.Form, error) {
	user, err := x.uc.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	forms, err := x.uc.repo.Form().ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list forms", goerr.V(UserIDKey, user.ID))
	}
	if forms == nil {
		forms = []*model.Form{}
	}
	return forms, nil
}

// GetForm returns a form of the signed in user. Forms of other users are
// reported as missing.
func (x *FormUseCase) GetForm(ctx context.Context, id model.FormID) (*model.Form, error) {
	user, err := x.uc.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	form, err := x.uc.loadForm(ctx, id)
	if err != nil {
		return nil, err
	}
	if form.OwnerID != user.ID {
		return nil, newError(ErrNotFound, "Form not found", nil)
	}
	return form, nil
}

// GetPublicForm returns any form for the public viewer
func (x *FormUseCase) GetPublicForm(ctx context.Context, id model.FormID) (*model.Form, error) {
	return x.uc.loadForm(ctx, id)
}

// FormSummary is the header of a response listing
type FormSummary struct {
	ID        model.FormID `json:"id"`
	Title     string       `json:"title"`
	BaseName  string       `json:"airtableBaseName"`
	TableName string       `json:"airtableTableName"`
}

// ResponseSummary is one row of a response listing
type ResponseSummary struct {
	ID                model.ResponseID     `json:"id"`
	RecordID          string               `json:"airtableRecordId"`
	CreatedAt         time.Time            `json:"createdAt"`
	Status            types.ResponseStatus `json:"status"`
	DeletedInAirtable bool                 `json:"deletedInAirtable"`
	CompactPreview    string               `json:"compactPreview"`
}

// ResponseList is the response listing of one form
type ResponseList struct {
	Form      FormSummary       `json:"form"`
	Responses []ResponseSummary `json:"responses"`
}

// ListResponses returns the responses of a form owned by the signed in user,
// newest first
func (x *FormUseCase) ListResponses(ctx context.Context, formID model.FormID) (*ResponseList, error) {
	user, err := x.uc.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	form, err := x.uc.loadForm(ctx, formID)
	if err != nil || form.OwnerID != user.ID {
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, newError(ErrNotFound, "Form not found or not owned by you", err)
	}

	responses, err := x.uc.repo.Response().ListByForm(ctx, form.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list responses", goerr.V(FormIDKey, form.ID))
	}

	result := &ResponseList{
		Form: FormSummary{
			ID:        form.ID,
			Title:     form.Title,
			BaseName:  form.BaseName,
			TableName: form.TableName,
		},
		Responses: make([]ResponseSummary, 0, len(responses)),
	}
	for _, resp := range responses {
		result.Responses = append(result.Responses, ResponseSummary{
			ID:                resp.ID,
			RecordID:          resp.RecordID,
			CreatedAt:         resp.CreatedAt,
			Status:            resp.Status.OrDefault(),
			DeletedInAirtable: resp.DeletedInAirtable,
			CompactPreview:    resp.CompactPreview(form),
		})
	}
	return result, nil
}

// loadForm maps a missing form to ErrNotFound
func (uc *UseCases) loadForm(ctx context.Context, id model.FormID) (*model.Form, error) {
	if id == "" {
		return nil, newError(ErrNotFound, "Form not found", nil)
	}

	form, err := uc.repo.Form().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, newError(ErrNotFound, "Form not found", err)
		}
		return nil, goerr.Wrap(err, "failed to get form", goerr.V(FormIDKey, id))
	}
	return form, nil
}

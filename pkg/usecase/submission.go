package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/domain/types"
	"github.com/secmon-lab/airform/pkg/utils/logging"
)

// SubmissionUseCase accepts answers to a published form
type SubmissionUseCase struct {
	uc *UseCases
}

// SubmitResult identifies the stored response and its Airtable record
type SubmitResult struct {
	Message    string           `json:"message"`
	RecordID   string           `json:"airtableRecordId"`
	ResponseID model.ResponseID `json:"responseId"`
}

// Submit validates answers, creates the Airtable record with the form
// owner's credentials and stores the response. Rejected answers are reported
// as a *SubmissionError.
func (x *SubmissionUseCase) Submit(ctx context.Context, formID model.FormID, answers model.Answers) (*SubmitResult, error) {
	if answers == nil {
		answers = model.Answers{}
	}

	form, err := x.uc.loadForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	if errs := model.ValidateAnswers(form.Questions, answers); len(errs) > 0 {
		return nil, &SubmissionError{Errors: errs}
	}

	owner, err := x.uc.repo.User().Get(ctx, form.OwnerID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get form owner",
			goerr.V(FormIDKey, form.ID), goerr.V(UserIDKey, form.OwnerID))
	}
	svc, err := x.uc.serviceFor(ctx, owner)
	if err != nil {
		return nil, err
	}

	payload := model.ToExternalPayload(form.Questions, answers)
	recordID, err := svc.CreateRecord(ctx, form.BaseID, form.TableID, payload)
	if err != nil {
		return nil, upstream(goerr.Wrap(err, "failed to create record", goerr.V(FormIDKey, form.ID)),
			"Failed to create Airtable record")
	}

	resp, err := x.uc.repo.Response().Create(ctx, &model.Response{
		FormID:   form.ID,
		RecordID: recordID,
		Answers:  answers,
		Status:   types.ResponseStatusSubmitted,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store response",
			goerr.V(FormIDKey, form.ID), goerr.V("record_id", recordID))
	}

	logging.From(ctx).Info("response submitted", "form_id", form.ID, "response_id", resp.ID, "record_id", recordID)

	return &SubmitResult{
		Message:    "Response saved successfully",
		RecordID:   recordID,
		ResponseID: resp.ID,
	}, nil
}

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/usecase"
)

func TestSubmissionUseCase_Submit(t *testing.T) {
	env := newTestEnv(t)
	form, err := env.uc.Form.CreateForm(env.ctx, sampleInput())
	gt.NoError(t, err).Required()

	result, err := env.uc.Submission.Submit(context.Background(), form.ID, model.Answers{
		"name":   "Alice",
		"role":   "Engineer",
		"skills": []any{"Go"},
		"cv":     []any{map[string]any{"url": "https://files.example/cv.pdf", "filename": "cv.pdf", "size": 10.0}},
	})
	gt.NoError(t, err).Required()
	gt.Value(t, result.Message).Equal("Response saved successfully")

	fields := env.airtable.records[result.RecordID]
	gt.Value(t, fields["Name"]).Equal(any("Alice"))
	gt.Value(t, fields["Role"]).Equal(any("Engineer"))
	gt.Value(t, fields["Skills"]).Equal(any([]any{"Go"}))
	gt.Value(t, fields["CV"]).Equal(any([]any{map[string]any{"url": "https://files.example/cv.pdf", "filename": "cv.pdf"}}))

	resp, err := env.repo.Response().Get(env.ctx, form.ID, result.ResponseID)
	gt.NoError(t, err).Required()
	gt.Value(t, resp.RecordID).Equal(result.RecordID)
	gt.Value(t, resp.Answers["name"]).Equal(any("Alice"))
}

func TestSubmissionUseCase_Submit_HiddenRequired(t *testing.T) {
	env := newTestEnv(t)
	form, err := env.uc.Form.CreateForm(env.ctx, sampleInput())
	gt.NoError(t, err).Required()

	// skills is required only for engineers
	_, err = env.uc.Submission.Submit(context.Background(), form.ID, model.Answers{
		"name": "Bob",
		"role": "Designer",
	})
	gt.NoError(t, err).Required()
}

func TestSubmissionUseCase_Submit_Invalid(t *testing.T) {
	env := newTestEnv(t)
	form, err := env.uc.Form.CreateForm(env.ctx, sampleInput())
	gt.NoError(t, err).Required()

	_, err = env.uc.Submission.Submit(context.Background(), form.ID, model.Answers{
		"role":   "Engineer",
		"skills": []any{"Rust"},
	})
	gt.Error(t, err).Is(usecase.ErrValidation)

	var subErr *usecase.SubmissionError
	gt.Bool(t, errors.As(err, &subErr)).True()
	gt.Value(t, subErr.Errors).Equal([]string{
		"Missing required field: Name",
		"Invalid value(s) for Skills: Rust. Allowed: Go, SQL",
	})

	gt.Value(t, len(env.airtable.records)).Equal(0)
	responses, err := env.repo.Response().ListByForm(env.ctx, form.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, responses).Length(0)
}

func TestSubmissionUseCase_Submit_Errors(t *testing.T) {
	t.Run("unknown form", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.uc.Submission.Submit(context.Background(), "nope", model.Answers{})
		gt.Error(t, err).Is(usecase.ErrNotFound)
	})

	t.Run("Airtable rejects the record", func(t *testing.T) {
		env := newTestEnv(t)
		form, err := env.uc.Form.CreateForm(env.ctx, sampleInput())
		gt.NoError(t, err).Required()

		env.airtable.err = goerr.New("INVALID_VALUE_FOR_COLUMN")
		_, err = env.uc.Submission.Submit(context.Background(), form.ID, model.Answers{
			"name": "Carol",
			"role": "Designer",
		})
		gt.Error(t, err).Is(usecase.ErrUpstream)

		responses, err := env.repo.Response().ListByForm(env.ctx, form.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, responses).Length(0)
	})

	t.Run("owner lost credentials", func(t *testing.T) {
		env := newTestEnv(t)
		form, err := env.uc.Form.CreateForm(env.ctx, sampleInput())
		gt.NoError(t, err).Required()

		owner := *env.owner
		owner.Tokens = model.OAuthTokens{}
		// Upsert keeps refresh tokens only; the empty access token is stored
		_, err = env.repo.User().Upsert(env.ctx, &owner)
		gt.NoError(t, err).Required()

		_, err = env.uc.Submission.Submit(context.Background(), form.ID, model.Answers{
			"name": "Dan",
			"role": "Designer",
		})
		gt.Error(t, err).Is(usecase.ErrUnauthorized)
	})
}

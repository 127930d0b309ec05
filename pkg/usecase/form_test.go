package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/domain/model/auth"
	"github.com/secmon-lab/airform/pkg/domain/types"
	"github.com/secmon-lab/airform/pkg/usecase"
)

func TestFormUseCase_CreateForm(t *testing.T) {
	env := newTestEnv(t)

	form, err := env.uc.Form.CreateForm(env.ctx, sampleInput())
	gt.NoError(t, err).Required()

	gt.Value(t, form.ID).NotEqual(model.FormID(""))
	gt.Value(t, form.OwnerID).Equal(env.owner.ID)
	gt.Value(t, form.BaseName).Equal("Applicants")
	gt.Value(t, form.TableName).Equal("Applicants")
	gt.Array(t, form.Questions).Length(4).Required()
	gt.Value(t, form.Questions[1].Type).Equal(types.QuestionTypeSingleSelect)
	gt.Value(t, form.Questions[1].ExternalFieldName).Equal("Role")
	gt.Value(t, form.Questions[2].ConditionalRules.Logic).Equal(types.RuleLogicAnd)

	stored, err := env.repo.Form().Get(env.ctx, form.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Title).Equal("Application")
}

func TestFormUseCase_CreateForm_KeepsGivenNames(t *testing.T) {
	env := newTestEnv(t)
	input := sampleInput()
	input.BaseName = "Hiring"
	input.TableName = "Applicants 2026"

	form, err := env.uc.Form.CreateForm(env.ctx, input)
	gt.NoError(t, err).Required()
	gt.Value(t, form.BaseName).Equal("Hiring")
	gt.Value(t, form.TableName).Equal("Applicants 2026")
}

func TestFormUseCase_CreateForm_Errors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*usecase.CreateFormInput)
		message string
	}{
		{
			name:    "missing title",
			modify:  func(in *usecase.CreateFormInput) { in.Title = "" },
			message: "title, airtableBaseId and airtableTableId are required",
		},
		{
			name:    "missing table",
			modify:  func(in *usecase.CreateFormInput) { in.TableID = "" },
			message: "title, airtableBaseId and airtableTableId are required",
		},
		{
			name:    "no questions",
			modify:  func(in *usecase.CreateFormInput) { in.Questions = nil },
			message: "At least one question is required",
		},
		{
			name:    "unknown table",
			modify:  func(in *usecase.CreateFormInput) { in.TableID = "tblOther" },
			message: "Invalid Airtable table id",
		},
		{
			name: "unknown field",
			modify: func(in *usecase.CreateFormInput) {
				in.Questions[0].ExternalFieldID = "fldGone"
			},
			message: "Airtable field with id fldGone does not exist in the selected table",
		},
		{
			name: "unsupported field",
			modify: func(in *usecase.CreateFormInput) {
				in.Questions[0].ExternalFieldID = "fldAge"
			},
			message: `Airtable field "Age" uses unsupported type "number"`,
		},
		{
			name: "bad rule logic",
			modify: func(in *usecase.CreateFormInput) {
				in.Questions[2].ConditionalRules["logic"] = "XOR"
			},
			message: "invalid logic in conditionalRules (must be AND or OR)",
		},
		{
			name: "rule on unknown question",
			modify: func(in *usecase.CreateFormInput) {
				in.Questions[2].ConditionalRules = map[string]any{
					"conditions": []any{
						map[string]any{"questionKey": "ghost", "operator": "equals", "value": "x"},
					},
				}
			},
			message: "conditionalRules references unknown questionKey: ghost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			input := sampleInput()
			tt.modify(&input)

			_, err := env.uc.Form.CreateForm(env.ctx, input)
			gt.Error(t, err).Is(usecase.ErrValidation)
			gt.Value(t, err.Error()).Equal(tt.message)

			forms, err := env.repo.Form().List(env.ctx)
			gt.NoError(t, err).Required()
			gt.Array(t, forms).Length(0)
		})
	}
}

func TestFormUseCase_Ownership(t *testing.T) {
	env := newTestEnv(t)
	form, err := env.uc.Form.CreateForm(env.ctx, sampleInput())
	gt.NoError(t, err).Required()

	other, err := env.repo.User().Upsert(env.ctx, &model.User{AirtableUserID: "usrOther"})
	gt.NoError(t, err).Required()
	otherCtx := auth.ContextWithToken(context.Background(), auth.NewToken(other.ID, "usrOther", "", ""))

	t.Run("owner sees the form", func(t *testing.T) {
		got, err := env.uc.Form.GetForm(env.ctx, form.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(form.ID)

		forms, err := env.uc.Form.ListForms(env.ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, forms).Length(1)
	})

	t.Run("other user gets not found", func(t *testing.T) {
		_, err := env.uc.Form.GetForm(otherCtx, form.ID)
		gt.Error(t, err).Is(usecase.ErrNotFound)

		_, err = env.uc.Form.ListResponses(otherCtx, form.ID)
		gt.Error(t, err).Is(usecase.ErrNotFound)
		gt.Value(t, err.Error()).Equal("Form not found or not owned by you")

		forms, err := env.uc.Form.ListForms(otherCtx)
		gt.NoError(t, err).Required()
		gt.Array(t, forms).Length(0)
	})

	t.Run("public viewer needs no session", func(t *testing.T) {
		got, err := env.uc.Form.GetPublicForm(context.Background(), form.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("Application")
	})

	t.Run("missing form", func(t *testing.T) {
		_, err := env.uc.Form.GetPublicForm(context.Background(), "nope")
		gt.Error(t, err).Is(usecase.ErrNotFound)
	})
}

func TestFormUseCase_ListResponses(t *testing.T) {
	env := newTestEnv(t)
	form, err := env.uc.Form.CreateForm(env.ctx, sampleInput())
	gt.NoError(t, err).Required()

	_, err = env.uc.Submission.Submit(context.Background(), form.ID, model.Answers{
		"name":   "Alice",
		"role":   "Engineer",
		"skills": []any{"Go", "SQL"},
	})
	gt.NoError(t, err).Required()

	list, err := env.uc.Form.ListResponses(env.ctx, form.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, list.Form.ID).Equal(form.ID)
	gt.Value(t, list.Form.TableName).Equal("Applicants")
	gt.Array(t, list.Responses).Length(1).Required()
	gt.Value(t, list.Responses[0].Status).Equal(types.ResponseStatusSubmitted)
	gt.Value(t, list.Responses[0].CompactPreview).Equal("name: Alice | role: Engineer | skills: Go, SQL")
}

package usecase_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/airform/pkg/domain/model"
	"github.com/secmon-lab/airform/pkg/domain/types"
)

func TestValidateForms_NoDrift(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.uc.Form.CreateForm(env.ctx, sampleInput())
	gt.NoError(t, err).Required()

	result, err := env.uc.ValidateForms(env.ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, result.Forms).Equal(1)
	gt.Bool(t, result.HasIssues()).False()
}

func TestValidateForms_Drift(t *testing.T) {
	env := newTestEnv(t)
	form, err := env.uc.Form.CreateForm(env.ctx, sampleInput())
	gt.NoError(t, err).Required()

	// Role loses Designer, Skills becomes a text field, Name is renamed, CV is
	// deleted
	env.airtable.tables["app1"] = []model.Table{{
		ID:   "tbl1",
		Name: "Applicants",
		Fields: []model.TableField{
			{ID: "fldName", Name: "Full name", Type: types.AirtableSingleLineText},
			{ID: "fldRole", Name: "Role", Type: types.AirtableSingleSelect, Options: &model.FieldOptions{
				Choices: []model.FieldChoice{{Name: "Engineer"}},
			}},
			{ID: "fldSkills", Name: "Skills", Type: types.AirtableMultilineText},
		},
	}}

	result, err := env.uc.ValidateForms(env.ctx)
	gt.NoError(t, err).Required()
	gt.Bool(t, result.HasIssues()).True()

	messages := map[string]string{}
	for _, issue := range result.Issues {
		gt.Value(t, issue.FormID).Equal(form.ID)
		messages[issue.QuestionKey+"/"+issue.Message] = issue.Actual
	}

	gt.Map(t, messages).HasKey("/form definition is no longer valid")
	gt.Map(t, messages).HasKey("name/Airtable field was renamed")
	gt.Map(t, messages).HasKey("role/option was removed from Airtable field")
	gt.Map(t, messages).HasKey("skills/Airtable field type changed")
	gt.Map(t, messages).HasKey("cv/Airtable field was removed")
	gt.Value(t, messages["skills/Airtable field type changed"]).Equal("multilineText")

	stored, err := env.repo.Form().Get(env.ctx, form.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Questions[0].ExternalFieldName).Equal("Name")
}

func TestValidateForms_MissingTable(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.uc.Form.CreateForm(env.ctx, sampleInput())
	gt.NoError(t, err).Required()

	delete(env.airtable.tables, "app1")

	result, err := env.uc.ValidateForms(env.ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, result.Issues).Length(1).Required()
	gt.Value(t, result.Issues[0].Message).Equal("Airtable table not found")
}

package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/model"
)

// ValidationIssue is one difference between a stored form and the live
// Airtable schema
type ValidationIssue struct {
	FormID      model.FormID
	FormTitle   string
	QuestionKey string
	Message     string
	Expected    string
	Actual      string
}

// ValidationResult holds the results of a form drift check
type ValidationResult struct {
	Forms  int
	Issues []ValidationIssue
}

// HasIssues returns true if there are any validation issues
func (r *ValidationResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// AddIssue adds a validation issue to the result
func (r *ValidationResult) AddIssue(issue ValidationIssue) {
	r.Issues = append(r.Issues, issue)
}

// ValidateForms checks every stored form against the live schema of its
// table with the owner's credentials. It does NOT modify any data.
func (uc *UseCases) ValidateForms(ctx context.Context) (*ValidationResult, error) {
	forms, err := uc.repo.Form().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list forms")
	}

	result := &ValidationResult{Forms: len(forms)}
	for _, form := range forms {
		if err := uc.validateForm(ctx, form, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (uc *UseCases) validateForm(ctx context.Context, form *model.Form, result *ValidationResult) error {
	issue := func(questionKey, msg, expected, actual string) {
		result.AddIssue(ValidationIssue{
			FormID:      form.ID,
			FormTitle:   form.Title,
			QuestionKey: questionKey,
			Message:     msg,
			Expected:    expected,
			Actual:      actual,
		})
	}

	owner, err := uc.repo.User().Get(ctx, form.OwnerID)
	if err != nil {
		issue("", "form owner not found", form.OwnerID.String(), "")
		return nil
	}
	svc, err := uc.serviceFor(ctx, owner)
	if err != nil {
		issue("", "form owner has no Airtable credentials", "", "")
		return nil
	}

	table, err := svc.GetTable(ctx, form.BaseID, form.TableID)
	if err != nil {
		issue("", "failed to fetch Airtable schema", "", err.Error())
		return nil
	}
	if table == nil {
		issue("", "Airtable table not found", form.BaseID+"/"+form.TableID, "")
		return nil
	}

	if _, err := model.BuildForm(rawQuestions(form.Questions), table.Fields); err != nil {
		issue("", "form definition is no longer valid", "", err.Error())
	}

	fields := make(map[string]model.TableField, len(table.Fields))
	for _, f := range table.Fields {
		fields[f.ID] = f
	}

	for _, q := range form.Questions {
		field, ok := fields[q.ExternalFieldID]
		if !ok {
			issue(q.QuestionKey, "Airtable field was removed", q.ExternalFieldID, "")
			continue
		}

		if qt, ok := field.Type.QuestionType(); !ok || qt != q.Type {
			issue(q.QuestionKey, "Airtable field type changed", q.Type.String(), field.Type.String())
			continue
		}

		if field.Name != q.ExternalFieldName {
			issue(q.QuestionKey, "Airtable field was renamed", q.ExternalFieldName, field.Name)
		}

		live := make(map[string]struct{})
		for _, name := range field.ChoiceNames() {
			live[name] = struct{}{}
		}
		for _, opt := range q.Options {
			if _, ok := live[opt]; !ok {
				issue(q.QuestionKey, "option was removed from Airtable field", opt, "")
			}
		}
	}

	return nil
}

// rawQuestions turns stored questions back into definitions BuildForm accepts
func rawQuestions(questions []model.Question) []model.RawQuestion {
	raw := make([]model.RawQuestion, 0, len(questions))
	for _, q := range questions {
		rq := model.RawQuestion{
			QuestionKey:     q.QuestionKey,
			ExternalFieldID: q.ExternalFieldID,
			Label:           q.Label,
			Required:        q.Required,
		}
		if q.ConditionalRules != nil {
			conditions := make([]any, 0, len(q.ConditionalRules.Conditions))
			for _, c := range q.ConditionalRules.Conditions {
				conditions = append(conditions, map[string]any{
					"questionKey": c.QuestionKey,
					"operator":    c.Operator.String(),
					"value":       c.Value,
				})
			}
			rq.ConditionalRules = map[string]any{
				"logic":      q.ConditionalRules.Logic.String(),
				"conditions": conditions,
			}
		}
		raw = append(raw, rq)
	}
	return raw
}

// String renders an issue for terminal output
func (x ValidationIssue) String() string {
	s := fmt.Sprintf("form %s (%s)", x.FormID, x.FormTitle)
	if x.QuestionKey != "" {
		s += " question " + x.QuestionKey
	}
	s += ": " + x.Message
	if x.Expected != "" || x.Actual != "" {
		s += fmt.Sprintf(" (expected %q, actual %q)", x.Expected, x.Actual)
	}
	return s
}

package model

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/types"
)

// Table is one table of an Airtable base as reported by the metadata API
type Table struct {
	ID             string       `json:"id,omitempty"`
	Name           string       `json:"name"`
	Description    string       `json:"description,omitempty"`
	PrimaryFieldID string       `json:"primaryFieldId,omitempty"`
	Fields         []TableField `json:"fields"`
}

// TableField describes one field of an Airtable table
type TableField struct {
	ID      string                  `json:"id,omitempty"`
	Name    string                  `json:"name"`
	Type    types.AirtableFieldType `json:"type"`
	Options *FieldOptions           `json:"options,omitempty"`
}

// FieldOptions carries the select choices of a field. Other option kinds are
// not needed by forms and are dropped on decode.
type FieldOptions struct {
	Choices []FieldChoice `json:"choices,omitempty"`
}

// FieldChoice is one choice of a select field
type FieldChoice struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// ChoiceNames returns the ordered choice names of select fields and an empty
// list for every other field type
func (f TableField) ChoiceNames() []string {
	names := []string{}
	if !f.Type.HasChoices() || f.Options == nil {
		return names
	}
	for _, c := range f.Options.Choices {
		names = append(names, c.Name)
	}
	return names
}

// FindTable returns the table with id, or nil
func FindTable(tables []Table, id string) *Table {
	for i := range tables {
		if tables[i].ID == id {
			return &tables[i]
		}
	}
	return nil
}

// SupportedField is a table field usable as a form question
type SupportedField struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Type         types.AirtableFieldType `json:"type"`
	InternalType types.QuestionType      `json:"internalType"`
	Options      []string                `json:"options"`
}

// SupportedFields filters fields down to the types forms can carry, keeping
// table order
func SupportedFields(fields []TableField) []SupportedField {
	result := []SupportedField{}
	for _, f := range fields {
		qt, ok := f.Type.QuestionType()
		if !ok {
			continue
		}
		result = append(result, SupportedField{
			ID:           f.ID,
			Name:         f.Name,
			Type:         f.Type,
			InternalType: qt,
			Options:      f.ChoiceNames(),
		})
	}
	return result
}

// RawQuestion is a question definition as submitted by a form author. Only
// the key, label and required flag are trusted; everything else is derived
// from the table schema. ConditionalRules is kept undecoded so that malformed
// rules can be reported precisely.
type RawQuestion struct {
	QuestionKey      string         `json:"questionKey" toml:"question_key"`
	ExternalFieldID  string         `json:"airtableFieldId" toml:"airtable_field_id"`
	Label            string         `json:"label" toml:"label"`
	Required         bool           `json:"required" toml:"required"`
	ConditionalRules map[string]any `json:"conditionalRules,omitempty" toml:"conditional_rules,omitempty"`
}

// BuildForm validates raw question definitions against the live fields of a
// table and returns the normalized questions. It fails on the first problem.
func BuildForm(raw []RawQuestion, fields []TableField) ([]Question, error) {
	fieldMap := make(map[string]TableField, len(fields))
	for _, f := range fields {
		fieldMap[f.ID] = f
	}

	questionKeys := make(map[string]struct{}, len(raw))
	for _, rq := range raw {
		questionKeys[rq.QuestionKey] = struct{}{}
	}

	questions := make([]Question, 0, len(raw))
	for i, rq := range raw {
		if rq.QuestionKey == "" || rq.ExternalFieldID == "" || rq.Label == "" {
			return nil, goerr.Wrap(ErrMissingRequiredField,
				"each question must have questionKey, airtableFieldId, and label",
				goerr.V("index", i),
				goerr.V(QuestionKeyKey, rq.QuestionKey))
		}

		field, ok := fieldMap[rq.ExternalFieldID]
		if !ok {
			return nil, goerr.Wrap(ErrUnknownField,
				fmt.Sprintf("Airtable field with id %s does not exist in the selected table", rq.ExternalFieldID),
				goerr.V(QuestionKeyKey, rq.QuestionKey),
				goerr.V(FieldIDKey, rq.ExternalFieldID))
		}

		qt, ok := field.Type.QuestionType()
		if !ok {
			return nil, goerr.Wrap(ErrUnsupportedType,
				fmt.Sprintf("Airtable field %q uses unsupported type %q", field.Name, field.Type),
				goerr.V(QuestionKeyKey, rq.QuestionKey),
				goerr.V(FieldIDKey, field.ID),
				goerr.V(FieldTypeKey, field.Type))
		}

		rules, err := parseConditionalRules(rq.ConditionalRules, questionKeys)
		if err != nil {
			return nil, goerr.With(err, goerr.V(QuestionKeyKey, rq.QuestionKey))
		}

		questions = append(questions, Question{
			QuestionKey:       rq.QuestionKey,
			Label:             rq.Label,
			Type:              qt,
			Required:          rq.Required,
			ExternalFieldID:   field.ID,
			ExternalFieldName: field.Name,
			Options:           field.ChoiceNames(),
			ConditionalRules:  rules,
		})
	}

	return questions, nil
}

// parseConditionalRules checks raw rules against the form's own question keys.
// A nil map means the question has no rules. Cycles between questions are not
// detected.
func parseConditionalRules(raw map[string]any, questionKeys map[string]struct{}) (*RuleGroup, error) {
	if raw == nil {
		return nil, nil
	}

	logic := types.RuleLogicAnd
	if v, ok := raw["logic"]; ok && !isFalsy(v) {
		s, _ := v.(string)
		if !types.RuleLogic(s).IsValid() {
			return nil, goerr.Wrap(ErrInvalidConditionalRule,
				"invalid logic in conditionalRules (must be AND or OR)",
				goerr.V(LogicKey, v))
		}
		logic = types.RuleLogic(s)
	}

	rawConditions, ok := asList(raw["conditions"])
	if !ok {
		return nil, goerr.Wrap(ErrInvalidConditionalRule, "conditionalRules.conditions must be an array")
	}

	conditions := make([]Condition, 0, len(rawConditions))
	for _, rc := range rawConditions {
		cond, ok := asObject(rc)
		if !ok {
			return nil, goerr.Wrap(ErrInvalidConditionalRule, "conditionalRules condition must be an object")
		}

		key, _ := cond["questionKey"].(string)
		if _, declared := questionKeys[key]; key == "" || !declared {
			return nil, goerr.Wrap(ErrInvalidConditionalRule,
				fmt.Sprintf("conditionalRules references unknown questionKey: %v", cond["questionKey"]),
				goerr.V(ReferencedKeyKey, cond["questionKey"]))
		}

		op, _ := cond["operator"].(string)
		if !types.RuleOperator(op).IsValid() {
			return nil, goerr.Wrap(ErrInvalidConditionalRule,
				fmt.Sprintf("Invalid operator in conditionalRules: %v", cond["operator"]),
				goerr.V(OperatorKey, cond["operator"]))
		}

		value, present := cond["value"]
		if !present {
			return nil, goerr.Wrap(ErrInvalidConditionalRule, "conditionalRules condition is missing value",
				goerr.V(ReferencedKeyKey, key))
		}

		conditions = append(conditions, Condition{
			QuestionKey: key,
			Operator:    types.RuleOperator(op),
			Value:       value,
		})
	}

	return &RuleGroup{
		Logic:      logic,
		Conditions: conditions,
	}, nil
}

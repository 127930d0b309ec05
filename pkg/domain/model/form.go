package model

import (
	"time"

	"github.com/secmon-lab/airform/pkg/domain/types"
)

// FormID identifies a stored form
type FormID string

func (x FormID) String() string { return string(x) }

// Form is a published form bound to one Airtable table
type Form struct {
	ID        FormID     `json:"id"`
	OwnerID   UserID     `json:"owner"`
	Title     string     `json:"title"`
	BaseID    string     `json:"airtableBaseId"`
	TableID   string     `json:"airtableTableId"`
	BaseName  string     `json:"airtableBaseName,omitempty"`
	TableName string     `json:"airtableTableName,omitempty"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Question is one form field bound to exactly one Airtable field. Type, Options
// and ExternalFieldName are derived from the table schema by BuildForm.
type Question struct {
	QuestionKey       string             `json:"questionKey"`
	Label             string             `json:"label"`
	Type              types.QuestionType `json:"type"`
	Required          bool               `json:"required"`
	ExternalFieldID   string             `json:"airtableFieldId"`
	ExternalFieldName string             `json:"airtableFieldName"`
	Options           []string           `json:"options"`
	ConditionalRules  *RuleGroup         `json:"conditionalRules,omitempty"`
}

// DisplayName is the label, or the key when no label is set
func (q Question) DisplayName() string {
	if q.Label != "" {
		return q.Label
	}
	return q.QuestionKey
}

// HasOption reports whether s is one of the question's options
func (q Question) HasOption(s string) bool {
	for _, opt := range q.Options {
		if opt == s {
			return true
		}
	}
	return false
}

// RuleGroup gates the visibility of a question. No conditions means always
// visible.
type RuleGroup struct {
	Logic      types.RuleLogic `json:"logic"`
	Conditions []Condition     `json:"conditions"`
}

// Condition compares the answer of another question with Value
type Condition struct {
	QuestionKey string             `json:"questionKey"`
	Operator    types.RuleOperator `json:"operator"`
	Value       any                `json:"value"`
}

// Answers maps question keys to JSON compatible submitted values
type Answers map[string]any

// Lookup returns the answer for key. ok is false when the answer is absent or
// null.
func (a Answers) Lookup(key string) (any, bool) {
	v, exists := a[key]
	if !exists || v == nil {
		return nil, false
	}
	return v, true
}

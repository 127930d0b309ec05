package model

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/airform/pkg/domain/types"
)

// AnswerError is one problem found in a submission. Err is one of the
// submission sentinels so callers can test the kind with errors.Is.
type AnswerError struct {
	QuestionKey string
	Message     string
	Err         error
}

func (e *AnswerError) Error() string { return e.Message }

func (e *AnswerError) Unwrap() error { return e.Err }

// ValidateAnswers checks answers against the questions visible for them and
// returns every problem as a human readable message. An empty result means
// the submission is acceptable.
func ValidateAnswers(questions []Question, answers Answers) []string {
	found := ValidateAnswersDetailed(questions, answers)
	messages := make([]string, 0, len(found))
	for _, e := range found {
		messages = append(messages, e.Message)
	}
	return messages
}

// ValidateAnswersDetailed is ValidateAnswers with typed errors
func ValidateAnswersDetailed(questions []Question, answers Answers) []*AnswerError {
	var found []*AnswerError

	for _, q := range VisibleQuestions(questions, answers) {
		value, present := answers.Lookup(q.QuestionKey)

		if q.Required && isEmptyAnswer(q.Type, value, present) {
			found = append(found, &AnswerError{
				QuestionKey: q.QuestionKey,
				Message:     fmt.Sprintf("Missing required field: %s", q.DisplayName()),
				Err:         ErrRequiredAnswerMissing,
			})
			continue
		}

		if !present {
			continue
		}

		if err := validateAnswerValue(q, value); err != nil {
			found = append(found, err)
		}
	}

	return found
}

// isEmptyAnswer applies the emptiness rule of each question type. Any falsy
// value is empty, so false and 0 do not satisfy a required text question.
func isEmptyAnswer(t types.QuestionType, value any, present bool) bool {
	if !present {
		return true
	}

	switch t {
	case types.QuestionTypeShortText, types.QuestionTypeLongText, types.QuestionTypeSingleSelect:
		return isFalsy(value) || strings.TrimSpace(stringify(value)) == ""
	case types.QuestionTypeMultiSelect, types.QuestionTypeAttachment:
		list, ok := asList(value)
		return isFalsy(value) || !ok || len(list) == 0
	default:
		return false
	}
}

func validateAnswerValue(q Question, value any) *AnswerError {
	switch q.Type {
	case types.QuestionTypeSingleSelect:
		return validateSingleSelect(q, value)
	case types.QuestionTypeMultiSelect:
		return validateMultiSelect(q, value)
	case types.QuestionTypeAttachment:
		return validateAttachments(q, value)
	default:
		return nil
	}
}

func validateSingleSelect(q Question, value any) *AnswerError {
	s, ok := value.(string)
	if ok && q.HasOption(s) {
		return nil
	}
	return &AnswerError{
		QuestionKey: q.QuestionKey,
		Message: fmt.Sprintf("Invalid value for %s: %s. Must be one of: %s",
			q.DisplayName(), stringify(value), strings.Join(q.Options, ", ")),
		Err: ErrInvalidOptionValue,
	}
}

func validateMultiSelect(q Question, value any) *AnswerError {
	list, ok := asList(value)
	if !ok {
		return &AnswerError{
			QuestionKey: q.QuestionKey,
			Message:     fmt.Sprintf("Invalid value for %s. Must be an array of options.", q.DisplayName()),
			Err:         ErrInvalidOptionValue,
		}
	}

	var invalid []any
	for _, elem := range list {
		s, ok := elem.(string)
		if !ok || !q.HasOption(s) {
			invalid = append(invalid, elem)
		}
	}
	if len(invalid) == 0 {
		return nil
	}

	return &AnswerError{
		QuestionKey: q.QuestionKey,
		Message: fmt.Sprintf("Invalid value(s) for %s: %s. Allowed: %s",
			q.DisplayName(), joinValues(invalid, ", "), strings.Join(q.Options, ", ")),
		Err: ErrInvalidOptionValue,
	}
}

func validateAttachments(q Question, value any) *AnswerError {
	list, ok := asList(value)
	if !ok {
		return &AnswerError{
			QuestionKey: q.QuestionKey,
			Message:     fmt.Sprintf("Invalid value for %s. Must be an array of attachments.", q.DisplayName()),
			Err:         ErrInvalidAttachmentShape,
		}
	}

	for _, elem := range list {
		if _, ok := attachmentURL(elem); !ok {
			return &AnswerError{
				QuestionKey: q.QuestionKey,
				Message:     fmt.Sprintf("Invalid attachment format for %s. Each attachment must have a \"url\" string.", q.DisplayName()),
				Err:         ErrInvalidAttachmentShape,
			}
		}
	}
	return nil
}

func attachmentURL(v any) (string, bool) {
	obj, ok := asObject(v)
	if !ok {
		return "", false
	}
	url, ok := obj["url"].(string)
	return url, ok
}

// joinValues joins list elements like Array.prototype.join, rendering null as
// an empty string
func joinValues(list []any, sep string) string {
	parts := make([]string, len(list))
	for i, e := range list {
		if e != nil {
			parts[i] = stringify(e)
		}
	}
	return strings.Join(parts, sep)
}

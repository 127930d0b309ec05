package model

import (
	"github.com/secmon-lab/airform/pkg/domain/types"
)

// ToExternalPayload maps answers to the fields of an Airtable record, keyed
// by field name. Unanswered questions, empty strings and empty lists are left
// out so Airtable keeps its column defaults. Answers are expected to have
// passed ValidateAnswers.
func ToExternalPayload(questions []Question, answers Answers) map[string]any {
	fields := make(map[string]any)

	for _, q := range questions {
		value, ok := answers.Lookup(q.QuestionKey)
		if !ok || isBlankAnswer(value) {
			continue
		}

		switch q.Type {
		case types.QuestionTypeShortText, types.QuestionTypeLongText, types.QuestionTypeSingleSelect:
			fields[q.ExternalFieldName] = stringify(value)

		case types.QuestionTypeMultiSelect:
			fields[q.ExternalFieldName] = value

		case types.QuestionTypeAttachment:
			list, ok := asList(value)
			if !ok {
				continue
			}
			fields[q.ExternalFieldName] = toAttachmentDescriptors(list)
		}
	}

	return fields
}

func isBlankAnswer(v any) bool {
	if s, ok := v.(string); ok {
		return s == ""
	}
	if list, ok := asList(v); ok {
		return len(list) == 0
	}
	return false
}

// toAttachmentDescriptors keeps only url and filename of each attachment
func toAttachmentDescriptors(list []any) []any {
	out := make([]any, 0, len(list))
	for _, elem := range list {
		obj, ok := asObject(elem)
		if !ok {
			continue
		}
		desc := map[string]any{"url": obj["url"]}
		if filename, ok := obj["filename"]; ok && filename != nil {
			desc["filename"] = filename
		}
		out = append(out, desc)
	}
	return out
}

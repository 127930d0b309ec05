package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/secmon-lab/airform/pkg/domain/types"
)

// ResponseID identifies a stored submission
type ResponseID string

func (x ResponseID) String() string { return string(x) }

// Response is an accepted submission together with the Airtable record created
// for it. Responses are append-only; only the deletion flag changes later.
type Response struct {
	ID                ResponseID           `json:"id"`
	FormID            FormID               `json:"formId"`
	RecordID          string               `json:"airtableRecordId"`
	Answers           Answers              `json:"answers"`
	Status            types.ResponseStatus `json:"status"`
	DeletedInAirtable bool                 `json:"deletedInAirtable"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

const compactPreviewSize = 3

// CompactPreview renders the first three answers as "key: value" joined by
// " | ". With a form the answers follow question order, otherwise key order.
func (r *Response) CompactPreview(form *Form) string {
	keys := r.previewKeys(form)
	if len(keys) > compactPreviewSize {
		keys = keys[:compactPreviewSize]
	}

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, previewValue(r.Answers[key])))
	}
	return strings.Join(parts, " | ")
}

func (r *Response) previewKeys(form *Form) []string {
	var keys []string
	seen := make(map[string]struct{}, len(r.Answers))

	if form != nil {
		for _, q := range form.Questions {
			if _, ok := r.Answers[q.QuestionKey]; ok {
				keys = append(keys, q.QuestionKey)
				seen[q.QuestionKey] = struct{}{}
			}
		}
	}

	var rest []string
	for key := range r.Answers {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)

	return append(keys, rest...)
}

func previewValue(v any) string {
	if list, ok := asList(v); ok {
		return joinValues(list, ", ")
	}
	if obj, ok := asObject(v); ok {
		raw, err := json.Marshal(obj)
		if err != nil {
			return "[object Object]"
		}
		return string(raw)
	}
	if v == nil {
		return "null"
	}
	return stringify(v)
}

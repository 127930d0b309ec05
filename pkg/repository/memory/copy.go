package memory

import "github.com/secmon-lab/airform/pkg/domain/model"

// copyValue deep copies a JSON compatible value so stored answers and rule
// values cannot be mutated through a returned entity
func copyValue(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		out := make([]string, len(x))
		copy(out, x)
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = copyValue(e)
		}
		return out
	default:
		return v
	}
}

func copyAnswers(answers model.Answers) model.Answers {
	if answers == nil {
		return nil
	}
	out := make(model.Answers, len(answers))
	for k, v := range answers {
		out[k] = copyValue(v)
	}
	return out
}

func copyQuestion(q model.Question) model.Question {
	copied := q
	if q.Options != nil {
		copied.Options = make([]string, len(q.Options))
		copy(copied.Options, q.Options)
	}
	if q.ConditionalRules != nil {
		rules := &model.RuleGroup{
			Logic:      q.ConditionalRules.Logic,
			Conditions: make([]model.Condition, len(q.ConditionalRules.Conditions)),
		}
		for i, c := range q.ConditionalRules.Conditions {
			rules.Conditions[i] = model.Condition{
				QuestionKey: c.QuestionKey,
				Operator:    c.Operator,
				Value:       copyValue(c.Value),
			}
		}
		copied.ConditionalRules = rules
	}
	return copied
}

func copyForm(f *model.Form) *model.Form {
	copied := *f
	if f.Questions != nil {
		copied.Questions = make([]model.Question, len(f.Questions))
		for i, q := range f.Questions {
			copied.Questions[i] = copyQuestion(q)
		}
	}
	return &copied
}

func copyResponse(r *model.Response) *model.Response {
	copied := *r
	copied.Answers = copyAnswers(r.Answers)
	return &copied
}

func copyUser(u *model.User) *model.User {
	copied := *u
	return &copied
}

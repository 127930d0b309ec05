package model

import (
	"strings"

	"github.com/secmon-lab/airform/pkg/domain/types"
)

// ShouldShow decides whether a question gated by rules is visible for the
// given answers. A condition whose answer is absent or null never holds, for
// notEquals as well, so a question depending on an unanswered one stays
// hidden.
func ShouldShow(rules *RuleGroup, answers Answers) bool {
	if rules == nil || len(rules.Conditions) == 0 {
		return true
	}

	if rules.Logic.OrDefault() == types.RuleLogicOr {
		for _, cond := range rules.Conditions {
			if cond.holds(answers) {
				return true
			}
		}
		return false
	}

	for _, cond := range rules.Conditions {
		if !cond.holds(answers) {
			return false
		}
	}
	return true
}

func (c Condition) holds(answers Answers) bool {
	answer, ok := answers.Lookup(c.QuestionKey)
	if !ok {
		return false
	}

	switch c.Operator {
	case types.RuleOperatorEquals:
		return strictEqual(answer, c.Value)
	case types.RuleOperatorNotEquals:
		return !strictEqual(answer, c.Value)
	case types.RuleOperatorContains:
		if list, ok := asList(answer); ok {
			for _, elem := range list {
				if strictEqual(elem, c.Value) {
					return true
				}
			}
			return false
		}
		return strings.Contains(stringify(answer), stringify(c.Value))
	default:
		return false
	}
}

// VisibleQuestions returns the questions whose rules hold for answers, in form
// order
func VisibleQuestions(questions []Question, answers Answers) []Question {
	visible := make([]Question, 0, len(questions))
	for _, q := range questions {
		if ShouldShow(q.ConditionalRules, answers) {
			visible = append(visible, q)
		}
	}
	return visible
}

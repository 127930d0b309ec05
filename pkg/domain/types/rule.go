package types

// RuleLogic combines the conditions of a rule group
type RuleLogic string

const (
	RuleLogicAnd RuleLogic = "AND"
	RuleLogicOr  RuleLogic = "OR"
)

// IsValid checks if the logic is AND or OR
func (l RuleLogic) IsValid() bool {
	return l == RuleLogicAnd || l == RuleLogicOr
}

// OrDefault returns AND for an unset logic
func (l RuleLogic) OrDefault() RuleLogic {
	if l == "" {
		return RuleLogicAnd
	}
	return l
}

func (l RuleLogic) String() string {
	return string(l)
}

// RuleOperator compares an answer with a condition value
type RuleOperator string

const (
	RuleOperatorEquals    RuleOperator = "equals"
	RuleOperatorNotEquals RuleOperator = "notEquals"
	RuleOperatorContains  RuleOperator = "contains"
)

// AllRuleOperators returns all supported operators
func AllRuleOperators() []RuleOperator {
	return []RuleOperator{
		RuleOperatorEquals,
		RuleOperatorNotEquals,
		RuleOperatorContains,
	}
}

// IsValid checks if the operator is supported
func (o RuleOperator) IsValid() bool {
	switch o {
	case RuleOperatorEquals, RuleOperatorNotEquals, RuleOperatorContains:
		return true
	default:
		return false
	}
}

func (o RuleOperator) String() string {
	return string(o)
}

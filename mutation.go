package formlogic

import (
	"fmt"
	"slices"
)

// The functions in this file are used by form builders to edit rule sets.
// Each returns a new RuleSet; the input is never modified, so a rule set
// that is being evaluated elsewhere can be edited without coordination.

// NewCondition returns the condition appended by AddCondition.
func NewCondition() Condition {
	return Condition{QuestionKey: "", Operator: Equals, Value: ""}
}

// AddCondition appends a blank condition. A nil rule set is first replaced
// by an empty AND rule set.
func AddCondition(rs *RuleSet) *RuleSet {
	n := rs.Clone()
	if n == nil {
		n = &RuleSet{Logic: And, Conditions: []Condition{}}
	}
	n.Conditions = append(n.Conditions, NewCondition())
	return n
}

// ConditionUpdate holds the fields to change in a condition. Nil fields are
// left as they are.
type ConditionUpdate struct {
	QuestionKey *string
	Operator    *Operator
	Value       *string
}

// UpdateCondition changes the fields set in u on the condition at index i.
func UpdateCondition(rs *RuleSet, i int, u ConditionUpdate) (*RuleSet, error) {
	if rs == nil || i < 0 || i >= len(rs.Conditions) {
		return nil, fmt.Errorf("updating condition %d: %w", i, ErrConditionIndex)
	}
	n := rs.Clone()
	c := &n.Conditions[i]
	if u.QuestionKey != nil {
		c.QuestionKey = *u.QuestionKey
	}
	if u.Operator != nil {
		c.Operator = *u.Operator
	}
	if u.Value != nil {
		c.Value = *u.Value
	}
	return n, nil
}

// RemoveCondition removes the condition at index i. When the last condition
// is removed the result is nil: the question becomes always visible.
func RemoveCondition(rs *RuleSet, i int) (*RuleSet, error) {
	if rs == nil || i < 0 || i >= len(rs.Conditions) {
		return nil, fmt.Errorf("removing condition %d: %w", i, ErrConditionIndex)
	}
	n := rs.Clone()
	n.Conditions = slices.Delete(n.Conditions, i, i+1)
	if len(n.Conditions) == 0 {
		return nil, nil
	}
	return n, nil
}

// SetLogic returns a copy of rs with the combinator replaced. A nil rule
// set stays nil.
func SetLogic(rs *RuleSet, l Logic) *RuleSet {
	n := rs.Clone()
	if n != nil {
		n.Logic = l
	}
	return n
}

// Ptr returns a pointer to v. It is a convenience for building
// ConditionUpdate values.
func Ptr[T any](v T) *T {
	return &v
}

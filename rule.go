package formlogic

import (
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// A RuleSet decides whether the question it is attached to is visible.
// Each Condition tests the answer of a driver question; Logic combines the
// outcomes.
//
// A nil RuleSet, or one with no conditions, means the question is always
// visible.
//
// RuleSets are treated as values. The mutation functions in this package
// (AddCondition, UpdateCondition, RemoveCondition, SetLogic) return new
// RuleSets and never modify their input, so a RuleSet handed to an evaluator
// can be shared freely.
type RuleSet struct {
	// How the condition outcomes are combined. Values other than AND and OR
	// are reported as anomalies and the question is shown.
	Logic Logic `json:"logic" yaml:"logic"`

	// Conditions in the order they are evaluated.
	Conditions []Condition `json:"conditions" yaml:"conditions"`
}

// Condition compares the answer of the question identified by QuestionKey
// with Value.
type Condition struct {
	// Key of the driver question. The driver does not need to be visible,
	// or even exist; a missing driver is treated as unanswered.
	QuestionKey string `json:"questionKey" yaml:"questionKey"`

	Operator Operator `json:"operator" yaml:"operator"`

	// The literal compared against the driver's answer.
	Value string `json:"value" yaml:"value"`
}

// Empty reports whether the rule set imposes no conditions.
func (rs *RuleSet) Empty() bool {
	return rs == nil || len(rs.Conditions) == 0
}

// Clone returns a deep copy of the rule set.
func (rs *RuleSet) Clone() *RuleSet {
	if rs == nil {
		return nil
	}
	return &RuleSet{
		Logic:      rs.Logic,
		Conditions: slices.Clone(rs.Conditions),
	}
}

// Drivers returns the distinct question keys referenced by the conditions,
// in the order they first appear.
func (rs *RuleSet) Drivers() []string {
	if rs == nil {
		return nil
	}
	keys := []string{}
	for _, c := range rs.Conditions {
		if !slices.Contains(keys, c.QuestionKey) {
			keys = append(keys, c.QuestionKey)
		}
	}
	return keys
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %q", c.QuestionKey, c.Operator, c.Value)
}

// String renders the rule set as a table with one row per condition.
func (rs *RuleSet) String() string {
	tw := table.NewWriter()
	if rs.Empty() {
		tw.SetTitle("RULES: always visible")
		tw.SetStyle(table.StyleLight)
		return tw.Render()
	}
	tw.SetTitle(fmt.Sprintf("RULES (%s)", rs.Logic))
	tw.AppendHeader(table.Row{"#", "Question", "Operator", "Value"})
	for i, c := range rs.Conditions {
		tw.AppendRow(table.Row{humanize.Ordinal(i + 1), c.QuestionKey, c.Operator, c.Value})
	}
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}

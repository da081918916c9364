package formlogic

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Result of evaluating the rule set of one question.
type Result struct {
	// Key of the question evaluated; empty when evaluated without one.
	QuestionKey string

	// The rule set that was evaluated. May be nil.
	RuleSet *RuleSet

	// Whether the question is visible. The default is TRUE.
	Visible bool

	// Outcome of each condition, in the order of RuleSet.Conditions.
	// Empty when the rule set is empty.
	Conditions []ConditionResult

	// Malformed rule data found during the evaluation.
	Anomalies []Anomaly
}

// ConditionResult is the outcome of a single condition.
type ConditionResult struct {
	Condition Condition

	// Whether the driver question had an answer.
	Answered bool

	Pass bool
}

// FormResult is the outcome of evaluating every question of a form.
type FormResult struct {
	// One result per question, in ascending question order.
	Results []*Result

	// Keys of the visible questions, in order.
	Visible []string

	Anomalies []Anomaly
}

// Hidden returns the keys of the questions that are not visible.
func (f *FormResult) Hidden() []string {
	keys := []string{}
	for _, r := range f.Results {
		if !r.Visible {
			keys = append(keys, r.QuestionKey)
		}
	}
	return keys
}

// String produces a table of the conditions evaluated and their outcome.
func (u *Result) String() string {
	tw := table.NewWriter()
	title := u.QuestionKey
	if title == "" {
		title = "(question)"
	}
	tw.SetTitle(fmt.Sprintf("%s: %s", title, visibleString(u.Visible)))
	tw.AppendHeader(table.Row{"#", "Driver", "Operator", "Value", "Answered", "Pass/\nFail"})
	for _, r := range u.rows() {
		tw.AppendRow(r)
	}
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)

	s := strings.Builder{}
	s.WriteString(tw.Render())
	for _, a := range u.Anomalies {
		s.WriteString("\n! ")
		s.WriteString(a.String())
	}
	return s.String()
}

func (u *Result) rows() []table.Row {
	rows := []table.Row{}
	for i, c := range u.Conditions {
		rows = append(rows, table.Row{
			humanize.Ordinal(i + 1),
			c.Condition.QuestionKey,
			c.Condition.Operator,
			c.Condition.Value,
			trueFalse(c.Answered),
			boolString(c.Pass),
		})
	}
	return rows
}

// String produces one row per question with its visibility and rule summary.
func (f *FormResult) String() string {
	tw := table.NewWriter()
	tw.SetTitle(fmt.Sprintf("VISIBILITY: %s of %s questions shown",
		humanize.Comma(int64(len(f.Visible))), humanize.Comma(int64(len(f.Results)))))
	tw.AppendHeader(table.Row{"Question", "Visible", "Logic", "Conditions", "Passed"})
	for _, r := range f.Results {
		logic, passed := "", 0
		if !r.RuleSet.Empty() {
			logic = r.RuleSet.Logic.String()
		}
		for _, c := range r.Conditions {
			if c.Pass {
				passed++
			}
		}
		tw.AppendRow(table.Row{r.QuestionKey, visibleString(r.Visible), logic, len(r.Conditions), passed})
	}
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)

	s := strings.Builder{}
	s.WriteString(tw.Render())
	for _, a := range f.Anomalies {
		s.WriteString("\n! ")
		s.WriteString(a.String())
	}
	return s.String()
}

func boolString(b bool) string {
	switch b {
	case true:
		return "PASS"
	default:
		return "FAIL"
	}
}

func visibleString(b bool) string {
	if b {
		return "shown"
	}
	return "hidden"
}

func trueFalse(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

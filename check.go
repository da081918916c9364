package formlogic

import "fmt"

// Severity of a Problem found by CheckForm.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Problem is an issue with a form definition. Problems never stop
// evaluation; they are meant for builders and loaders to show to authors.
type Problem struct {
	Severity    Severity
	QuestionKey string
	Condition   int // index of the condition, or -1
	Message     string
}

func (p Problem) String() string {
	if p.Condition >= 0 {
		return fmt.Sprintf("%s: %s: condition %d: %s", p.Severity, p.QuestionKey, p.Condition, p.Message)
	}
	return fmt.Sprintf("%s: %s: %s", p.Severity, p.QuestionKey, p.Message)
}

// CheckForm inspects a form definition.
//
// Errors: empty or duplicate question keys.
// Warnings: conditions on unknown questions (they are evaluated as
// unanswered), conditions on the question itself, conditions without a
// driver, and unknown logic or operator values.
func CheckForm(f *Form) []Problem {
	ps := []Problem{}
	keys := make(map[string]int, len(f.Questions))
	for i, q := range f.Questions {
		if q.Key == "" {
			ps = append(ps, Problem{Error, fmt.Sprintf("#%d", i), -1, "question has no key"})
			continue
		}
		keys[q.Key]++
		if keys[q.Key] == 2 {
			ps = append(ps, Problem{Error, q.Key, -1, "duplicate question key"})
		}
	}

	for _, q := range f.Questions {
		rs := q.ConditionalRules
		if rs.Empty() {
			continue
		}
		if !rs.Logic.Valid() {
			ps = append(ps, Problem{Warning, q.Key, -1,
				fmt.Sprintf("unknown logic %q, question will always be shown", rs.Logic)})
		}
		for i, c := range rs.Conditions {
			switch {
			case c.QuestionKey == "":
				ps = append(ps, Problem{Warning, q.Key, i, "condition has no question"})
			case c.QuestionKey == q.Key:
				ps = append(ps, Problem{Warning, q.Key, i, "condition refers to its own question"})
			case keys[c.QuestionKey] == 0:
				ps = append(ps, Problem{Warning, q.Key, i,
					fmt.Sprintf("unknown question %q, treated as unanswered", c.QuestionKey)})
			}
			if !c.Operator.Valid() {
				ps = append(ps, Problem{Warning, q.Key, i,
					fmt.Sprintf("unknown operator %q, condition is always false", c.Operator)})
			}
		}
	}
	return ps
}

package formlogic

import (
	"context"
	"fmt"
	"log/slog"
)

// AnomalyKind classifies malformed rule data found during evaluation.
type AnomalyKind int

const (
	// UnknownLogic: the RuleSet combinator is neither AND nor OR.
	// The question is shown (fail-open).
	UnknownLogic AnomalyKind = iota + 1

	// UnknownOperator: a condition uses an unsupported operator.
	// The condition evaluates to false (fail-closed).
	UnknownOperator
)

func (k AnomalyKind) String() string {
	switch k {
	case UnknownLogic:
		return "unknown logic"
	case UnknownOperator:
		return "unknown operator"
	default:
		return fmt.Sprintf("AnomalyKind(%d)", int(k))
	}
}

// An Anomaly describes malformed rule data encountered during evaluation.
// Anomalies never make an evaluation fail; they are handed to the
// evaluator's Reporter and returned in the Result.
type Anomaly struct {
	Kind AnomalyKind

	// Key of the question whose rules were being evaluated, if known.
	QuestionKey string

	// Index of the offending condition, or -1 for rule set level anomalies.
	ConditionIndex int

	// The unrecognized logic or operator value.
	Value string
}

func (a Anomaly) String() string {
	q := a.QuestionKey
	if q == "" {
		q = "(unknown question)"
	}
	switch a.Kind {
	case UnknownLogic:
		return fmt.Sprintf("%s: %s %q, showing question", q, a.Kind, a.Value)
	case UnknownOperator:
		return fmt.Sprintf("%s: condition %d: %s %q, condition is false", q, a.ConditionIndex, a.Kind, a.Value)
	default:
		return fmt.Sprintf("%s: %s %q", q, a.Kind, a.Value)
	}
}

// Reporter receives anomalies as they are found. A Reporter must not block;
// it is called synchronously from the evaluation.
type Reporter func(Anomaly)

// LogReporter returns a Reporter that writes each anomaly to the logger
// as a warning.
func LogReporter(l *slog.Logger) Reporter {
	if l == nil {
		l = slog.Default()
	}
	return func(a Anomaly) {
		l.LogAttrs(context.Background(), slog.LevelWarn, "malformed conditional rule",
			slog.String("kind", a.Kind.String()),
			slog.String("question", a.QuestionKey),
			slog.Int("condition", a.ConditionIndex),
			slog.String("value", a.Value),
		)
	}
}

// Collector accumulates anomalies. Its Report method can be used as a
// Reporter. A Collector is not safe for concurrent use.
type Collector struct {
	Anomalies []Anomaly
}

func (c *Collector) Report(a Anomaly) {
	c.Anomalies = append(c.Anomalies, a)
}

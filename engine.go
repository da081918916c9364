package formlogic

import (
	"errors"
	"log/slog"
	"strings"
)

// Evaluator decides question visibility. It holds only its options and is
// safe for concurrent use, as long as the answer maps passed to it are not
// written to during a call.
type Evaluator struct {
	opts EvaluatorOptions
}

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrConditionIndex   = errors.New("condition index out of range")
	ErrDuplicateKey     = errors.New("duplicate question key")
)

// NewEvaluator initializes an evaluator.
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := Evaluator{}
	applyEvaluatorOptions(&e.opts, opts...)
	return &e
}

// See the functional definitions below for the meaning.
type EvaluatorOptions struct {
	Reporter Reporter
}

type EvaluatorOption func(o *EvaluatorOptions)

func applyEvaluatorOptions(o *EvaluatorOptions, opts ...EvaluatorOption) {
	for _, opt := range opts {
		opt(o)
	}
}

// WithReporter sends every anomaly to r as it is found.
// Default: anomalies are only returned in results.
func WithReporter(r Reporter) EvaluatorOption {
	return func(o *EvaluatorOptions) {
		o.Reporter = r
	}
}

// WithLogger is shorthand for WithReporter(LogReporter(l)).
func WithLogger(l *slog.Logger) EvaluatorOption {
	return WithReporter(LogReporter(l))
}

// IsVisible reports whether a question carrying rs is visible given the
// answers.
func (e *Evaluator) IsVisible(rs *RuleSet, answers AnswerMap) bool {
	return e.Evaluate("", rs, answers).Visible
}

// EvaluateCondition reports whether a single condition holds.
func (e *Evaluator) EvaluateCondition(c Condition, answers AnswerMap) bool {
	cr, a := evalCondition(c, answers)
	if a != nil {
		a.ConditionIndex = 0
		e.report(*a)
	}
	return cr.Pass
}

// VisibleQuestions returns the keys of the visible questions, in the order
// the questions were given.
func (e *Evaluator) VisibleQuestions(questions []Question, answers AnswerMap) []string {
	keys := make([]string, 0, len(questions))
	for _, q := range questions {
		if e.Evaluate(q.Key, q.ConditionalRules, answers).Visible {
			keys = append(keys, q.Key)
		}
	}
	return keys
}

// EvaluateForm evaluates every question of the form, in ascending Order.
func (e *Evaluator) EvaluateForm(f *Form, answers AnswerMap) *FormResult {
	qs := f.Sorted()
	fr := &FormResult{
		Results: make([]*Result, 0, len(qs)),
		Visible: make([]string, 0, len(qs)),
	}
	for _, q := range qs {
		r := e.Evaluate(q.Key, q.ConditionalRules, answers)
		fr.Results = append(fr.Results, r)
		fr.Anomalies = append(fr.Anomalies, r.Anomalies...)
		if r.Visible {
			fr.Visible = append(fr.Visible, q.Key)
		}
	}
	return fr
}

// Evaluate applies the rule set of the question identified by key to the
// answers. The key is only used to label the result and anomalies.
//
// Every condition is evaluated, in order, before the outcomes are combined.
func (e *Evaluator) Evaluate(key string, rs *RuleSet, answers AnswerMap) *Result {
	r := &Result{
		QuestionKey: key,
		RuleSet:     rs,
		Visible:     true,
	}
	if rs.Empty() {
		return r
	}

	r.Conditions = make([]ConditionResult, 0, len(rs.Conditions))
	for i, c := range rs.Conditions {
		cr, a := evalCondition(c, answers)
		r.Conditions = append(r.Conditions, cr)
		if a != nil {
			a.QuestionKey = key
			a.ConditionIndex = i
			r.Anomalies = append(r.Anomalies, *a)
			e.report(*a)
		}
	}

	switch rs.Logic {
	case And:
		for _, cr := range r.Conditions {
			if !cr.Pass {
				r.Visible = false
				break
			}
		}
	case Or:
		r.Visible = false
		for _, cr := range r.Conditions {
			if cr.Pass {
				r.Visible = true
				break
			}
		}
	default:
		// Unrecognized combinators show the question rather than hide
		// input that may be required.
		a := Anomaly{
			Kind:           UnknownLogic,
			QuestionKey:    key,
			ConditionIndex: -1,
			Value:          string(rs.Logic),
		}
		r.Anomalies = append(r.Anomalies, a)
		e.report(a)
	}
	return r
}

func (e *Evaluator) report(a Anomaly) {
	if e.opts.Reporter != nil {
		e.opts.Reporter(a)
	}
}

// evalCondition tests c against the answers. For an unknown operator the
// condition fails and an anomaly is returned.
func evalCondition(c Condition, answers AnswerMap) (ConditionResult, *Anomaly) {
	cr := ConditionResult{Condition: c}

	ans, ok := answers.Lookup(c.QuestionKey)
	if !ok {
		if !c.Operator.Valid() {
			return cr, unknownOperator(c)
		}
		// Only "not equals" is satisfied by the absence of an answer.
		cr.Pass = c.Operator == NotEquals
		return cr, nil
	}
	cr.Answered = true

	switch c.Operator {
	case Equals:
		cr.Pass = equals(ans, c.Value)
	case NotEquals:
		cr.Pass = !equals(ans, c.Value)
	case Contains:
		cr.Pass = contains(ans, c.Value)
	default:
		return cr, unknownOperator(c)
	}
	return cr, nil
}

func unknownOperator(c Condition) *Anomaly {
	return &Anomaly{
		Kind:  UnknownOperator,
		Value: string(c.Operator),
	}
}

func equals(ans Answer, v string) bool {
	switch a := ans.(type) {
	case Scalar:
		return string(a) == v
	case Multi:
		for _, s := range a {
			if s == v {
				return true
			}
		}
	}
	return false
}

func contains(ans Answer, v string) bool {
	v = strings.ToLower(v)
	switch a := ans.(type) {
	case Scalar:
		return strings.Contains(strings.ToLower(string(a)), v)
	case Multi:
		for _, s := range a {
			if strings.Contains(strings.ToLower(s), v) {
				return true
			}
		}
	}
	return false
}

package cel

import (
	"fmt"
	"sync"

	"github.com/ezachrisen/formlogic"
	celgo "github.com/google/cel-go/cel"
)

// Evaluator compiles rule sets into CEL programs. An Evaluator is safe for
// concurrent use.
type Evaluator struct {
	reporter formlogic.Reporter

	once   sync.Once
	env    *celgo.Env
	envErr error
}

// Option configures an Evaluator.
type Option func(e *Evaluator)

// WithReporter sends the anomalies found while compiling to r.
func WithReporter(r formlogic.Reporter) Option {
	return func(e *Evaluator) {
		e.reporter = r
	}
}

// NewEvaluator creates an Evaluator. The CEL environment is created on
// first use.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Evaluator) environment() (*celgo.Env, error) {
	e.once.Do(func() {
		e.env, e.envErr = celgo.NewEnv(
			celgo.Variable("scalars", celgo.MapType(celgo.StringType, celgo.StringType)),
			celgo.Variable("lists", celgo.MapType(celgo.StringType, celgo.ListType(celgo.StringType))),
			celgo.Variable("keys", celgo.ListType(celgo.StringType)),
			celgo.Variable("values", celgo.ListType(celgo.StringType)),
			lowerFunction(),
		)
	})
	return e.env, e.envErr
}

// Program is a compiled rule set.
type Program struct {
	// Key of the question the rule set belongs to.
	QuestionKey string

	// The CEL expression the rule set was translated to.
	Expr string

	// Malformed rule data found while compiling.
	Anomalies []formlogic.Anomaly

	keys    []string
	values  []string
	program celgo.Program
}

// Compile translates and compiles the rule set of the question identified
// by key. A nil or empty rule set compiles to a program that always
// returns true.
func (e *Evaluator) Compile(key string, rs *formlogic.RuleSet) (*Program, error) {
	env, err := e.environment()
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}

	expr, anomalies := convertRuleSet(key, rs)
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compiling rules for %s: %w", key, iss.Err())
	}
	if !ast.OutputType().IsExactType(celgo.BoolType) {
		return nil, fmt.Errorf("compiling rules for %s: expression produces %s, not bool", key, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("generating program for %s: %w", key, err)
	}

	p := &Program{
		QuestionKey: key,
		Expr:        expr,
		Anomalies:   anomalies,
		program:     prg,
	}
	if !rs.Empty() {
		p.keys = make([]string, len(rs.Conditions))
		p.values = make([]string, len(rs.Conditions))
		for i, c := range rs.Conditions {
			p.keys[i] = c.QuestionKey
			p.values[i] = c.Value
		}
	}
	for _, a := range anomalies {
		if e.reporter != nil {
			e.reporter(a)
		}
	}
	return p, nil
}

// Eval reports whether the question is visible given the answers.
func (p *Program) Eval(answers formlogic.AnswerMap) (bool, error) {
	scalars, lists := split(answers)
	out, _, err := p.program.Eval(map[string]any{
		"scalars": scalars,
		"lists":   lists,
		"keys":    p.keys,
		"values":  p.values,
	})
	if err != nil {
		return false, fmt.Errorf("evaluating rules for %s: %w", p.QuestionKey, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("evaluating rules for %s: expected bool, got %T", p.QuestionKey, out.Value())
	}
	return b, nil
}

// split divides the answered entries of the map by kind. Unanswered
// entries are left out of both.
func split(answers formlogic.AnswerMap) (map[string]string, map[string][]string) {
	scalars := map[string]string{}
	lists := map[string][]string{}
	for k := range answers {
		a, ok := answers.Lookup(k)
		if !ok {
			continue
		}
		switch x := a.(type) {
		case formlogic.Scalar:
			scalars[k] = string(x)
		case formlogic.Multi:
			lists[k] = []string(x)
		}
	}
	return scalars, lists
}

// IsVisible compiles and evaluates rs in one step.
func (e *Evaluator) IsVisible(rs *formlogic.RuleSet, answers formlogic.AnswerMap) (bool, error) {
	p, err := e.Compile("", rs)
	if err != nil {
		return false, err
	}
	return p.Eval(answers)
}

// FormProgram holds the compiled rule sets of every question of a form, in
// ascending question order.
type FormProgram struct {
	Programs []*Program
}

// CompileForm compiles the rules of every question of the form.
func (e *Evaluator) CompileForm(f *formlogic.Form) (*FormProgram, error) {
	qs := f.Sorted()
	fp := &FormProgram{Programs: make([]*Program, 0, len(qs))}
	for _, q := range qs {
		p, err := e.Compile(q.Key, q.ConditionalRules)
		if err != nil {
			return nil, err
		}
		fp.Programs = append(fp.Programs, p)
	}
	return fp, nil
}

// Visible returns the keys of the visible questions, in order.
func (fp *FormProgram) Visible(answers formlogic.AnswerMap) ([]string, error) {
	keys := make([]string, 0, len(fp.Programs))
	for _, p := range fp.Programs {
		ok, err := p.Eval(answers)
		if err != nil {
			return nil, err
		}
		if ok {
			keys = append(keys, p.QuestionKey)
		}
	}
	return keys, nil
}

// Anomalies returns the anomalies of every program.
func (fp *FormProgram) Anomalies() []formlogic.Anomaly {
	var as []formlogic.Anomaly
	for _, p := range fp.Programs {
		as = append(as, p.Anomalies...)
	}
	return as
}

// VisibleQuestions compiles the rules of each question and returns the keys
// of the visible ones, preserving the order of questions.
func (e *Evaluator) VisibleQuestions(questions []formlogic.Question, answers formlogic.AnswerMap) ([]string, error) {
	keys := make([]string, 0, len(questions))
	for _, q := range questions {
		p, err := e.Compile(q.Key, q.ConditionalRules)
		if err != nil {
			return nil, err
		}
		ok, err := p.Eval(answers)
		if err != nil {
			return nil, err
		}
		if ok {
			keys = append(keys, q.Key)
		}
	}
	return keys, nil
}

package formlogic

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// FormVault holds a hot-reloadable form definition. Readers get the
// current form without locking; writers build a modified copy and swap it
// in, so a form handed out by Current is never changed afterwards.
type FormVault struct {
	form      atomic.Pointer[Form] // current immutable form
	mu        sync.Mutex           // serializes writers
	evaluator *Evaluator
}

// QuestionMutation defines a single change to the form.
type QuestionMutation struct {
	// Required; key of the question being changed, added or deleted.
	Key string

	// Question replaces the question with Key, or is appended when no such
	// question exists. If Question, Rules and NewOrder are all nil the
	// question with Key is deleted.
	Question *Question

	// Rules replaces the conditional rules of the question with Key.
	// Use ClearRules to remove them.
	Rules *RuleSet

	// ClearRules removes the conditional rules of the question with Key.
	ClearRules bool

	// NewOrder moves the question with Key to this order value.
	NewOrder *int
}

// NewFormVault creates a vault holding a copy of initial. If initial is nil
// an empty form is used. Forms with structural problems (see CheckForm) are
// rejected.
func NewFormVault(initial *Form, e *Evaluator) (*FormVault, error) {
	if e == nil {
		e = defaultEvaluator
	}
	v := &FormVault{evaluator: e}
	if initial == nil {
		initial = &Form{}
	}
	f := initial.Clone()
	if err := checkStructure(f); err != nil {
		return nil, fmt.Errorf("initial form: %w", err)
	}
	v.form.Store(f)
	return v, nil
}

// Current returns the current form. The caller must not modify it.
func (v *FormVault) Current() *Form {
	return v.form.Load()
}

// Replace swaps in a copy of f. A nil form replaces the current one with an
// empty form.
func (v *FormVault) Replace(f *Form) error {
	if f == nil {
		f = &Form{}
	}
	n := f.Clone()
	if err := checkStructure(n); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.form.Store(n)
	return nil
}

// Visible evaluates the current form against the answers.
func (v *FormVault) Visible(answers AnswerMap) *FormResult {
	return v.evaluator.EvaluateForm(v.Current(), answers)
}

// Validate validates a submission against the current form.
func (v *FormVault) Validate(answers AnswerMap, opts ...ValidateOption) *Submission {
	opts = append([]ValidateOption{WithEvaluator(v.evaluator)}, opts...)
	return Validate(v.Current(), answers, opts...)
}

// ApplyMutations makes the changes to the form stored in the vault. Either
// all mutations are applied or, if any fails, none are.
func (v *FormVault) ApplyMutations(mutations []QuestionMutation) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := v.form.Load().Clone()
	for _, m := range slices.Clone(mutations) {
		if err := applyMutation(n, m); err != nil {
			return fmt.Errorf("question %s: %w", m.Key, err)
		}
	}
	if err := checkStructure(n); err != nil {
		return err
	}
	v.form.Store(n)
	return nil
}

func applyMutation(f *Form, m QuestionMutation) error {
	if m.Key == "" {
		return fmt.Errorf("mutation without key")
	}
	i := f.index(m.Key)

	switch {
	case m.Question != nil:
		q := m.Question.clone()
		if q.Key == "" {
			q.Key = m.Key
		}
		if i < 0 {
			f.Questions = append(f.Questions, q)
			return nil
		}
		f.Questions[i] = q
		return nil
	case m.Rules == nil && !m.ClearRules && m.NewOrder == nil:
		if i < 0 {
			return ErrQuestionNotFound
		}
		f.Questions = slices.Delete(f.Questions, i, i+1)
		return nil
	}

	if i < 0 {
		return ErrQuestionNotFound
	}
	if m.ClearRules {
		f.Questions[i].ConditionalRules = nil
	} else if m.Rules != nil {
		f.Questions[i].ConditionalRules = m.Rules.Clone()
	}
	if m.NewOrder != nil {
		f.Questions[i].Order = *m.NewOrder
	}
	return nil
}

// checkStructure returns an error for the problems that make a form
// unusable: empty or duplicate keys.
func checkStructure(f *Form) error {
	seen := make(map[string]bool, len(f.Questions))
	for i, q := range f.Questions {
		if q.Key == "" {
			return fmt.Errorf("question %d has no key", i)
		}
		if seen[q.Key] {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, q.Key)
		}
		seen[q.Key] = true
	}
	return nil
}

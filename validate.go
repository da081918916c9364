package formlogic

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Reason describes why a submitted field was rejected.
type Reason string

const (
	// Missing: the question is visible and required but unanswered.
	Missing Reason = "missing"
	// InvalidOption: a choice question was answered with a value that is
	// not one of its options.
	InvalidOption Reason = "invalid option"
)

// FieldError is a problem with the answer to one question.
type FieldError struct {
	Key    string
	Reason Reason
	Value  string // offending value, for InvalidOption
}

func (e FieldError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %s %q", e.Key, e.Reason, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

// ValidationError wraps every field error of a rejected submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("submission rejected (%s): %s",
		pluralize(len(e.Fields), "error"), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual field errors to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Fields))
	for i, f := range e.Fields {
		errs[i] = f
	}
	return errs
}

// Submission is a validated set of answers, ready to be stored.
type Submission struct {
	ID string

	// Answers to the visible questions of the form. Answers to hidden or
	// unknown questions have been removed unless KeepHidden was set.
	Answers AnswerMap

	// Keys of the visible questions, in order.
	Visible []string

	// Keys of hidden or unknown questions that had an answer, sorted.
	// Unanswered entries for those keys are dropped without being listed.
	Stripped []string

	Errors    []FieldError
	Anomalies []Anomaly
}

// Err returns a *ValidationError if the submission has field errors.
func (s *Submission) Err() error {
	if len(s.Errors) == 0 {
		return nil
	}
	return &ValidationError{Fields: slices.Clone(s.Errors)}
}

// See the functional definitions below for the meaning.
type ValidateOptions struct {
	Evaluator   *Evaluator
	KeepHidden  bool
	SkipOptions bool
}

type ValidateOption func(o *ValidateOptions)

// WithEvaluator sets the evaluator used to compute visibility.
// Default: an evaluator without a Reporter.
func WithEvaluator(e *Evaluator) ValidateOption {
	return func(o *ValidateOptions) {
		o.Evaluator = e
	}
}

// KeepHidden keeps answers to hidden questions in the submission instead of
// removing them. They are still listed in Stripped.
// Default: off
func KeepHidden(b bool) ValidateOption {
	return func(o *ValidateOptions) {
		o.KeepHidden = b
	}
}

// SkipOptions turns off the check that choice answers are among the
// question's options.
// Default: off
func SkipOptions(b bool) ValidateOption {
	return func(o *ValidateOptions) {
		o.SkipOptions = b
	}
}

// Validate recomputes visibility for the final answers and checks them
// against the form. Required questions that are hidden do not block the
// submission. The answers passed in are not modified.
func Validate(f *Form, answers AnswerMap, opts ...ValidateOption) *Submission {
	o := ValidateOptions{Evaluator: defaultEvaluator}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Evaluator == nil {
		o.Evaluator = defaultEvaluator
	}

	fr := o.Evaluator.EvaluateForm(f, answers)
	s := &Submission{
		ID:        uuid.NewString(),
		Answers:   make(AnswerMap, len(answers)),
		Visible:   fr.Visible,
		Anomalies: fr.Anomalies,
	}

	for _, q := range f.Sorted() {
		ans, answered := answers.Lookup(q.Key)
		if !slices.Contains(fr.Visible, q.Key) {
			continue
		}
		if !answered {
			if q.Required {
				s.Errors = append(s.Errors, FieldError{Key: q.Key, Reason: Missing})
			}
			continue
		}
		if !o.SkipOptions && ChoiceLike(q.Type) && len(q.Options) > 0 {
			for _, v := range ans.Strings() {
				if !slices.Contains(q.Options, v) {
					s.Errors = append(s.Errors, FieldError{Key: q.Key, Reason: InvalidOption, Value: v})
				}
			}
		}
	}

	for k, v := range answers {
		if slices.Contains(fr.Visible, k) {
			s.Answers[k] = v
			continue
		}
		if _, answered := answers.Lookup(k); answered {
			s.Stripped = append(s.Stripped, k)
		}
		if o.KeepHidden {
			s.Answers[k] = v
		}
	}
	slices.Sort(s.Stripped)
	return s
}

// String renders the submission as a table of fields.
func (s *Submission) String() string {
	tw := table.NewWriter()
	status := "ACCEPTED"
	if len(s.Errors) > 0 {
		status = "REJECTED"
	}
	tw.SetTitle(fmt.Sprintf("SUBMISSION %s: %s", s.ID, status))
	tw.AppendHeader(table.Row{"Question", "Answer", "Status"})
	for _, k := range s.Visible {
		st := "ok"
		for _, e := range s.Errors {
			if e.Key == k {
				st = e.Error()
			}
		}
		ans := ""
		if a, ok := s.Answers.Lookup(k); ok {
			ans = fmt.Sprintf("%v", a)
		}
		tw.AppendRow(table.Row{k, ans, st})
	}
	for _, k := range s.Stripped {
		tw.AppendRow(table.Row{k, "", "stripped"})
	}
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}

// IsFieldError reports whether err contains a field error for key.
func IsFieldError(err error, key string) bool {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	for _, f := range ve.Fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}

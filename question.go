package formlogic

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
)

// Question is a single input of a form.
type Question struct {
	// Unique within a form and stable once assigned. Conditions refer to
	// questions by this key.
	Key string `json:"questionKey" yaml:"questionKey"`

	// The source field this question was derived from.
	FieldID   string `json:"airtableFieldId,omitempty" yaml:"airtableFieldId,omitempty"`
	FieldName string `json:"airtableFieldName,omitempty" yaml:"airtableFieldName,omitempty"`

	Label    string   `json:"label" yaml:"label"`
	Type     string   `json:"type" yaml:"type"`
	Required bool     `json:"required" yaml:"required"`
	Options  []string `json:"options,omitempty" yaml:"options,omitempty"`

	// Position of the question in the form.
	Order int `json:"order" yaml:"order"`

	// Nil means the question is always visible.
	ConditionalRules *RuleSet `json:"conditionalRules,omitempty" yaml:"conditionalRules,omitempty"`
}

// Form is an ordered set of questions bound to a source table.
type Form struct {
	ID          string     `json:"id,omitempty" yaml:"id,omitempty"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	BaseID      string     `json:"airtableBaseId,omitempty" yaml:"airtableBaseId,omitempty"`
	TableID     string     `json:"airtableTableId,omitempty" yaml:"airtableTableId,omitempty"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

// Runs of Unicode white space: ASCII white space, vertical tab, the Z
// separator categories and the byte order mark.
var whitespace = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)

// KeyFromFieldName derives a question key from a source field name: the name
// is lower-cased and every run of whitespace becomes a single underscore.
//
//	KeyFromFieldName("Shipping Note") == "shipping_note"
func KeyFromFieldName(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(name), "_")
}

// QuestionFromField builds an unconditioned question for a source field at
// position order.
func QuestionFromField(id, name, typ string, options []string, order int) Question {
	return Question{
		Key:       KeyFromFieldName(name),
		FieldID:   id,
		FieldName: name,
		Label:     name,
		Type:      typ,
		Options:   slices.Clone(options),
		Order:     order,
	}
}

// Sorted returns the questions ordered by ascending Order. Questions with
// the same Order keep their relative position.
func (f *Form) Sorted() []Question {
	qs := slices.Clone(f.Questions)
	slices.SortStableFunc(qs, func(a, b Question) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return qs
}

// Question returns the question with the key.
func (f *Form) Question(key string) (Question, bool) {
	i := f.index(key)
	if i < 0 {
		return Question{}, false
	}
	return f.Questions[i], true
}

func (f *Form) index(key string) int {
	return slices.IndexFunc(f.Questions, func(q Question) bool {
		return q.Key == key
	})
}

// Clone returns a deep copy of the form.
func (f *Form) Clone() *Form {
	if f == nil {
		return nil
	}
	ff := *f
	ff.Questions = make([]Question, len(f.Questions))
	for i, q := range f.Questions {
		ff.Questions[i] = q.clone()
	}
	return &ff
}

func (q Question) clone() Question {
	q.Options = slices.Clone(q.Options)
	q.ConditionalRules = q.ConditionalRules.Clone()
	return q
}

// WithQuestion returns a copy of the form with q added, or replacing the
// question with the same key.
func (f *Form) WithQuestion(q Question) *Form {
	ff := f.Clone()
	if i := ff.index(q.Key); i >= 0 {
		ff.Questions[i] = q.clone()
	} else {
		ff.Questions = append(ff.Questions, q.clone())
	}
	return ff
}

// WithoutQuestion returns a copy of the form with the question removed.
func (f *Form) WithoutQuestion(key string) (*Form, error) {
	i := f.index(key)
	if i < 0 {
		return nil, ErrQuestionNotFound
	}
	ff := f.Clone()
	ff.Questions = slices.Delete(ff.Questions, i, i+1)
	return ff, nil
}

// WithRules returns a copy of the form where the question with key carries
// rs. A nil rs makes the question always visible.
func (f *Form) WithRules(key string, rs *RuleSet) (*Form, error) {
	i := f.index(key)
	if i < 0 {
		return nil, ErrQuestionNotFound
	}
	ff := f.Clone()
	ff.Questions[i].ConditionalRules = rs.Clone()
	return ff, nil
}

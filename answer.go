package formlogic

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Answer is the value given to a single question. It is either a Scalar
// (free text, single select) or a Multi (multiple select). Callers branch on
// the concrete type; there are no other implementations.
type Answer interface {
	// Answered reports whether the value counts as an answer. An empty
	// Scalar and a nil Multi do not; an empty, non-nil Multi does.
	Answered() bool

	// Strings returns the answer as a list of values.
	Strings() []string

	isAnswer()
}

// Scalar is a single string answer.
type Scalar string

// Multi is an ordered list of selected values.
type Multi []string

func (s Scalar) Answered() bool    { return s != "" }
func (s Scalar) Strings() []string { return []string{string(s)} }
func (Scalar) isAnswer()           {}

func (m Multi) Answered() bool    { return m != nil }
func (m Multi) Strings() []string { return slices.Clone(m) }
func (Multi) isAnswer()           {}

func (s Scalar) String() string { return string(s) }
func (m Multi) String() string  { return "[" + strings.Join(m, ", ") + "]" }

// AnswerMap maps question keys to the current answer. A missing key, a nil
// entry and an empty Scalar are all "unanswered".
type AnswerMap map[string]Answer

// Lookup returns the answer for key if the question has been answered.
func (a AnswerMap) Lookup(key string) (Answer, bool) {
	v, ok := a[key]
	if !ok || v == nil || !v.Answered() {
		return nil, false
	}
	return v, true
}

// Clone returns a deep copy of the map. Hosts that share an answer map
// between goroutines evaluate against a clone.
func (a AnswerMap) Clone() AnswerMap {
	if a == nil {
		return nil
	}
	c := make(AnswerMap, len(a))
	for k, v := range a {
		if m, ok := v.(Multi); ok && m != nil {
			v = slices.Clone(m)
		}
		c[k] = v
	}
	return c
}

// Keys returns the keys of the map in sorted order.
func (a AnswerMap) Keys() []string {
	return slices.Sorted(maps.Keys(a))
}

// AnswersFrom converts decoded JSON or YAML data into an AnswerMap.
// Strings become Scalars, lists become Multis and nil stays unanswered.
// Numbers and booleans are formatted with %v, matching how a browser
// form would have submitted them.
func AnswersFrom(data map[string]any) (AnswerMap, error) {
	a := make(AnswerMap, len(data))
	for k, v := range data {
		ans, err := answerFrom(v)
		if err != nil {
			return nil, fmt.Errorf("answer for %q: %w", k, err)
		}
		a[k] = ans
	}
	return a, nil
}

func answerFrom(v any) (Answer, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case Answer:
		return x, nil
	case string:
		return Scalar(x), nil
	case []string:
		return Multi(slices.Clone(x)), nil
	case []any:
		m := make(Multi, 0, len(x))
		for i, e := range x {
			switch ev := e.(type) {
			case string:
				m = append(m, ev)
			case json.Number:
				m = append(m, ev.String())
			case bool, int, int64, float64, uint64:
				m = append(m, fmt.Sprintf("%v", ev))
			default:
				return nil, fmt.Errorf("element %d: unsupported type %T", i, e)
			}
		}
		return m, nil
	case json.Number:
		return Scalar(x.String()), nil
	case bool, int, int64, float64, uint64:
		return Scalar(fmt.Sprintf("%v", x)), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

// Plain converts the map back into JSON-friendly values.
func (a AnswerMap) Plain() map[string]any {
	m := make(map[string]any, len(a))
	for k, v := range a {
		switch x := v.(type) {
		case nil:
			m[k] = nil
		case Scalar:
			m[k] = string(x)
		case Multi:
			m[k] = []string(slices.Clone(x))
		}
	}
	return m
}

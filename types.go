package formlogic

// Logic is the combinator applied across the conditions of a RuleSet.
type Logic string

// Operator is the comparison a Condition performs against the driver
// question's answer.
type Operator string

const (
	// And requires every condition to be true.
	And Logic = "AND"
	// Or requires at least one condition to be true.
	Or Logic = "OR"
)

const (
	// Equals is an exact, case-sensitive match. For multi-value answers it
	// tests membership.
	Equals Operator = "equals"
	// NotEquals is the negation of Equals. An unanswered driver satisfies it.
	NotEquals Operator = "notEquals"
	// Contains is a case-insensitive substring test. For multi-value answers
	// any element may match.
	Contains Operator = "contains"
)

// Valid reports whether l is one of the supported combinators.
func (l Logic) Valid() bool {
	switch l {
	case And, Or:
		return true
	default:
		return false
	}
}

func (l Logic) String() string { return string(l) }

// Valid reports whether o is one of the supported operators.
func (o Operator) Valid() bool {
	switch o {
	case Equals, NotEquals, Contains:
		return true
	default:
		return false
	}
}

func (o Operator) String() string { return string(o) }

// Question types the builder treats as choice-like. Options are only
// meaningful for these.
const (
	TypeSingleSelect    = "singleSelect"
	TypeMultipleSelects = "multipleSelects"
)

// ChoiceLike reports whether questions of type t carry selectable options.
func ChoiceLike(t string) bool {
	return t == TypeSingleSelect || t == TypeMultipleSelects
}

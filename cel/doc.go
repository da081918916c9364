// Package cel provides a second implementation of the formlogic visibility
// rules, backed by Google's cel-go expression engine.
//
// See https://github.com/google/cel-go and https://opensource.google/projects/cel for more information
// about CEL.
//
// A RuleSet is translated into a single CEL expression and compiled once.
// The compiled Program can then be evaluated against any number of answer
// maps, from any number of goroutines. The results are the same as those of
// formlogic.IsVisible; the package exists so that services that already run
// CEL (for example a submission validator evaluating other policies) can
// evaluate visibility with the same machinery, and so that the two
// implementations can be checked against each other.
//
// # Expression Variables
//
// The generated expressions refer to four variables:
//
//	scalars  map(string, string)        answered single-value questions
//	lists    map(string, list(string))  answered multi-value questions
//	keys     list(string)               driver key of each condition, by index
//	values   list(string)               comparison value of each condition, by index
//
// Keys and values are passed as data rather than written into the
// expression, so no quoting of user-entered text is needed. A driver that is
// in neither map is unanswered.
//
// The function lower(string) is added to the environment. It lower-cases
// with the same Unicode rules as the native evaluator; CEL's lowerAscii
// extension only folds ASCII.
//
// # Malformed Rules
//
// An unknown logic value compiles to the constant true; an unknown operator
// compiles to the constant false. Both are recorded as anomalies on the
// Program and sent to the Reporter at compile time.
package cel

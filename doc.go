// Package formlogic decides which questions of a form are visible, given the
// answers entered so far.
//
// A question may carry a RuleSet: a list of Conditions, each testing the
// answer to another ("driver") question, combined with AND or OR. A question
// without rules is always visible. The same evaluation is used while a form
// is being filled in, to decide what to render, and when it is submitted,
// to decide which required questions must be answered and which answers
// must be discarded.
//
// Typical use is as follows:
//
//  1. Load or build a Form (see the formfile package)
//  2. Create an Evaluator, optionally with a Reporter for anomalies
//  3. On every answer change, call VisibleQuestions or EvaluateForm
//  4. On submit, call Validate with the final answers
//
// # Evaluation
//
// A condition on an unanswered driver (no entry, a nil entry or an empty
// string) is true only for the notEquals operator. Otherwise:
//
//	equals     exact match; for multi-value answers, membership
//	notEquals  negation of equals
//	contains   case-insensitive substring; for multi-value answers, any element
//
// # Malformed Rules
//
// Evaluation never fails. Malformed rule data is handled as follows and
// reported as an Anomaly:
//
//	unknown logic      the question is shown (fail-open)
//	unknown operator   the condition is false (fail-closed)
//
// The two policies differ on purpose and must stay that way: changing either
// would change which questions existing forms show.
//
// # Concurrency
//
// Evaluators hold no state between calls and can be shared between
// goroutines. Answer maps must not be written to while an evaluation reads
// them; hosts that share one between goroutines should pass AnswerMap.Clone.
// Rule sets are edited through functions that return copies (AddCondition,
// UpdateCondition, RemoveCondition, SetLogic), and FormVault hands out
// immutable form snapshots, so neither needs locking during evaluation.
package formlogic

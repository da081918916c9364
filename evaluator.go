package formlogic

// defaultEvaluator backs the package-level functions. It has no Reporter;
// anomalies found through these functions are dropped. Use an Evaluator
// with WithReporter or WithLogger to observe them.
var defaultEvaluator = NewEvaluator()

// IsVisible reports whether a question carrying rs is visible given the
// answers. A nil or empty rule set is always visible.
func IsVisible(rs *RuleSet, answers AnswerMap) bool {
	return defaultEvaluator.IsVisible(rs, answers)
}

// EvaluateCondition reports whether c holds for the answers.
func EvaluateCondition(c Condition, answers AnswerMap) bool {
	return defaultEvaluator.EvaluateCondition(c, answers)
}

// VisibleQuestions returns the keys of the visible questions, preserving
// the order of questions.
func VisibleQuestions(questions []Question, answers AnswerMap) []string {
	return defaultEvaluator.VisibleQuestions(questions, answers)
}

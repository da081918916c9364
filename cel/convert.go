package cel

import (
	"fmt"
	"strings"

	"github.com/ezachrisen/formlogic"
)

// convertRuleSet translates the rule set into a CEL expression. Anomalies
// are returned for malformed logic and operators; the expression still
// compiles.
func convertRuleSet(key string, rs *formlogic.RuleSet) (string, []formlogic.Anomaly) {
	if rs.Empty() {
		return "true", nil
	}

	var anomalies []formlogic.Anomaly
	terms := make([]string, len(rs.Conditions))
	for i, c := range rs.Conditions {
		t, ok := convertCondition(i, c.Operator)
		if !ok {
			anomalies = append(anomalies, formlogic.Anomaly{
				Kind:           formlogic.UnknownOperator,
				QuestionKey:    key,
				ConditionIndex: i,
				Value:          string(c.Operator),
			})
		}
		terms[i] = "(" + t + ")"
	}

	switch rs.Logic {
	case formlogic.And:
		return strings.Join(terms, " && "), anomalies
	case formlogic.Or:
		return strings.Join(terms, " || "), anomalies
	default:
		anomalies = append(anomalies, formlogic.Anomaly{
			Kind:           formlogic.UnknownLogic,
			QuestionKey:    key,
			ConditionIndex: -1,
			Value:          string(rs.Logic),
		})
		return "true", anomalies
	}
}

// convertCondition returns the expression for condition i. It returns
// false, and the expression "false", for unknown operators.
func convertCondition(i int, op formlogic.Operator) (string, bool) {
	k := fmt.Sprintf("keys[%d]", i)
	v := fmt.Sprintf("values[%d]", i)

	equals := fmt.Sprintf("(%[1]s in scalars && scalars[%[1]s] == %[2]s) || (%[1]s in lists && %[2]s in lists[%[1]s])", k, v)

	switch op {
	case formlogic.Equals:
		return equals, true
	case formlogic.NotEquals:
		// An unanswered driver is in neither map, so the negation holds.
		return "!(" + equals + ")", true
	case formlogic.Contains:
		return fmt.Sprintf("(%[1]s in scalars && lower(scalars[%[1]s]).contains(lower(%[2]s))) || "+
			"(%[1]s in lists && lists[%[1]s].exists(e, lower(e).contains(lower(%[2]s))))", k, v), true
	default:
		return "false", false
	}
}

package formlogic_test

import (
	"fmt"

	"github.com/ezachrisen/formlogic"
)

// Example showing how a form viewer decides which questions to render
func Example() {

	// Step 1: Build the form. A question without rules is always shown.
	form := formlogic.Form{
		Title: "Order",
		Questions: []formlogic.Question{
			{Key: "color", Label: "Color", Order: 0},
			{
				Key:   "shipping_note",
				Label: "Shipping note",
				Order: 1,
				ConditionalRules: &formlogic.RuleSet{
					Logic: formlogic.And,
					Conditions: []formlogic.Condition{
						{QuestionKey: "color", Operator: formlogic.Equals, Value: "red"},
					},
				},
			},
		},
	}

	// Step 2: Evaluate against the answers given so far
	fmt.Println(formlogic.VisibleQuestions(form.Sorted(), formlogic.AnswerMap{}))
	fmt.Println(formlogic.VisibleQuestions(form.Sorted(), formlogic.AnswerMap{
		"color": formlogic.Scalar("red"),
	}))
	// Output:
	// [color]
	// [color shipping_note]
}

// Example showing how a form builder edits rules. Each edit returns a new
// rule set.
func ExampleAddCondition() {
	rs := formlogic.AddCondition(nil)
	rs, _ = formlogic.UpdateCondition(rs, 0, formlogic.ConditionUpdate{
		QuestionKey: formlogic.Ptr("sizes"),
		Operator:    formlogic.Ptr(formlogic.Contains),
		Value:       formlogic.Ptr("xl"),
	})
	fmt.Println(rs.Logic, rs.Conditions[0])

	rs, _ = formlogic.RemoveCondition(rs, 0)
	fmt.Println(rs == nil)
	// Output:
	// AND sizes contains "xl"
	// true
}

// Example showing how a server validates a submission with the same rules
func ExampleValidate() {
	form := &formlogic.Form{
		Questions: []formlogic.Question{
			{Key: "color", Order: 0, Required: true},
			{Key: "shipping_note", Order: 1, Required: true, ConditionalRules: &formlogic.RuleSet{
				Logic:      formlogic.And,
				Conditions: []formlogic.Condition{{QuestionKey: "color", Operator: formlogic.Equals, Value: "red"}},
			}},
		},
	}

	s := formlogic.Validate(form, formlogic.AnswerMap{
		"color":         formlogic.Scalar("blue"),
		"shipping_note": formlogic.Scalar("not needed"),
	})
	fmt.Println(s.Err(), s.Stripped)

	s = formlogic.Validate(form, formlogic.AnswerMap{"color": formlogic.Scalar("red")})
	fmt.Println(s.Err())
	// Output:
	// <nil> [shipping_note]
	// submission rejected (1 error): shipping_note: missing
}

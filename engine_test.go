package formlogic_test

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/ezachrisen/formlogic"
	"github.com/matryer/is"
)

func colorIs(op formlogic.Operator, v string) formlogic.Condition {
	return formlogic.Condition{QuestionKey: "color", Operator: op, Value: v}
}

func TestNoRulesAlwaysVisible(t *testing.T) {
	is := is.New(t)
	maps := []formlogic.AnswerMap{
		nil,
		{},
		{"color": formlogic.Scalar("red")},
		{"color": formlogic.Multi{"a"}},
	}
	for _, m := range maps {
		is.True(formlogic.IsVisible(nil, m))
		is.True(formlogic.IsVisible(&formlogic.RuleSet{}, m))
		is.True(formlogic.IsVisible(&formlogic.RuleSet{Logic: formlogic.Or, Conditions: []formlogic.Condition{}}, m))
		// Even malformed logic is irrelevant without conditions
		is.True(formlogic.IsVisible(&formlogic.RuleSet{Logic: "XOR"}, m))
	}
}

func TestEvaluateCondition(t *testing.T) {
	cases := []struct {
		name    string
		cond    formlogic.Condition
		answers formlogic.AnswerMap
		want    bool
	}{
		{"equals exact", colorIs(formlogic.Equals, "red"), formlogic.AnswerMap{"color": formlogic.Scalar("red")}, true},
		{"equals case sensitive", colorIs(formlogic.Equals, "RED"), formlogic.AnswerMap{"color": formlogic.Scalar("red")}, false},
		{"equals multi member", colorIs(formlogic.Equals, "B"), formlogic.AnswerMap{"color": formlogic.Multi{"A", "B"}}, true},
		{"equals multi non-member", colorIs(formlogic.Equals, "C"), formlogic.AnswerMap{"color": formlogic.Multi{"A", "B"}}, false},
		{"equals empty multi", colorIs(formlogic.Equals, "A"), formlogic.AnswerMap{"color": formlogic.Multi{}}, false},
		{"not equals multi member", colorIs(formlogic.NotEquals, "B"), formlogic.AnswerMap{"color": formlogic.Multi{"A", "B"}}, false},
		{"not equals multi non-member", colorIs(formlogic.NotEquals, "C"), formlogic.AnswerMap{"color": formlogic.Multi{"A", "B"}}, true},
		{"not equals scalar", colorIs(formlogic.NotEquals, "blue"), formlogic.AnswerMap{"color": formlogic.Scalar("red")}, true},
		{"contains case insensitive", colorIs(formlogic.Contains, "RED"), formlogic.AnswerMap{"color": formlogic.Scalar("dark-red-shirt")}, true},
		{"contains missing", colorIs(formlogic.Contains, "blue"), formlogic.AnswerMap{"color": formlogic.Scalar("dark-red-shirt")}, false},
		{"contains any element", colorIs(formlogic.Contains, "gre"), formlogic.AnswerMap{"color": formlogic.Multi{"Red", "Green"}}, true},
		{"unanswered equals", colorIs(formlogic.Equals, "X"), formlogic.AnswerMap{}, false},
		{"unanswered not equals", colorIs(formlogic.NotEquals, "X"), formlogic.AnswerMap{}, true},
		{"unanswered contains", colorIs(formlogic.Contains, "X"), formlogic.AnswerMap{}, false},
		{"nil answer", colorIs(formlogic.NotEquals, "X"), formlogic.AnswerMap{"color": nil}, true},
		{"empty string", colorIs(formlogic.Equals, ""), formlogic.AnswerMap{"color": formlogic.Scalar("")}, false},
		{"nil map", colorIs(formlogic.NotEquals, "X"), nil, true},
		{"nonexistent driver", formlogic.Condition{QuestionKey: "nope", Operator: formlogic.Equals, Value: "X"},
			formlogic.AnswerMap{"color": formlogic.Scalar("X")}, false},
		{"unknown operator", colorIs("startsWith", "r"), formlogic.AnswerMap{"color": formlogic.Scalar("red")}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(formlogic.EvaluateCondition(c.cond, c.answers), c.want)
		})
	}
}

func TestAndRequiresEveryCondition(t *testing.T) {
	is := is.New(t)
	rs := &formlogic.RuleSet{
		Logic: formlogic.And,
		Conditions: []formlogic.Condition{
			{QuestionKey: "color", Operator: formlogic.Equals, Value: "red"},
			{QuestionKey: "size", Operator: formlogic.Contains, Value: "l"},
			{QuestionKey: "gift", Operator: formlogic.NotEquals, Value: "yes"},
		},
	}
	answers := formlogic.AnswerMap{
		"color": formlogic.Scalar("red"),
		"size":  formlogic.Scalar("XL"),
	}
	is.True(formlogic.IsVisible(rs, answers))

	// Violating any single condition hides the question
	violations := []formlogic.AnswerMap{
		{"color": formlogic.Scalar("blue"), "size": formlogic.Scalar("XL")},
		{"color": formlogic.Scalar("red"), "size": formlogic.Scalar("M")},
		{"color": formlogic.Scalar("red"), "size": formlogic.Scalar("XL"), "gift": formlogic.Scalar("yes")},
	}
	for _, v := range violations {
		is.True(!formlogic.IsVisible(rs, v))
	}
}

func TestOrRequiresAnyCondition(t *testing.T) {
	is := is.New(t)
	rs := &formlogic.RuleSet{
		Logic: formlogic.Or,
		Conditions: []formlogic.Condition{
			{QuestionKey: "color", Operator: formlogic.Equals, Value: "red"},
			{QuestionKey: "size", Operator: formlogic.Equals, Value: "XL"},
		},
	}
	is.True(formlogic.IsVisible(rs, formlogic.AnswerMap{"color": formlogic.Scalar("red")}))
	is.True(formlogic.IsVisible(rs, formlogic.AnswerMap{"size": formlogic.Scalar("XL")}))
	is.True(formlogic.IsVisible(rs, formlogic.AnswerMap{"color": formlogic.Scalar("red"), "size": formlogic.Scalar("XL")}))
	is.True(!formlogic.IsVisible(rs, formlogic.AnswerMap{"color": formlogic.Scalar("blue"), "size": formlogic.Scalar("M")}))
	is.True(!formlogic.IsVisible(rs, formlogic.AnswerMap{}))
}

func TestUnknownLogicFailsOpen(t *testing.T) {
	is := is.New(t)
	var c formlogic.Collector
	e := formlogic.NewEvaluator(formlogic.WithReporter(c.Report))

	rs := &formlogic.RuleSet{
		Logic:      "XOR",
		Conditions: []formlogic.Condition{colorIs(formlogic.Equals, "red")},
	}
	r := e.Evaluate("shipping_note", rs, formlogic.AnswerMap{"color": formlogic.Scalar("blue")})
	is.True(r.Visible)
	is.Equal(len(r.Conditions), 1)
	is.True(!r.Conditions[0].Pass)
	is.Equal(len(r.Anomalies), 1)
	is.Equal(r.Anomalies[0].Kind, formlogic.UnknownLogic)
	is.Equal(r.Anomalies[0].QuestionKey, "shipping_note")
	is.Equal(r.Anomalies[0].ConditionIndex, -1)
	is.Equal(r.Anomalies[0].Value, "XOR")
	is.Equal(c.Anomalies, r.Anomalies)
}

func TestUnknownOperatorFailsClosed(t *testing.T) {
	is := is.New(t)
	var c formlogic.Collector
	e := formlogic.NewEvaluator(formlogic.WithReporter(c.Report))

	rs := &formlogic.RuleSet{
		Logic: formlogic.Or,
		Conditions: []formlogic.Condition{
			colorIs(formlogic.Equals, "blue"),
			colorIs("matches", "r.*"),
		},
	}
	r := e.Evaluate("q", rs, formlogic.AnswerMap{"color": formlogic.Scalar("red")})
	is.True(!r.Visible)
	is.Equal(len(c.Anomalies), 1)
	is.Equal(c.Anomalies[0].Kind, formlogic.UnknownOperator)
	is.Equal(c.Anomalies[0].ConditionIndex, 1)
	is.Equal(c.Anomalies[0].Value, "matches")
}

func TestConditionOrderPreserved(t *testing.T) {
	is := is.New(t)
	rs := &formlogic.RuleSet{
		Logic: formlogic.And,
		Conditions: []formlogic.Condition{
			colorIs(formlogic.Equals, "blue"),
			colorIs(formlogic.Equals, "red"),
			colorIs(formlogic.Contains, "e"),
		},
	}
	r := formlogic.NewEvaluator().Evaluate("q", rs, formlogic.AnswerMap{"color": formlogic.Scalar("red")})
	is.Equal(len(r.Conditions), 3) // AND does not stop at the first failure
	is.Equal(r.Conditions[0].Condition.Value, "blue")
	is.True(!r.Conditions[0].Pass)
	is.True(r.Conditions[1].Pass)
	is.True(r.Conditions[2].Pass)
	is.True(r.Conditions[2].Answered)
}

func TestVisibleQuestionsPreservesOrder(t *testing.T) {
	is := is.New(t)
	hidden := &formlogic.RuleSet{Logic: formlogic.And, Conditions: []formlogic.Condition{colorIs(formlogic.Equals, "never")}}
	questions := []formlogic.Question{
		{Key: "q1", Order: 0},
		{Key: "q2", Order: 1, ConditionalRules: hidden},
		{Key: "q3", Order: 2},
	}
	answers := formlogic.AnswerMap{"color": formlogic.Scalar("red")}

	got := formlogic.VisibleQuestions(questions, answers)
	is.Equal(got, []string{"q1", "q3"})

	// Idempotent
	is.Equal(formlogic.VisibleQuestions(questions, answers), got)

	// The input order is kept even when it disagrees with Order
	reversed := []formlogic.Question{questions[2], questions[1], questions[0]}
	is.Equal(formlogic.VisibleQuestions(reversed, answers), []string{"q3", "q1"})

	is.Equal(formlogic.VisibleQuestions(nil, answers), []string{})
}

func TestEvaluatorDoesNotMutateAnswers(t *testing.T) {
	is := is.New(t)
	answers := formlogic.AnswerMap{
		"color": formlogic.Multi{"Red", "Blue"},
		"size":  formlogic.Scalar("XL"),
		"gift":  nil,
	}
	before := answers.Clone()
	f := shippingForm()
	formlogic.NewEvaluator().EvaluateForm(f, answers)
	formlogic.Validate(f, answers)
	is.Equal(answers, before)
}

func TestEvaluateForm(t *testing.T) {
	is := is.New(t)
	f := shippingForm()

	fr := formlogic.NewEvaluator().EvaluateForm(f, formlogic.AnswerMap{"color": formlogic.Scalar("red")})
	is.Equal(fr.Visible, []string{"color", "shipping_note", "gift_message"})
	is.Equal(fr.Hidden(), []string{"gift_wrap"})
	is.Equal(len(fr.Results), 4)
	is.True(strings.Contains(fr.String(), "3 of 4 questions shown"))

	fr = formlogic.NewEvaluator().EvaluateForm(f, formlogic.AnswerMap{"color": formlogic.Scalar("blue")})
	is.Equal(fr.Visible, []string{"color", "gift_wrap", "gift_message"})
}

func TestLogReporter(t *testing.T) {
	is := is.New(t)
	buf := &bytes.Buffer{}
	l := slog.New(slog.NewTextHandler(buf, nil))
	e := formlogic.NewEvaluator(formlogic.WithLogger(l))

	rs := &formlogic.RuleSet{Logic: "NAND", Conditions: []formlogic.Condition{colorIs(formlogic.Equals, "red")}}
	is.True(e.IsVisible(rs, nil))
	out := buf.String()
	is.True(strings.Contains(out, "level=WARN"))
	is.True(strings.Contains(out, "kind=\"unknown logic\""))
	is.True(strings.Contains(out, "value=NAND"))
}

func TestConcurrentEvaluation(t *testing.T) {
	is := is.New(t)
	f := shippingForm()
	e := formlogic.NewEvaluator()
	answers := formlogic.AnswerMap{"color": formlogic.Scalar("red")}
	want := e.VisibleQuestions(f.Sorted(), answers)

	var wg sync.WaitGroup
	results := make([][]string, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.VisibleQuestions(f.Sorted(), answers)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		is.Equal(r, want)
	}
}

func TestResultString(t *testing.T) {
	is := is.New(t)
	rs := &formlogic.RuleSet{Logic: "XOR", Conditions: []formlogic.Condition{colorIs(formlogic.Equals, "red")}}
	r := formlogic.NewEvaluator().Evaluate("shipping_note", rs, formlogic.AnswerMap{"color": formlogic.Scalar("red")})
	s := r.String()
	is.True(strings.Contains(s, "shipping_note: shown"))
	is.True(strings.Contains(s, "1st"))
	is.True(strings.Contains(s, "PASS"))
	is.True(strings.Contains(s, "unknown logic"))
}

// shippingForm has a color question, a shipping note shown for red, a gift
// wrap question shown for blue or green, and an unconditioned gift message.
// The questions are deliberately not stored in order.
func shippingForm() *formlogic.Form {
	return &formlogic.Form{
		ID:    "f1",
		Title: "Order",
		Questions: []formlogic.Question{
			{
				Key: "gift_wrap", Label: "Gift wrap", Type: formlogic.TypeSingleSelect, Order: 2,
				Options: []string{"yes", "no"}, Required: true,
				ConditionalRules: &formlogic.RuleSet{
					Logic: formlogic.Or,
					Conditions: []formlogic.Condition{
						colorIs(formlogic.Equals, "blue"),
						colorIs(formlogic.Equals, "green"),
					},
				},
			},
			{Key: "color", Label: "Color", Type: formlogic.TypeSingleSelect, Order: 0, Options: []string{"red", "blue", "green"}, Required: true},
			{
				Key: "shipping_note", Label: "Shipping note", Type: "multilineText", Order: 1, Required: true,
				ConditionalRules: &formlogic.RuleSet{
					Logic:      formlogic.And,
					Conditions: []formlogic.Condition{colorIs(formlogic.Equals, "red")},
				},
			},
			{Key: "gift_message", Label: "Gift message", Type: "singleLineText", Order: 3},
		},
	}
}

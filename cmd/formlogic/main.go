// Command formlogic evaluates the conditional rules of a form definition
// against a set of answers.
//
//	formlogic visible  -form form.yaml -answers answers.json [-v]
//	formlogic validate -form form.yaml -answers answers.json [-engine native|cel]
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ezachrisen/formlogic"
	"github.com/ezachrisen/formlogic/cel"
	"github.com/ezachrisen/formlogic/formfile"
	"github.com/pkg/errors"
)

// errRejected is returned when a submission has field errors. The table has
// already been printed, so main only sets the exit code.
var errRejected = errors.New("submission rejected")

func main() {
	err := run(os.Stdout, os.Stderr, os.Args)
	if err == errRejected {
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

const usage = `usage:
	formlogic visible  -form form.yaml -answers answers.json [-v]
	formlogic validate -form form.yaml -answers answers.json [-engine native|cel]`

func run(stdout, stderr io.Writer, args []string) error {
	if len(args) < 2 {
		return errors.New(usage)
	}
	logger := newLogger(stderr, os.Getenv("FORMLOGIC_LOG_LEVEL"))

	switch args[1] {
	case "visible":
		return runVisible(stdout, logger, args[1:])
	case "validate":
		return runValidate(stdout, logger, args[1:])
	case "-h", "-help", "help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		return errors.Errorf("unknown command %q\n%s", args[1], usage)
	}
}

// newLogger returns a text logger writing to w. level is one of debug, info,
// warn or error; anything else means info.
func newLogger(w io.Writer, level string) *slog.Logger {
	l := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

type inputs struct {
	form    *formlogic.Form
	answers formlogic.AnswerMap
}

// load parses the common flags and reads the form and answers files.
// Warnings from formlogic.CheckForm are logged.
func load(flags *flag.FlagSet, args []string, logger *slog.Logger) (*inputs, error) {
	var (
		formPath    = flags.String("form", "", "form definition file (.yaml or .json)")
		answersPath = flags.String("answers", "", "answers file (.yaml or .json)")
	)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if *formPath == "" {
		return nil, errors.New("missing -form")
	}

	f, err := formfile.LoadForm(*formPath)
	if err != nil {
		return nil, err
	}
	for _, p := range formlogic.CheckForm(f) {
		logger.Warn("form check", "problem", p.String())
	}

	answers := formlogic.AnswerMap{}
	if *answersPath != "" {
		answers, err = formfile.LoadAnswers(*answersPath)
		if err != nil {
			return nil, err
		}
	}
	logger.Debug("loaded",
		"form", *formPath,
		"questions", len(f.Questions),
		"answers", humanize.Comma(int64(len(answers))))
	return &inputs{form: f, answers: answers}, nil
}

func runVisible(stdout io.Writer, logger *slog.Logger, args []string) error {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	v := flags.Bool("v", false, "print a table for every question")
	flags.Usage = func() { fmt.Fprintln(flags.Output(), usage) }
	in, err := load(flags, args[1:], logger)
	if err != nil {
		return err
	}

	e := formlogic.NewEvaluator(formlogic.WithLogger(logger))
	fr := e.EvaluateForm(in.form, in.answers)
	if !*v {
		fmt.Fprintln(stdout, strings.Join(fr.Visible, "\n"))
		return nil
	}
	fmt.Fprintln(stdout, fr)
	for _, r := range fr.Results {
		if r.RuleSet.Empty() {
			continue
		}
		fmt.Fprintln(stdout, r)
	}
	return nil
}

func runValidate(stdout io.Writer, logger *slog.Logger, args []string) error {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	engine := flags.String("engine", "native", "evaluator used for visibility: native or cel")
	flags.Usage = func() { fmt.Fprintln(flags.Output(), usage) }
	in, err := load(flags, args[1:], logger)
	if err != nil {
		return err
	}

	e := formlogic.NewEvaluator(formlogic.WithLogger(logger))
	s := formlogic.Validate(in.form, in.answers, formlogic.WithEvaluator(e))

	switch *engine {
	case "native":
	case "cel":
		// The CEL programs must reach the same decision as the native
		// evaluator for the submission to be trusted.
		ce := cel.NewEvaluator()
		visible, err := ce.VisibleQuestions(in.form.Sorted(), in.answers)
		if err != nil {
			return errors.Wrap(err, "cel")
		}
		if !slices.Equal(visible, s.Visible) {
			return errors.Errorf("cel and native evaluators disagree: cel %v, native %v", visible, s.Visible)
		}
		logger.Debug("cel agrees with native evaluator", "visible", len(visible))
	default:
		return errors.Errorf("unknown engine %q", *engine)
	}

	fmt.Fprintln(stdout, s)
	if s.Err() != nil {
		logger.Info("rejected", "submission", s.ID, "errors", len(s.Errors))
		return errRejected
	}
	return nil
}

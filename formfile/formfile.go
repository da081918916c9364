// Package formfile reads form definitions and answer maps from YAML or JSON
// files.
//
// Documents are checked against a JSON Schema before they are decoded, so
// that structural mistakes (a misspelled field, a number where a string is
// expected) are reported with the path of the offending value. Unknown
// logic and operator values are accepted: they are part of the data the
// evaluator knows how to handle.
package formfile

import (
	"bytes"
	"embed"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ezachrisen/formlogic"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Format of a document.
type Format int

const (
	YAML Format = iota
	JSON
)

func (f Format) String() string {
	if f == JSON {
		return "json"
	}
	return "yaml"
}

// FormatFor picks the format from the file extension: .json is JSON,
// anything else is YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return YAML
}

//go:embed schema/*.json
var schemaFiles embed.FS

// Base URL the embedded schemas are registered under. Nothing is fetched
// from it.
const schemaURL = "https://github.com/ezachrisen/formlogic/formfile/schema/"

var (
	schemasOnce   sync.Once
	formSchema    *jsonschema.Schema
	answersSchema *jsonschema.Schema
	schemasErr    error
)

func schemas() (*jsonschema.Schema, *jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		c := jsonschema.NewCompiler()
		for _, name := range []string{"form.schema.json", "answers.schema.json"} {
			data, err := schemaFiles.ReadFile("schema/" + name)
			if err != nil {
				schemasErr = errors.Wrapf(err, "read schema %s", name)
				return
			}
			if err := c.AddResource(schemaURL+name, bytes.NewReader(data)); err != nil {
				schemasErr = errors.Wrapf(err, "add schema %s", name)
				return
			}
		}
		formSchema, schemasErr = c.Compile(schemaURL + "form.schema.json")
		if schemasErr != nil {
			return
		}
		answersSchema, schemasErr = c.Compile(schemaURL + "answers.schema.json")
	})
	return formSchema, answersSchema, schemasErr
}

// LoadForm reads, validates and decodes a form definition file.
func LoadForm(path string) (*formlogic.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read form")
	}
	f, err := ParseForm(data, FormatFor(path))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return f, nil
}

// ParseForm validates and decodes a form definition. Forms with empty or
// duplicate question keys are rejected; other problems found by
// formlogic.CheckForm are left to the caller.
func ParseForm(data []byte, format Format) (*formlogic.Form, error) {
	fs, _, err := schemas()
	if err != nil {
		return nil, err
	}
	tree, err := decodeTree(data, format)
	if err != nil {
		return nil, err
	}
	if err := fs.Validate(tree); err != nil {
		return nil, errors.Wrap(err, "invalid form")
	}

	var f formlogic.Form
	if err := decodeStrict(data, format, &f); err != nil {
		return nil, err
	}
	for _, p := range formlogic.CheckForm(&f) {
		if p.Severity == formlogic.Error {
			return nil, errors.Errorf("invalid form: %s", p)
		}
	}
	return &f, nil
}

// LoadAnswers reads, validates and decodes an answers file.
func LoadAnswers(path string) (formlogic.AnswerMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read answers")
	}
	a, err := ParseAnswers(data, FormatFor(path))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return a, nil
}

// ParseAnswers validates and decodes an answer map: an object whose values
// are strings, lists of strings or null. Numbers and booleans are converted
// to strings.
func ParseAnswers(data []byte, format Format) (formlogic.AnswerMap, error) {
	_, as, err := schemas()
	if err != nil {
		return nil, err
	}
	tree, err := decodeTree(data, format)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return formlogic.AnswerMap{}, nil
	}
	if err := as.Validate(tree); err != nil {
		return nil, errors.Wrap(err, "invalid answers")
	}
	m, ok := tree.(map[string]any)
	if !ok {
		return nil, errors.Errorf("invalid answers: expected an object, got %T", tree)
	}
	return formlogic.AnswersFrom(m)
}

// decodeTree decodes a single document into generic values.
func decodeTree(data []byte, format Format) (any, error) {
	var tree any
	switch format {
	case JSON:
		d := json.NewDecoder(bytes.NewReader(data))
		d.UseNumber()
		if err := d.Decode(&tree); err != nil {
			return nil, errors.Wrap(err, "parse json")
		}
		if err := d.Decode(&struct{}{}); err != io.EOF {
			return nil, errors.New("parse json: multiple documents are not supported")
		}
		return tree, nil
	default:
		d := yaml.NewDecoder(bytes.NewReader(data))
		if err := d.Decode(&tree); err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, errors.Wrap(err, "parse yaml")
		}
		if err := d.Decode(&struct{}{}); err != io.EOF {
			return nil, errors.New("parse yaml: multiple documents are not supported")
		}
		return tree, nil
	}
}

// decodeStrict decodes into v, rejecting unknown fields.
func decodeStrict(data []byte, format Format, v any) error {
	switch format {
	case JSON:
		d := json.NewDecoder(bytes.NewReader(data))
		d.DisallowUnknownFields()
		return errors.Wrap(d.Decode(v), "decode json")
	default:
		d := yaml.NewDecoder(bytes.NewReader(data))
		d.KnownFields(true)
		return errors.Wrap(d.Decode(v), "decode yaml")
	}
}

// Package jsonschema validates JSON documents against a JSON Schema.
package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationErrors represents a collection of validation errors
type ValidationErrors []error

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, err := range ve {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// FieldError is a single violated constraint. Location is a JSON Pointer
// into the document, "/" for the document itself.
type FieldError struct {
	Location string
	Message  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// Schema is a compiled JSON Schema.
type Schema struct {
	schema *jsonschema.Schema
}

// Compile compiles schemaStr. The name is used in error messages only.
func Compile(name, schemaStr string) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(schemaStr)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{schema: schema}, nil
}

// MustCompile is Compile for schemas embedded in the program.
func MustCompile(name, schemaStr string) *Schema {
	s, err := Compile(name, schemaStr)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a JSON document. It returns nil when the document is
// valid, and one error per violated constraint otherwise.
func (s *Schema) Validate(doc []byte) ValidationErrors {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return ValidationErrors{fmt.Errorf("invalid JSON: %w", err)}
	}

	err := s.schema.Validate(v)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		if errs := leafErrors(verr); len(errs) > 0 {
			return errs
		}
	}
	return ValidationErrors{err}
}

// leafErrors flattens the cause tree down to the errors that name an
// actual constraint.
func leafErrors(err *jsonschema.ValidationError) ValidationErrors {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		return ValidationErrors{&FieldError{Location: location, Message: err.Message}}
	}

	var errs ValidationErrors
	for _, cause := range err.Causes {
		errs = append(errs, leafErrors(cause)...)
	}
	return errs
}

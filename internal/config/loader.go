// Package config loads the optional YAML configuration file.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/oneshot/internal/output"
	"github.com/wesleyorama2/oneshot/pkg/jsonpath"
	"github.com/wesleyorama2/oneshot/pkg/jsonschema"
)

//go:embed schema.json
var schemaJSON string

var schema = jsonschema.MustCompile("oneshot-config.json", schemaJSON)

// Load reads a configuration file. Keys missing from the file keep their
// Defaults value. An empty path returns Defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("config file not found: %s", path)
	}
	if err != nil {
		return cfg, fmt.Errorf("error reading config file: %w", err)
	}

	doc, err := toJSON(data)
	if err != nil {
		return cfg, fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	if doc == nil {
		return cfg, nil
	}

	if errs := schema.Validate(doc); len(errs) > 0 {
		return cfg, validationErrors(path, errs)
	}

	return apply(cfg, doc)
}

// toJSON converts a YAML document to JSON. It returns nil for an empty
// document.
func toJSON(data []byte) ([]byte, error) {
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func apply(cfg Config, doc []byte) (Config, error) {
	port, err := jsonpath.Int(doc, "$.listen.port", cfg.Port)
	if err != nil {
		return cfg, err
	}
	cfg.Port = port
	cfg.LogLevel = jsonpath.String(doc, "$.log.level", cfg.LogLevel)

	report, err := output.ParseReportFormat(jsonpath.String(doc, "$.output.report", string(cfg.Report)))
	if err != nil {
		return cfg, err
	}
	cfg.Report = report

	color, err := output.ParseColorMode(jsonpath.String(doc, "$.output.color", string(cfg.Color)))
	if err != nil {
		return cfg, err
	}
	cfg.Color = color

	return cfg, nil
}

func validationErrors(path string, errs jsonschema.ValidationErrors) error {
	out := &ValidationErrors{File: path}
	for _, err := range errs {
		var fe *jsonschema.FieldError
		if errors.As(err, &fe) {
			out.Errors = append(out.Errors, ValidationError{Path: dotted(fe.Location), Message: fe.Message})
			continue
		}
		out.Errors = append(out.Errors, ValidationError{Path: "$", Message: err.Error()})
	}
	return out
}

// dotted turns a JSON Pointer such as /listen/port into listen.port.
func dotted(pointer string) string {
	p := strings.Trim(pointer, "/")
	if p == "" {
		return "$"
	}
	return strings.ReplaceAll(p, "/", ".")
}

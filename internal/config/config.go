package config

import (
	"fmt"
	"strings"

	"github.com/wesleyorama2/oneshot/internal/logger"
	"github.com/wesleyorama2/oneshot/internal/output"
	"github.com/wesleyorama2/oneshot/internal/responder"
)

// Config holds the ambient settings of a run. The response body is not
// configurable.
type Config struct {
	Port     int
	LogLevel string
	Report   output.ReportFormat
	Color    output.ColorMode
}

// Defaults returns the configuration used when neither a file nor a flag
// sets a value.
func Defaults() Config {
	return Config{
		Port:     responder.DefaultPort,
		LogLevel: logger.DefaultLevel.String(),
		Report:   output.ReportNone,
		Color:    output.ColorAuto,
	}
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is returned by Load when a file does not match the schema.
type ValidationErrors struct {
	File   string
	Errors []ValidationError
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		msgs = append(msgs, ve.Error())
	}
	return fmt.Sprintf("invalid config %s: %s", e.File, strings.Join(msgs, "; "))
}

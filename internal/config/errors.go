package config

import (
	"fmt"
	"strings"
)

// Error types reported in ConfigurationError.ErrorType.
const (
	ErrorTypeIO         = "io"
	ErrorTypeTemplate   = "template"
	ErrorTypeParse      = "parse"
	ErrorTypeValidation = "validation"
	ErrorTypeEnv        = "environment"
)

// ConfigurationError represents a structured error that occurs during configuration loading
type ConfigurationError struct {
	FilePath  string `json:"filePath,omitempty"` // Full path to the file that caused the error
	Field     string `json:"field,omitempty"`    // Offending field, for validation errors
	ErrorType string `json:"errorType"`          // Type of error (parse, validation, io, etc.)
	Message   string `json:"message"`            // Human-readable error message
	Err       error  `json:"-"`
}

// Error implements the error interface
func (ce *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(ce.ErrorType)
	b.WriteString("] ")
	if ce.FilePath != "" {
		b.WriteString(ce.FilePath)
		b.WriteString(": ")
	}
	if ce.Field != "" {
		fmt.Fprintf(&b, "field '%s': ", ce.Field)
	}
	b.WriteString(ce.Message)
	if ce.Err != nil {
		b.WriteString(": ")
		b.WriteString(ce.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error, if any.
func (ce *ConfigurationError) Unwrap() error {
	return ce.Err
}

// ConfigurationErrorCollection holds multiple configuration errors
type ConfigurationErrorCollection struct {
	Errors []*ConfigurationError `json:"errors"`
}

// Error implements the error interface for the collection
func (cec *ConfigurationErrorCollection) Error() string {
	if len(cec.Errors) == 0 {
		return "no configuration errors"
	}

	if len(cec.Errors) == 1 {
		return cec.Errors[0].Error()
	}

	var messages []string
	for _, err := range cec.Errors {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("%d configuration errors: %s", len(cec.Errors), strings.Join(messages, "; "))
}

// HasErrors returns true if there are any errors in the collection
func (cec *ConfigurationErrorCollection) HasErrors() bool {
	return len(cec.Errors) > 0
}

// Add appends a validation error for field.
func (cec *ConfigurationErrorCollection) Add(field, message string) {
	cec.Errors = append(cec.Errors, &ConfigurationError{
		Field:     field,
		ErrorType: ErrorTypeValidation,
		Message:   message,
	})
}

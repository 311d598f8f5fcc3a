package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies the constraint a ValidationError violated.
type Code string

const (
	CodeMissingRequired Code = "missing_required"
	CodeInvalidType     Code = "invalid_type"
	CodeInvalidEnum     Code = "invalid_enum"
	CodeUnknownArgument Code = "unknown_argument"
)

// ValidationError represents a single argument validation failure.
type ValidationError struct {
	Key      string   // Argument name
	Code     Code     // Violated constraint
	Expected Type     // Declared type (invalid_type)
	Actual   Kind     // Observed kind (invalid_type)
	Allowed  []string // Allowed literals (invalid_enum)
	Value    any      // The offending value, if any
}

func (e *ValidationError) Error() string {
	switch e.Code {
	case CodeMissingRequired:
		return fmt.Sprintf("missing required argument %q", e.Key)
	case CodeInvalidType:
		return fmt.Sprintf("argument %q must be %s, got %s", e.Key, e.Expected, e.Actual)
	case CodeInvalidEnum:
		return fmt.Sprintf("argument %q must be one of [%s], got %q", e.Key, strings.Join(e.Allowed, ", "), e.Value)
	case CodeUnknownArgument:
		return fmt.Sprintf("unknown argument %q", e.Key)
	}
	return fmt.Sprintf("argument %q is invalid", e.Key)
}

// AggregateError represents multiple validation failures of one argument bag.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns the individual failures carried by err.
// It returns nil if err does not wrap an AggregateError or a ValidationError.
func ValidationErrors(err error) []*ValidationError {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		out := make([]*ValidationError, 0, len(aggr.Errors))
		for _, e := range aggr.Errors {
			var verr *ValidationError
			if errors.As(e, &verr) {
				out = append(out, verr)
			}
		}
		return out
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return []*ValidationError{verr}
	}
	return nil
}

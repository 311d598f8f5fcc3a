package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownTool is returned when a call names a tool that is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// ErrDuplicateTool is returned when a tool name is registered twice.
var ErrDuplicateTool = errors.New("tool already registered")

// ErrDrawingNotFound is returned when a drawing ID cannot be found in the store.
var ErrDrawingNotFound = errors.New("drawing not found")

// HandlerError reports that a tool's handler failed.
type HandlerError struct {
	Tool string
	Err  error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("Error executing tool %s: %v", e.Tool, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

package selection

import (
	"errors"
	"fmt"
)

// Error names for the engine's failure taxonomy.
const (
	CapacityExceeded = "CapacityExceededError"
	ResolutionMiss   = "ResolutionMissError"
	StateConflict    = "StateConflictError"
	NoScope          = "NoScopeError"
	InputDisabled    = "InputDisabledError"
)

// EngineError represents a selection engine failure with a name and message.
type EngineError struct {
	Name    string
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// ErrCapacityExceeded creates a CapacityExceededError: the operation would
// grow the selection past the configured ceiling.
func ErrCapacityExceeded(message string) *EngineError {
	return &EngineError{Name: CapacityExceeded, Message: message}
}

// ErrResolutionMiss creates a ResolutionMissError: an element or coordinate
// could not be resolved against the active grid.
func ErrResolutionMiss(message string) *EngineError {
	return &EngineError{Name: ResolutionMiss, Message: message}
}

// ErrStateConflict creates a StateConflictError: the operation is not legal
// in the current gesture state.
func ErrStateConflict(message string) *EngineError {
	return &EngineError{Name: StateConflict, Message: message}
}

// ErrNoScope creates a NoScopeError: no grid scope is active.
func ErrNoScope(message string) *EngineError {
	return &EngineError{Name: NoScope, Message: message}
}

// ErrInputDisabled creates an InputDisabledError: the input layer has shut
// itself down for the session.
func ErrInputDisabled(message string) *EngineError {
	return &EngineError{Name: InputDisabled, Message: message}
}

// IsError reports whether err is an EngineError with the given name.
func IsError(err error, name string) bool {
	var ee *EngineError
	return errors.As(err, &ee) && ee.Name == name
}

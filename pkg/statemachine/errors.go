package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState       = errors.New("statemachine.errors.invalid_state")
	ErrInvalidEvent       = errors.New("statemachine.errors.invalid_event")
	ErrInvalidTransition  = errors.New("statemachine.errors.invalid_transition")
	ErrNoTransition       = errors.New("statemachine.errors.no_transition_available")
	ErrTransitionRejected = errors.New("statemachine.errors.transition_rejected")
)

// NewErrNoTransition wraps ErrNoTransition with the state and event involved.
func NewErrNoTransition(state, event string) error {
	return fmt.Errorf("%w: state %q, event %q", ErrNoTransition, state, event)
}

// NewErrTransitionRejected wraps ErrTransitionRejected with the state and
// event involved.
func NewErrTransitionRejected(state, event string) error {
	return fmt.Errorf("%w: state %q, event %q", ErrTransitionRejected, state, event)
}

package agent

import "errors"

var (
	// ErrInvalidAgentType is returned for a policy or learning-rule name
	// that is not registered.
	ErrInvalidAgentType = errors.New("invalid agent type")
	// ErrTooManyCapabilities is returned when a capability slot that is
	// already filled is asked to take another.
	ErrTooManyCapabilities = errors.New("cannot add more capabilities")
)

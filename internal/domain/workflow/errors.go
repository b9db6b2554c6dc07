package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a status transition is not allowed
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnauthorized is returned when the actor lacks the role required at
	// the current approval stage
	ErrUnauthorized = errors.New("actor not authorized for approval stage")

	// ErrValidation is returned when required transition input is missing
	ErrValidation = errors.New("validation failed")

	// ErrUnknownCategory is returned when a category has no registered
	// approval workflow; the registry is exhaustive over the closed enum,
	// so hitting this is a programming error
	ErrUnknownCategory = errors.New("unknown task category")
)

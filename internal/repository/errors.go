package repository

import "errors"

var (
	// ErrTaskNotFound is returned when no task exists for the given key
	ErrTaskNotFound = errors.New("task not found")

	// ErrItemNotFound is returned when a checklist item does not exist
	ErrItemNotFound = errors.New("checklist item not found")

	// ErrDuplicateTask is returned when an insert collides with the
	// generator dedup constraint on (batch_id, name_key, period_key).
	// Callers treat it as "already exists, skip", never as fatal.
	ErrDuplicateTask = errors.New("duplicate task for batch and period")
)

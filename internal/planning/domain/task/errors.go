package task

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyID indicates the task id is empty.
	ErrEmptyID = errors.New("task id cannot be empty")

	// ErrEmptyTitle indicates the task title is empty.
	ErrEmptyTitle = errors.New("task title cannot be empty")

	// ErrInvalidStatus indicates an unrecognized status value.
	ErrInvalidStatus = errors.New("invalid status value")

	// ErrInvalidTransition indicates a status change not permitted by the
	// lifecycle state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNegativeEstimate indicates a negative estimated duration.
	ErrNegativeEstimate = errors.New("estimated minutes cannot be negative")

	// ErrInvalidWeight indicates a non-positive task weight.
	ErrInvalidWeight = errors.New("task weight must be positive")

	// ErrSelfDependency indicates a task depending on itself.
	ErrSelfDependency = errors.New("task cannot depend on itself")

	// ErrTaskNotFound indicates the requested task was not found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrDuplicateTask indicates two snapshot tasks share an id.
	ErrDuplicateTask = errors.New("duplicate task id in snapshot")

	// ErrUnknownDependency indicates a depends_on reference to a task that
	// is not part of the snapshot.
	ErrUnknownDependency = errors.New("dependency references unknown task")
)

// InvalidTransitionError reports a rejected status change with the exact
// states involved. It unwraps to ErrInvalidTransition.
type InvalidTransitionError struct {
	TaskID string
	From   Status
	To     Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("task %s: invalid status transition %s → %s", e.TaskID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

package task

import "strings"

// Status represents the task lifecycle state.
type Status int

const (
	StatusBlocked Status = iota
	StatusTodo
	StatusDoing
	StatusReview
	StatusDone
)

var statusNames = map[Status]string{
	StatusBlocked: "blocked",
	StatusTodo:    "todo",
	StatusDoing:   "doing",
	StatusReview:  "review",
	StatusDone:    "done",
}

var statusValues = map[string]Status{
	"blocked": StatusBlocked,
	"todo":    StatusTodo,
	"doing":   StatusDoing,
	"review":  StatusReview,
	"done":    StatusDone,
}

// ParseStatus creates a Status from a string.
func ParseStatus(s string) (Status, error) {
	status, ok := statusValues[strings.ToLower(s)]
	if !ok {
		return StatusBlocked, ErrInvalidStatus
	}
	return status, nil
}

// String returns the string representation of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsValid returns true if the status is a valid value.
func (s Status) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}

// IsTerminal returns true for the done state.
func (s Status) IsTerminal() bool {
	return s == StatusDone
}

// The lifecycle is linear: blocked → todo → doing → review → done.
// Blocked is re-entered only through Reopen or AddDependency, and done is
// left only through Reopen; neither is an ordinary transition.
var allowedTransitions = map[Status]Status{
	StatusBlocked: StatusTodo,
	StatusTodo:    StatusDoing,
	StatusDoing:   StatusReview,
	StatusReview:  StatusDone,
}

// CanTransition reports whether from → to is a permitted ordinary
// transition.
func CanTransition(from, to Status) bool {
	next, ok := allowedTransitions[from]
	return ok && next == to
}

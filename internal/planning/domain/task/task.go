// Package task holds the task aggregate, its lifecycle state machine, and
// the snapshot contract the planning engine computes over.
package task

import (
	"slices"
	"strings"
	"time"
)

// Task represents a unit of coursework with dependencies on other tasks.
// IDs are stable, human-assigned slugs (e.g. "MATH221-SYLLABUS").
type Task struct {
	id         string
	course     string
	title      string
	status     Status
	dueAt      *time.Time
	estMinutes int
	weight     float64
	category   string
	anchor     bool
	dependsOn  []string
	createdAt  time.Time
	updatedAt  time.Time
}

// New creates a new task in the todo state.
func New(id, course, title string) (*Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptyID
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	now := time.Now().UTC()
	return &Task{
		id:        id,
		course:    strings.TrimSpace(course),
		title:     title,
		status:    StatusTodo,
		weight:    1.0,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// RehydrateParams carries persisted state back into a Task.
type RehydrateParams struct {
	ID         string
	Course     string
	Title      string
	Status     Status
	DueAt      *time.Time
	EstMinutes int
	Weight     float64
	Category   string
	Anchor     bool
	DependsOn  []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Rehydrate recreates a task from persisted state, bypassing lifecycle
// rules but not basic validity.
func Rehydrate(p RehydrateParams) (*Task, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, ErrEmptyID
	}
	if !p.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if p.EstMinutes < 0 {
		return nil, ErrNegativeEstimate
	}
	if p.Weight <= 0 {
		return nil, ErrInvalidWeight
	}

	deps := slices.Clone(p.DependsOn)
	slices.Sort(deps)
	deps = slices.Compact(deps)
	if slices.Contains(deps, p.ID) {
		return nil, ErrSelfDependency
	}

	return &Task{
		id:         p.ID,
		course:     p.Course,
		title:      p.Title,
		status:     p.Status,
		dueAt:      p.DueAt,
		estMinutes: p.EstMinutes,
		weight:     p.Weight,
		category:   p.Category,
		anchor:     p.Anchor,
		dependsOn:  deps,
		createdAt:  p.CreatedAt,
		updatedAt:  p.UpdatedAt,
	}, nil
}

// Getters

func (t *Task) ID() string           { return t.id }
func (t *Task) Course() string       { return t.course }
func (t *Task) Title() string        { return t.title }
func (t *Task) Status() Status       { return t.status }
func (t *Task) DueAt() *time.Time    { return t.dueAt }
func (t *Task) EstMinutes() int      { return t.estMinutes }
func (t *Task) Weight() float64      { return t.weight }
func (t *Task) Category() string     { return t.category }
func (t *Task) Anchor() bool         { return t.anchor }
func (t *Task) CreatedAt() time.Time { return t.createdAt }
func (t *Task) UpdatedAt() time.Time { return t.updatedAt }
func (t *Task) IsDone() bool         { return t.status == StatusDone }

// DependsOn returns the sorted dependency ids.
func (t *Task) DependsOn() []string {
	return slices.Clone(t.dependsOn)
}

// HasDependency reports whether id is a direct dependency.
func (t *Task) HasDependency(id string) bool {
	_, found := slices.BinarySearch(t.dependsOn, id)
	return found
}

// SetTitle updates the task title.
func (t *Task) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	t.title = title
	t.touch()
	return nil
}

// SetDueAt updates the due date. Nil clears it.
func (t *Task) SetDueAt(dueAt *time.Time) {
	t.dueAt = dueAt
	t.touch()
}

// SetEstimate updates the estimated minutes.
func (t *Task) SetEstimate(minutes int) error {
	if minutes < 0 {
		return ErrNegativeEstimate
	}
	t.estMinutes = minutes
	t.touch()
	return nil
}

// SetWeight updates the task weight used for cycle break suggestions.
func (t *Task) SetWeight(weight float64) error {
	if weight <= 0 {
		return ErrInvalidWeight
	}
	t.weight = weight
	t.touch()
	return nil
}

// SetCategory updates the scoring category.
func (t *Task) SetCategory(category string) {
	t.category = strings.TrimSpace(category)
	t.touch()
}

// SetAnchor flags or unflags the task for fixed elevated priority.
func (t *Task) SetAnchor(anchor bool) {
	t.anchor = anchor
	t.touch()
}

// Transition applies an ordinary lifecycle transition. Anything outside
// the linear blocked → todo → doing → review → done order is rejected
// with an InvalidTransitionError and no mutation.
func (t *Task) Transition(to Status) error {
	if !to.IsValid() {
		return ErrInvalidStatus
	}
	if !CanTransition(t.status, to) {
		return &InvalidTransitionError{TaskID: t.id, From: t.status, To: to}
	}
	t.status = to
	t.touch()
	return nil
}

// Reopen moves a done task back to todo. This is the only path out of
// done; a plain Transition(StatusTodo) on a done task is rejected.
func (t *Task) Reopen() error {
	if t.status != StatusDone {
		return &InvalidTransitionError{TaskID: t.id, From: t.status, To: StatusTodo}
	}
	t.status = StatusTodo
	t.touch()
	return nil
}

// AddDependency records a dependency edge and re-blocks the task. This is
// one of the two sanctioned ways a task re-enters blocked.
func (t *Task) AddDependency(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyID
	}
	if id == t.id {
		return ErrSelfDependency
	}
	if t.HasDependency(id) {
		return nil // Idempotent
	}
	t.dependsOn = append(t.dependsOn, id)
	slices.Sort(t.dependsOn)
	if t.status != StatusDone {
		t.status = StatusBlocked
	}
	t.touch()
	return nil
}

// RemoveDependency drops a dependency edge. It does not change status;
// unblocking is the graph analyzer's call, not the aggregate's.
func (t *Task) RemoveDependency(id string) {
	i, found := slices.BinarySearch(t.dependsOn, id)
	if !found {
		return
	}
	t.dependsOn = slices.Delete(t.dependsOn, i, i+1)
	t.touch()
}

func (t *Task) touch() {
	t.updatedAt = time.Now().UTC()
}

package task

import (
	"fmt"
	"slices"
	"time"
)

// Snapshot is a point-in-time, immutable view of the task set. The engine
// computes over exactly one snapshot per refresh; it never re-reads the
// store mid-computation, so repeated runs over the same snapshot and
// configuration are bit-identical.
type Snapshot struct {
	takenAt time.Time
	tasks   []*Task
	byID    map[string]*Task
}

// NewSnapshot builds a snapshot from a task collection. Tasks are ordered
// by id so that downstream iteration is deterministic. Duplicate ids and
// dangling depends_on references are rejected at construction.
func NewSnapshot(takenAt time.Time, tasks []*Task) (*Snapshot, error) {
	sorted := slices.Clone(tasks)
	slices.SortFunc(sorted, func(a, b *Task) int {
		if a.ID() < b.ID() {
			return -1
		}
		if a.ID() > b.ID() {
			return 1
		}
		return 0
	})

	byID := make(map[string]*Task, len(sorted))
	for _, t := range sorted {
		if _, exists := byID[t.ID()]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTask, t.ID())
		}
		byID[t.ID()] = t
	}

	for _, t := range sorted {
		for _, dep := range t.DependsOn() {
			if _, ok := byID[dep]; !ok {
				return nil, fmt.Errorf("%w: %s depends on %s", ErrUnknownDependency, t.ID(), dep)
			}
		}
	}

	return &Snapshot{
		takenAt: takenAt.UTC(),
		tasks:   sorted,
		byID:    byID,
	}, nil
}

// TakenAt returns the instant the snapshot was read. Urgency decay is
// computed against this time, never time.Now.
func (s *Snapshot) TakenAt() time.Time { return s.takenAt }

// Len returns the number of tasks in the snapshot.
func (s *Snapshot) Len() int { return len(s.tasks) }

// Tasks returns the tasks in id order.
func (s *Snapshot) Tasks() []*Task {
	return slices.Clone(s.tasks)
}

// Get returns a task by id.
func (s *Snapshot) Get(id string) (*Task, bool) {
	t, ok := s.byID[id]
	return t, ok
}

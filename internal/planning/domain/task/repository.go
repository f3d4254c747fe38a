package task

import "context"

// Repository is the task store contract. The engine only ever reads one
// immutable snapshot per refresh; the write methods exist for the CLI's
// lifecycle operations and are never called from inside a refresh.
type Repository interface {
	// Snapshot reads the full task set as one immutable snapshot.
	Snapshot(ctx context.Context) (*Snapshot, error)

	// FindByID retrieves a single task.
	FindByID(ctx context.Context, id string) (*Task, error)

	// Save persists a task (insert or update).
	Save(ctx context.Context, t *Task) error
}

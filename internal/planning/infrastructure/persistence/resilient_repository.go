package persistence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
)

// ResilientTaskRepository wraps a task repository with a circuit
// breaker. A store that keeps failing is given time to recover instead
// of being hammered by every refresh; while the breaker is open, calls
// fail fast with gobreaker.ErrOpenState.
type ResilientTaskRepository struct {
	inner   task.Repository
	breaker *gobreaker.CircuitBreaker[any]
}

// NewResilientTaskRepository wraps the repository. The breaker opens
// after five consecutive failures and probes again after 30 seconds.
func NewResilientTaskRepository(inner task.Repository, logger *slog.Logger) *ResilientTaskRepository {
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        "task-store",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("task store circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		// A miss is a valid answer, not a store failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, task.ErrTaskNotFound)
		},
	}

	return &ResilientTaskRepository{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// Snapshot reads a snapshot through the breaker.
func (r *ResilientTaskRepository) Snapshot(ctx context.Context) (*task.Snapshot, error) {
	result, err := r.breaker.Execute(func() (any, error) {
		return r.inner.Snapshot(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(*task.Snapshot), nil
}

// FindByID retrieves a task through the breaker.
func (r *ResilientTaskRepository) FindByID(ctx context.Context, id string) (*task.Task, error) {
	result, err := r.breaker.Execute(func() (any, error) {
		return r.inner.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*task.Task), nil
}

// Save persists a task through the breaker.
func (r *ResilientTaskRepository) Save(ctx context.Context, t *task.Task) error {
	_, err := r.breaker.Execute(func() (any, error) {
		return nil, r.inner.Save(ctx, t)
	})
	return err
}

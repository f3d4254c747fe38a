package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
)

// TransitionTaskCommand moves a task to a new lifecycle status.
type TransitionTaskCommand struct {
	TaskID string
	To     task.Status
}

// TransitionTaskHandler applies ordinary lifecycle transitions. The
// aggregate enforces the linear order; the handler only loads and saves.
type TransitionTaskHandler struct {
	repo   task.Repository
	logger *slog.Logger
}

// NewTransitionTaskHandler creates the handler.
func NewTransitionTaskHandler(repo task.Repository, logger *slog.Logger) *TransitionTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransitionTaskHandler{repo: repo, logger: logger}
}

// Handle executes the transition.
func (h *TransitionTaskHandler) Handle(ctx context.Context, cmd TransitionTaskCommand) error {
	t, err := h.repo.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}

	from := t.Status()
	if err := t.Transition(cmd.To); err != nil {
		return err
	}
	if err := h.repo.Save(ctx, t); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	h.logger.Info("task transitioned",
		"task_id", t.ID(),
		"from", from.String(),
		"to", cmd.To.String(),
	)
	return nil
}

// ReopenTaskCommand moves a done task back to todo.
type ReopenTaskCommand struct {
	TaskID string
}

// ReopenTaskHandler is the only path out of done. Reopening does not
// cascade: dependents already marked done stay done.
type ReopenTaskHandler struct {
	repo   task.Repository
	logger *slog.Logger
}

// NewReopenTaskHandler creates the handler.
func NewReopenTaskHandler(repo task.Repository, logger *slog.Logger) *ReopenTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReopenTaskHandler{repo: repo, logger: logger}
}

// Handle executes the reopen.
func (h *ReopenTaskHandler) Handle(ctx context.Context, cmd ReopenTaskCommand) error {
	t, err := h.repo.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}
	if err := t.Reopen(); err != nil {
		return err
	}
	if err := h.repo.Save(ctx, t); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	h.logger.Info("task reopened", "task_id", t.ID())
	return nil
}

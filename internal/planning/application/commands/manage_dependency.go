package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
)

// AddDependencyCommand records a dependency edge from TaskID to
// DependsOnID.
type AddDependencyCommand struct {
	TaskID      string
	DependsOnID string
}

// RemoveDependencyCommand drops a dependency edge.
type RemoveDependencyCommand struct {
	TaskID      string
	DependsOnID string
}

// DependencyHandler manages dependency edges. Edges may only reference
// existing tasks; the handler verifies the target before saving so a
// snapshot never carries a dangling reference.
type DependencyHandler struct {
	repo   task.Repository
	logger *slog.Logger
}

// NewDependencyHandler creates the handler.
func NewDependencyHandler(repo task.Repository, logger *slog.Logger) *DependencyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DependencyHandler{repo: repo, logger: logger}
}

// HandleAdd records the edge and re-blocks the task unless it is done.
func (h *DependencyHandler) HandleAdd(ctx context.Context, cmd AddDependencyCommand) error {
	if _, err := h.repo.FindByID(ctx, cmd.DependsOnID); err != nil {
		return fmt.Errorf("dependency target %q: %w", cmd.DependsOnID, err)
	}

	t, err := h.repo.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}
	if err := t.AddDependency(cmd.DependsOnID); err != nil {
		return err
	}
	if err := h.repo.Save(ctx, t); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	h.logger.Info("dependency added",
		"task_id", t.ID(),
		"depends_on", cmd.DependsOnID,
		"status", t.Status().String(),
	)
	return nil
}

// HandleRemove drops the edge. Status is untouched; whether the task is
// now actionable is the graph analyzer's call on the next refresh.
func (h *DependencyHandler) HandleRemove(ctx context.Context, cmd RemoveDependencyCommand) error {
	t, err := h.repo.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}
	t.RemoveDependency(cmd.DependsOnID)
	if err := h.repo.Save(ctx, t); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	h.logger.Info("dependency removed",
		"task_id", t.ID(),
		"depends_on", cmd.DependsOnID,
	)
	return nil
}

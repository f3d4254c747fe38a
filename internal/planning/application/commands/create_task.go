package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
)

// CreateTaskCommand registers a new task.
type CreateTaskCommand struct {
	ID         string
	Course     string
	Title      string
	DueAt      *time.Time
	EstMinutes int
	Weight     float64
	Category   string
	Anchor     bool
	DependsOn  []string
}

// CreateTaskHandler creates tasks. Dependency targets must already
// exist; tasks created with dependencies start blocked.
type CreateTaskHandler struct {
	repo   task.Repository
	logger *slog.Logger
}

// NewCreateTaskHandler creates the handler.
func NewCreateTaskHandler(repo task.Repository, logger *slog.Logger) *CreateTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateTaskHandler{repo: repo, logger: logger}
}

// Handle creates and persists the task.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*task.Task, error) {
	if _, err := h.repo.FindByID(ctx, cmd.ID); err == nil {
		return nil, fmt.Errorf("%w: %s", task.ErrDuplicateTask, cmd.ID)
	} else if !errors.Is(err, task.ErrTaskNotFound) {
		return nil, fmt.Errorf("failed to check for existing task: %w", err)
	}

	t, err := task.New(cmd.ID, cmd.Course, cmd.Title)
	if err != nil {
		return nil, err
	}
	t.SetDueAt(cmd.DueAt)
	t.SetCategory(cmd.Category)
	t.SetAnchor(cmd.Anchor)
	if cmd.EstMinutes > 0 {
		if err := t.SetEstimate(cmd.EstMinutes); err != nil {
			return nil, err
		}
	}
	if cmd.Weight > 0 {
		if err := t.SetWeight(cmd.Weight); err != nil {
			return nil, err
		}
	}
	for _, dep := range cmd.DependsOn {
		if _, err := h.repo.FindByID(ctx, dep); err != nil {
			return nil, fmt.Errorf("dependency target %q: %w", dep, err)
		}
		if err := t.AddDependency(dep); err != nil {
			return nil, err
		}
	}

	if err := h.repo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	h.logger.Info("task created",
		"task_id", t.ID(),
		"course", t.Course(),
		"status", t.Status().String(),
	)
	return t, nil
}

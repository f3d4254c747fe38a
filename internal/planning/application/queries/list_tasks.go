package queries

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jjohnson-47/nowqueue/internal/planning/domain/graph"
	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
)

// ListTasksQuery filters the task listing. Zero values mean no filter.
type ListTasksQuery struct {
	Course string
	Status string
}

// TaskRow is one line of the listing, annotated with graph facts.
type TaskRow struct {
	TaskID       string     `json:"task_id"`
	Course       string     `json:"course"`
	Title        string     `json:"title"`
	Status       string     `json:"status"`
	DueAt        *time.Time `json:"due_at,omitempty"`
	EstMinutes   int        `json:"est_minutes"`
	ChainHead    bool       `json:"chain_head"`
	UnblockCount int        `json:"unblock_count"`
	OnCycle      bool       `json:"on_cycle"`
}

// ListTasksHandler lists tasks in id order with graph annotations.
type ListTasksHandler struct {
	repo   task.Repository
	logger *slog.Logger
}

// NewListTasksHandler creates the handler.
func NewListTasksHandler(repo task.Repository, logger *slog.Logger) *ListTasksHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListTasksHandler{repo: repo, logger: logger}
}

// Handle returns the filtered listing.
func (h *ListTasksHandler) Handle(ctx context.Context, q ListTasksQuery) ([]TaskRow, error) {
	if q.Status != "" {
		if _, err := task.ParseStatus(q.Status); err != nil {
			return nil, err
		}
	}

	snap, err := h.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	analysis := graph.Analyze(snap)

	rows := make([]TaskRow, 0, snap.Len())
	for _, t := range snap.Tasks() {
		if q.Course != "" && t.Course() != q.Course {
			continue
		}
		if q.Status != "" && t.Status().String() != q.Status {
			continue
		}
		rows = append(rows, TaskRow{
			TaskID:       t.ID(),
			Course:       t.Course(),
			Title:        t.Title(),
			Status:       t.Status().String(),
			DueAt:        t.DueAt(),
			EstMinutes:   t.EstMinutes(),
			ChainHead:    analysis.IsChainHead(t.ID()),
			UnblockCount: analysis.UnblockCount(t.ID()),
			OnCycle:      analysis.OnCycle(t.ID()),
		})
	}
	return rows, nil
}

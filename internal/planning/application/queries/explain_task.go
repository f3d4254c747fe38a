// Package queries holds the planning read-side: score explanations,
// graph health, and task listings.
package queries

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jjohnson-47/nowqueue/internal/planning/application/services"
	"github.com/jjohnson-47/nowqueue/internal/planning/domain/graph"
	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
)

// ExplainTaskQuery asks for the full scoring breakdown of one task.
type ExplainTaskQuery struct {
	TaskID string
}

// TaskExplanation is everything the engine knows about one task's
// standing: the factor breakdown plus the graph facts, and the minimal
// set of completions that would make the task actionable.
type TaskExplanation struct {
	TaskID       string               `json:"task_id"`
	Course       string               `json:"course"`
	Title        string               `json:"title"`
	Status       string               `json:"status"`
	Score        services.ScoreRecord `json:"score"`
	ChainHead    bool                 `json:"chain_head"`
	UnblockCount int                  `json:"unblock_count"`
	Depth        int                  `json:"depth"`
	OnCycle      bool                 `json:"on_cycle"`
	Cut          graph.Cut            `json:"unblocking_cut"`
}

// ExplainTaskHandler computes explanations against a fresh snapshot.
type ExplainTaskHandler struct {
	repo    task.Repository
	scoring *services.ScoringEngine
	logger  *slog.Logger
}

// NewExplainTaskHandler creates the handler.
func NewExplainTaskHandler(repo task.Repository, scoring *services.ScoringEngine, logger *slog.Logger) *ExplainTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExplainTaskHandler{repo: repo, scoring: scoring, logger: logger}
}

// Handle returns the explanation, or task.ErrTaskNotFound for an unknown
// id.
func (h *ExplainTaskHandler) Handle(ctx context.Context, q ExplainTaskQuery) (*TaskExplanation, error) {
	snap, err := h.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	t, ok := snap.Get(q.TaskID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", task.ErrTaskNotFound, q.TaskID)
	}

	analysis := graph.Analyze(snap)
	cut, err := analysis.UnblockingCut(q.TaskID)
	if err != nil {
		return nil, err
	}

	return &TaskExplanation{
		TaskID:       t.ID(),
		Course:       t.Course(),
		Title:        t.Title(),
		Status:       t.Status().String(),
		Score:        h.scoring.Explain(t, analysis, snap.TakenAt()),
		ChainHead:    analysis.IsChainHead(t.ID()),
		UnblockCount: analysis.UnblockCount(t.ID()),
		Depth:        analysis.Depth(t.ID()),
		OnCycle:      analysis.OnCycle(t.ID()),
		Cut:          cut,
	}, nil
}

package queries

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jjohnson-47/nowqueue/internal/planning/domain/graph"
	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
)

// GraphHealth reports whether the dependency graph is a DAG, and if not,
// one concrete cycle plus the cheapest edge to remove.
type GraphHealth struct {
	DAGOK           bool        `json:"dag_ok"`
	TaskCount       int         `json:"task_count"`
	ChainHeads      int         `json:"chain_heads"`
	CyclePath       []string    `json:"cycle_path,omitempty"`
	BreakSuggestion *graph.Edge `json:"break_suggestion,omitempty"`
}

// GraphHealthHandler analyzes the current snapshot's graph.
type GraphHealthHandler struct {
	repo   task.Repository
	logger *slog.Logger
}

// NewGraphHealthHandler creates the handler.
func NewGraphHealthHandler(repo task.Repository, logger *slog.Logger) *GraphHealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphHealthHandler{repo: repo, logger: logger}
}

// Handle returns the graph health report.
func (h *GraphHealthHandler) Handle(ctx context.Context) (*GraphHealth, error) {
	snap, err := h.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	analysis := graph.Analyze(snap)
	health := &GraphHealth{
		DAGOK:     analysis.DAGOK(),
		TaskCount: snap.Len(),
	}
	for _, t := range snap.Tasks() {
		if analysis.IsChainHead(t.ID()) {
			health.ChainHeads++
		}
	}
	if cycle := analysis.Cycle(); cycle != nil {
		health.CyclePath = cycle.Path
		health.BreakSuggestion = &cycle.Break
	}
	return health, nil
}

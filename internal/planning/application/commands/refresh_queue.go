// Package commands holds the planning write-side: queue refreshes and
// task lifecycle changes.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jjohnson-47/nowqueue/internal/planning/application/services"
	"github.com/jjohnson-47/nowqueue/internal/planning/domain/graph"
	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
	"github.com/jjohnson-47/nowqueue/internal/shared/infrastructure/eventbus"
	"github.com/jjohnson-47/nowqueue/pkg/observability"
)

// RoutingKeyQueueRefreshed is the event routing key for queue refreshes.
const RoutingKeyQueueRefreshed = "planning.queue.refreshed"

// RefreshQueueCommand requests a Now Queue rebuild. Zero values fall
// back to the configured defaults; Courses narrows the candidate pool
// when non-empty.
type RefreshQueueCommand struct {
	TimeboxMinutes int
	K              int
	MinCourses     int
	Courses        []string
}

// QueueItem is one member of the published Now Queue.
type QueueItem struct {
	TaskID       string            `json:"task_id"`
	Course       string            `json:"course"`
	Title        string            `json:"title"`
	Status       string            `json:"status"`
	Score        float64           `json:"score"`
	EstMinutes   int               `json:"est_minutes"`
	UnblockCount int               `json:"unblock_count"`
	Reason       string            `json:"reason"`
	Factors      []services.Factor `json:"factors"`
}

// NowQueue is one refresh result: the selected tasks plus the graph
// health facts the selection was computed under.
type NowQueue struct {
	ID                uuid.UUID   `json:"id"`
	GeneratedAt       time.Time   `json:"generated_at"`
	Phase             string      `json:"phase"`
	Items             []QueueItem `json:"items"`
	TotalMinutes      int         `json:"total_minutes"`
	TotalScore        float64     `json:"total_score"`
	Strategy          string      `json:"strategy"`
	RelaxedMinCourses bool        `json:"relaxed_min_courses"`
	DAGOK             bool        `json:"dag_ok"`
	CyclePath         []string    `json:"cycle_path,omitempty"`
}

// QueueCache stores the latest queue for out-of-process readers. Cache
// trouble never fails a refresh.
type QueueCache interface {
	Put(ctx context.Context, queue *NowQueue) error
}

// RefreshDefaults are the configured fallbacks for zero-valued command
// fields.
type RefreshDefaults struct {
	TimeboxMinutes int
	K              int
	MinK           int
	MinCourses     int
}

// RefreshQueueHandler rebuilds the Now Queue from a fresh snapshot:
// analyze the graph, score the actionable tasks, select under the
// timebox, publish, cache. Each refresh is a full recomputation; nothing
// is carried over from the previous queue.
type RefreshQueueHandler struct {
	repo      task.Repository
	scoring   *services.ScoringEngine
	selector  *services.QueueSelector
	holder    *QueueHolder
	publisher eventbus.Publisher
	cache     QueueCache
	defaults  RefreshDefaults
	logger    *slog.Logger
	metrics   observability.Metrics
}

// NewRefreshQueueHandler creates the handler. Publisher and cache may be
// nil; both paths are best-effort.
func NewRefreshQueueHandler(
	repo task.Repository,
	scoring *services.ScoringEngine,
	selector *services.QueueSelector,
	holder *QueueHolder,
	publisher eventbus.Publisher,
	cache QueueCache,
	defaults RefreshDefaults,
	logger *slog.Logger,
	metrics observability.Metrics,
) *RefreshQueueHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &RefreshQueueHandler{
		repo:      repo,
		scoring:   scoring,
		selector:  selector,
		holder:    holder,
		publisher: publisher,
		cache:     cache,
		defaults:  defaults,
		logger:    logger,
		metrics:   metrics,
	}
}

// Handle executes the refresh pipeline and returns the new queue. The
// previous queue stays current until the new one is fully built.
func (h *RefreshQueueHandler) Handle(ctx context.Context, cmd RefreshQueueCommand) (*NowQueue, error) {
	defer observability.TimeOperation(h.metrics, h.logger, "planning.refresh")()

	snap, err := h.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	analysis := graph.Analyze(snap)
	candidates := h.collectCandidates(snap, analysis, cmd.Courses)
	req := h.request(cmd)

	selection := h.selector.Select(ctx, candidates, req)
	queue := h.buildQueue(selection, analysis, snap.TakenAt())

	if ctx.Err() != nil {
		// A refresh canceled mid-flight must not replace the live queue.
		return nil, ctx.Err()
	}
	if h.holder != nil {
		h.holder.Store(queue)
	}

	h.metrics.Counter("planning.refreshes", 1, observability.T("strategy", queue.Strategy))
	h.logger.Info("now queue refreshed",
		"queue_id", queue.ID,
		"items", len(queue.Items),
		"total_minutes", queue.TotalMinutes,
		"strategy", queue.Strategy,
		"dag_ok", queue.DAGOK,
	)

	h.announce(ctx, queue)
	return queue, nil
}

// collectCandidates scores every eligible task: chain-heads that are
// not done, optionally narrowed to the requested courses. Eligibility
// follows the graph, not the status label: a task still marked blocked
// whose last dependency has since completed is a chain-head and enters
// the pool.
func (h *RefreshQueueHandler) collectCandidates(
	snap *task.Snapshot,
	analysis *graph.Analysis,
	courses []string,
) []services.Candidate {
	wanted := make(map[string]struct{}, len(courses))
	for _, c := range courses {
		wanted[c] = struct{}{}
	}

	var candidates []services.Candidate
	for _, t := range snap.Tasks() {
		if t.IsDone() || !analysis.IsChainHead(t.ID()) {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[t.Course()]; !ok {
				continue
			}
		}
		candidates = append(candidates, services.Candidate{
			Task:         t,
			Score:        h.scoring.Score(t, analysis, snap.TakenAt()),
			UnblockCount: analysis.UnblockCount(t.ID()),
			ChainHead:    true,
		})
	}
	return candidates
}

func (h *RefreshQueueHandler) request(cmd RefreshQueueCommand) services.SelectionRequest {
	req := services.SelectionRequest{
		TimeboxMinutes: cmd.TimeboxMinutes,
		K:              cmd.K,
		MinK:           h.defaults.MinK,
		MinCourses:     cmd.MinCourses,
	}
	if req.TimeboxMinutes <= 0 {
		req.TimeboxMinutes = h.defaults.TimeboxMinutes
	}
	if req.K <= 0 {
		req.K = h.defaults.K
	}
	if req.MinCourses <= 0 {
		req.MinCourses = h.defaults.MinCourses
	}
	return req
}

func (h *RefreshQueueHandler) buildQueue(
	selection *services.Selection,
	analysis *graph.Analysis,
	generatedAt time.Time,
) *NowQueue {
	items := make([]QueueItem, 0, len(selection.Tasks))
	for _, st := range selection.Tasks {
		items = append(items, QueueItem{
			TaskID:       st.Task.ID(),
			Course:       st.Task.Course(),
			Title:        st.Task.Title(),
			Status:       st.Task.Status().String(),
			Score:        st.Score.Total,
			EstMinutes:   st.Task.EstMinutes(),
			UnblockCount: st.UnblockCount,
			Reason:       st.Reason,
			Factors:      st.Score.Factors,
		})
	}

	queue := &NowQueue{
		ID:                uuid.New(),
		GeneratedAt:       generatedAt,
		Phase:             h.scoring.Config().Phase,
		Items:             items,
		TotalMinutes:      selection.TotalMinutes,
		TotalScore:        selection.TotalScore,
		Strategy:          selection.Strategy,
		RelaxedMinCourses: selection.RelaxedMinCourses,
		DAGOK:             analysis.DAGOK(),
	}
	if cycle := analysis.Cycle(); cycle != nil {
		queue.CyclePath = cycle.Path
	}
	return queue
}

// announce publishes the refresh event and updates the queue cache.
// Both are best-effort: failures are logged and do not fail the refresh.
func (h *RefreshQueueHandler) announce(ctx context.Context, queue *NowQueue) {
	if h.publisher != nil {
		if err := eventbus.PublishEvent(ctx, h.publisher, RoutingKeyQueueRefreshed, queue); err != nil {
			h.logger.Warn("failed to publish queue refresh event",
				"queue_id", queue.ID,
				"error", err,
			)
		}
	}
	if h.cache != nil {
		if err := h.cache.Put(ctx, queue); err != nil {
			h.logger.Warn("failed to cache queue",
				"queue_id", queue.ID,
				"error", err,
			)
		}
	}
}

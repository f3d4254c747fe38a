package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jjohnson-47/nowqueue/pkg/observability"
)

// ErrSolverTimeout indicates the exact strategy exceeded its wall-clock
// budget. It never escapes the selector: the greedy fallback always
// produces a result.
var ErrSolverTimeout = errors.New("exact solver exceeded time budget")

// Selection reasons attached to queue members.
const (
	ReasonScore         = "score"
	ReasonDiversitySwap = "diversity swap"
)

// SelectionRequest carries the constraints for one queue selection.
type SelectionRequest struct {
	// TimeboxMinutes caps the summed estimates of the selection.
	TimeboxMinutes int

	// K caps the selection size. MinK is the configured size floor; no
	// solver reads it today, because scores are non-negative and both
	// strategies fill to capacity, which satisfies the floor implicitly.
	// It becomes load-bearing only if a negative-score factor is added.
	K    int
	MinK int

	// MinCourses is the diversity floor: at least this many distinct
	// courses, when achievable without breaking the hard constraints.
	MinCourses int
}

// SelectedTask is one queue member plus the constraint (if any) that
// determined its inclusion.
type SelectedTask struct {
	Candidate
	Reason string
}

// Selection is the result of one selector invocation.
type Selection struct {
	Tasks        []SelectedTask
	TotalMinutes int
	TotalScore   float64

	// Strategy names the solver that produced the result.
	Strategy string

	// RelaxedMinCourses is set when the diversity floor could not be met
	// and was dropped rather than failing the selection.
	RelaxedMinCourses bool
}

// Courses returns the number of distinct courses in the selection.
func (s *Selection) Courses() int {
	seen := map[string]struct{}{}
	for _, t := range s.Tasks {
		seen[t.Task.Course()] = struct{}{}
	}
	return len(seen)
}

// Solver is one selection strategy. Implementations must be
// deterministic: identical candidates and request produce identical
// selections.
type Solver interface {
	Name() string
	Solve(ctx context.Context, candidates []Candidate, req SelectionRequest) (*Selection, error)
}

// QueueSelector chooses the Now Queue. It runs the exact strategy under a
// hard wall-clock budget when enabled and falls back silently and
// deterministically to the greedy strategy on timeout or failure; the
// fallback is never visible as an error to the caller.
type QueueSelector struct {
	exact        Solver
	greedy       Solver
	exactEnabled bool
	timeout      time.Duration
	logger       *slog.Logger
	metrics      observability.Metrics
}

// NewQueueSelector creates a selector. The greedy solver is mandatory;
// exact may be nil, which disables the exact path entirely.
func NewQueueSelector(
	exact Solver,
	greedy Solver,
	exactEnabled bool,
	timeout time.Duration,
	logger *slog.Logger,
	metrics observability.Metrics,
) *QueueSelector {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &QueueSelector{
		exact:        exact,
		greedy:       greedy,
		exactEnabled: exactEnabled && exact != nil,
		timeout:      timeout,
		logger:       logger,
		metrics:      metrics,
	}
}

// Select runs the configured strategy over the candidates. It never
// fails: solver trouble degrades to the greedy result.
func (s *QueueSelector) Select(ctx context.Context, candidates []Candidate, req SelectionRequest) *Selection {
	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	SortCandidates(ordered)

	if s.exactEnabled {
		solveCtx, cancel := context.WithTimeout(ctx, s.timeout)
		selection, err := s.exact.Solve(solveCtx, ordered, req)
		cancel()
		if err == nil {
			s.metrics.Counter("selector.runs", 1, observability.T("strategy", s.exact.Name()))
			return selection
		}
		s.metrics.Counter("selector.fallbacks", 1)
		s.logger.Debug("exact solver unavailable, using greedy fallback",
			"error", err,
			"candidates", len(ordered),
		)
	}

	selection, err := s.greedy.Solve(ctx, ordered, req)
	if err != nil {
		// The greedy solver cannot fail on valid input; guard anyway.
		s.logger.Error("greedy solver failed", "error", err)
		return &Selection{Strategy: s.greedy.Name()}
	}
	s.metrics.Counter("selector.runs", 1, observability.T("strategy", s.greedy.Name()))
	return selection
}

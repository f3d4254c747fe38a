package services

import (
	"context"
)

// ExactSolver solves the 0/1 selection problem to optimality by
// depth-first branch and bound over the rank-ordered candidates. Include
// branches are explored first, so among equal-score optima the solver
// keeps the first, greedy-like one; results are fully deterministic. The
// search honors the context deadline and returns ErrSolverTimeout with no
// partial solution when the budget is exhausted.
type ExactSolver struct{}

// NewExactSolver creates the exact strategy.
func NewExactSolver() *ExactSolver { return &ExactSolver{} }

func (s *ExactSolver) Name() string { return "exact" }

// Solve expects candidates already ordered by CompareCandidates. The
// diversity floor is applied as a hard constraint first; if no selection
// can meet it, the search reruns without it and the result carries the
// relaxed-constraint flag. Members the floor forced into the selection
// carry the diversity-swap reason instead of the score reason.
func (s *ExactSolver) Solve(ctx context.Context, candidates []Candidate, req SelectionRequest) (*Selection, error) {
	needed := req.MinCourses
	if distinct := distinctCourses(candidates); needed > distinct {
		needed = distinct
	}

	best, err := s.search(ctx, candidates, req, needed)
	if err != nil {
		return nil, err
	}

	relaxed := false
	if best == nil && needed > 0 {
		best, err = s.search(ctx, candidates, req, 0)
		if err != nil {
			return nil, err
		}
		relaxed = true
	}

	// Members that the diversity floor forced in are the ones absent from
	// the unconstrained optimum.
	floorDriven := map[int]bool{}
	if needed > 0 && !relaxed && len(best) > 0 {
		free, err := s.search(ctx, candidates, req, 0)
		if err != nil {
			return nil, err
		}
		inFree := make(map[int]bool, len(free))
		for _, i := range free {
			inFree[i] = true
		}
		for _, i := range best {
			if !inFree[i] {
				floorDriven[i] = true
			}
		}
	}

	selection := &Selection{Strategy: s.Name()}
	selection.RelaxedMinCourses = relaxed || req.MinCourses > distinctCourses(candidates)
	if req.MinCourses == 0 {
		selection.RelaxedMinCourses = false
	}
	for _, i := range best {
		c := candidates[i]
		reason := ReasonScore
		if floorDriven[i] {
			reason = ReasonDiversitySwap
		}
		selection.Tasks = append(selection.Tasks, SelectedTask{Candidate: c, Reason: reason})
		selection.TotalMinutes += c.Task.EstMinutes()
		selection.TotalScore += c.Score.Total
	}
	if len(candidates) == 0 {
		selection.RelaxedMinCourses = false
	}
	return selection, nil
}

// search runs the branch and bound. It returns the optimal index set, or
// nil when no selection satisfies the diversity floor.
func (s *ExactSolver) search(ctx context.Context, candidates []Candidate, req SelectionRequest, minCourses int) ([]int, error) {
	n := len(candidates)

	// suffix[i] is the maximum score attainable from candidates[i:],
	// ignoring constraints; it upper-bounds any completion of a partial
	// selection and drives the prune.
	suffix := make([]float64, n+1)
	for i := n - 1; i >= 0; i-- {
		suffix[i] = suffix[i+1] + candidates[i].Score.Total
	}

	var (
		bestSet   []int
		bestScore float64
		haveBest  bool
		current   []int
		timedOut  bool
	)

	var visit func(idx int, minutes int, score float64)
	visit = func(idx int, minutes int, score float64) {
		if timedOut {
			return
		}
		if ctx.Err() != nil {
			timedOut = true
			return
		}
		if haveBest && score+suffix[idx] <= bestScore {
			return
		}
		if idx == n {
			if courseCount(candidates, current) < minCourses {
				return
			}
			if !haveBest || score > bestScore {
				bestScore = score
				bestSet = append([]int(nil), current...)
				haveBest = true
			}
			return
		}

		c := candidates[idx]
		if len(current) < req.K && minutes+c.Task.EstMinutes() <= req.TimeboxMinutes {
			current = append(current, idx)
			visit(idx+1, minutes+c.Task.EstMinutes(), score+c.Score.Total)
			current = current[:len(current)-1]
		}
		visit(idx+1, minutes, score)
	}

	visit(0, 0, 0)

	if timedOut {
		return nil, ErrSolverTimeout
	}
	if !haveBest {
		return nil, nil
	}
	return bestSet, nil
}

func courseCount(candidates []Candidate, set []int) int {
	seen := map[string]struct{}{}
	for _, i := range set {
		seen[candidates[i].Task.Course()] = struct{}{}
	}
	return len(seen)
}

func distinctCourses(candidates []Candidate) int {
	seen := map[string]struct{}{}
	for _, c := range candidates {
		seen[c.Task.Course()] = struct{}{}
	}
	return len(seen)
}

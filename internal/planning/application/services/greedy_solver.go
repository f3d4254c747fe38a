package services

import (
	"context"
	"slices"
)

// GreedySolver selects by the ranking order, adding candidates while the
// capacity and cardinality constraints hold, then runs one bounded
// diversity-repair pass. It is deterministic and cannot time out.
type GreedySolver struct{}

// NewGreedySolver creates the heuristic strategy.
func NewGreedySolver() *GreedySolver { return &GreedySolver{} }

func (s *GreedySolver) Name() string { return "greedy" }

// Solve expects candidates already ordered by CompareCandidates.
func (s *GreedySolver) Solve(_ context.Context, candidates []Candidate, req SelectionRequest) (*Selection, error) {
	selection := &Selection{Strategy: s.Name()}

	taken := make([]bool, len(candidates))
	for i, c := range candidates {
		if len(selection.Tasks) >= req.K {
			break
		}
		if selection.TotalMinutes+c.Task.EstMinutes() > req.TimeboxMinutes {
			continue
		}
		taken[i] = true
		selection.Tasks = append(selection.Tasks, SelectedTask{Candidate: c, Reason: ReasonScore})
		selection.TotalMinutes += c.Task.EstMinutes()
		selection.TotalScore += c.Score.Total
	}

	s.repairDiversity(selection, candidates, taken, req)

	if req.MinCourses > 0 && selection.Courses() < req.MinCourses {
		selection.RelaxedMinCourses = true
	}

	return selection, nil
}

// repairDiversity swaps the lowest-scoring member of an over-represented
// course for the best candidate of an unrepresented course, while the
// capacity and cardinality constraints still hold. The pass is bounded
// by the diversity deficit; it never loops.
func (s *GreedySolver) repairDiversity(selection *Selection, candidates []Candidate, taken []bool, req SelectionRequest) {
	for pass := 0; pass < req.MinCourses && selection.Courses() < req.MinCourses; pass++ {
		represented := map[string]int{}
		for _, t := range selection.Tasks {
			represented[t.Task.Course()]++
		}

		// Lowest-scoring member whose course keeps a representative after
		// removal. Tasks slice is rank-ordered, so scan from the back.
		out := -1
		for i := len(selection.Tasks) - 1; i >= 0; i-- {
			if represented[selection.Tasks[i].Task.Course()] > 1 {
				out = i
				break
			}
		}
		if out == -1 {
			return
		}

		// Best-ranked candidate from a course not yet represented that
		// fits in the freed capacity.
		freed := req.TimeboxMinutes - selection.TotalMinutes + selection.Tasks[out].Task.EstMinutes()
		in := -1
		for i, c := range candidates {
			if taken[i] {
				continue
			}
			if _, ok := represented[c.Task.Course()]; ok {
				continue
			}
			if c.Task.EstMinutes() <= freed {
				in = i
				break
			}
		}
		if in == -1 {
			return
		}

		removed := selection.Tasks[out]
		selection.Tasks = slices.Delete(selection.Tasks, out, out+1)
		selection.TotalMinutes -= removed.Task.EstMinutes()
		selection.TotalScore -= removed.Score.Total

		taken[in] = true
		added := SelectedTask{Candidate: candidates[in], Reason: ReasonDiversitySwap}
		selection.Tasks = append(selection.Tasks, added)
		selection.TotalMinutes += added.Task.EstMinutes()
		selection.TotalScore += added.Score.Total

		slices.SortFunc(selection.Tasks, func(a, b SelectedTask) int {
			return CompareCandidates(a.Candidate, b.Candidate)
		})
	}
}

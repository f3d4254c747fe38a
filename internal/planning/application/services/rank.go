package services

import (
	"slices"
	"time"

	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
)

// Candidate is a scored, actionable task offered to the queue selector.
type Candidate struct {
	Task         *task.Task
	Score        ScoreRecord
	UnblockCount int
	ChainHead    bool
}

// CompareCandidates is the total, deterministic ranking order used
// wherever candidates are ranked: higher score first, then higher
// unblock count, then chain-heads, then earlier due date (nil last),
// then lexicographically smaller id.
func CompareCandidates(a, b Candidate) int {
	switch {
	case a.Score.Total > b.Score.Total:
		return -1
	case a.Score.Total < b.Score.Total:
		return 1
	}
	switch {
	case a.UnblockCount > b.UnblockCount:
		return -1
	case a.UnblockCount < b.UnblockCount:
		return 1
	}
	if a.ChainHead != b.ChainHead {
		if a.ChainHead {
			return -1
		}
		return 1
	}
	if c := compareDue(a.Task.DueAt(), b.Task.DueAt()); c != 0 {
		return c
	}
	switch {
	case a.Task.ID() < b.Task.ID():
		return -1
	case a.Task.ID() > b.Task.ID():
		return 1
	}
	return 0
}

// SortCandidates orders candidates by CompareCandidates in place.
func SortCandidates(candidates []Candidate) {
	slices.SortFunc(candidates, CompareCandidates)
}

// compareDue orders earlier due dates first; tasks without a due date
// sort last.
func compareDue(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.Before(*b):
		return -1
	case b.Before(*a):
		return 1
	}
	return 0
}

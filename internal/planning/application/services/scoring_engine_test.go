package services_test

import (
	"math"
	"testing"
	"time"

	"github.com/jjohnson-47/nowqueue/internal/planning/application/services"
	"github.com/jjohnson-47/nowqueue/internal/planning/domain/graph"
	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)

type taskSpec struct {
	id       string
	status   task.Status
	due      *time.Time
	category string
	anchor   bool
	deps     []string
}

func analyzed(t *testing.T, specs []taskSpec) (*task.Snapshot, *graph.Analysis) {
	t.Helper()
	tasks := make([]*task.Task, 0, len(specs))
	for _, s := range specs {
		tk, err := task.Rehydrate(task.RehydrateParams{
			ID:        s.id,
			Course:    "MATH221",
			Title:     s.id,
			Status:    s.status,
			DueAt:     s.due,
			Weight:    1,
			Category:  s.category,
			Anchor:    s.anchor,
			DependsOn: s.deps,
			CreatedAt: fixedNow,
			UpdatedAt: fixedNow,
		})
		require.NoError(t, err)
		tasks = append(tasks, tk)
	}
	snap, err := task.NewSnapshot(fixedNow, tasks)
	require.NoError(t, err)
	return snap, graph.Analyze(snap)
}

func scoringConfig() services.ScoringConfig {
	cfg := services.DefaultScoringConfig()
	cfg.Phase = "in-term"
	cfg.WeightTable = map[string]map[string]float64{
		"in-term": {"grading": 3.0, "content": 1.5},
	}
	return cfg
}

func TestScore_FactorOrderStable(t *testing.T) {
	snap, analysis := analyzed(t, []taskSpec{{id: "T1", status: task.StatusTodo}})
	engine := services.NewScoringEngine(scoringConfig())

	tk, _ := snap.Get("T1")
	record := engine.Score(tk, analysis, snap.TakenAt())

	names := make([]string, 0, len(record.Factors))
	for _, f := range record.Factors {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		services.FactorUrgency,
		services.FactorImpact,
		services.FactorCategory,
		services.FactorAnchor,
		services.FactorChainHead,
	}, names)
}

func TestScore_Deterministic(t *testing.T) {
	due := fixedNow.Add(30 * time.Hour)
	snap, analysis := analyzed(t, []taskSpec{
		{id: "T1", status: task.StatusTodo, due: &due, category: "grading", anchor: true},
		{id: "T2", status: task.StatusBlocked, deps: []string{"T1"}},
	})
	engine := services.NewScoringEngine(scoringConfig())
	tk, _ := snap.Get("T1")

	first := engine.Score(tk, analysis, snap.TakenAt())
	second := engine.Score(tk, analysis, snap.TakenAt())

	// Bit-identical across calls on the same snapshot and configuration.
	assert.Equal(t, first, second)
}

func TestScore_ContributionsSumToTotal(t *testing.T) {
	due := fixedNow.Add(7 * time.Hour)
	snap, analysis := analyzed(t, []taskSpec{
		{id: "T1", status: task.StatusTodo, due: &due, category: "grading", anchor: true},
		{id: "T2", status: task.StatusBlocked, deps: []string{"T1"}},
		{id: "T3", status: task.StatusBlocked, deps: []string{"T2"}},
	})
	engine := services.NewScoringEngine(scoringConfig())

	for _, tk := range snap.Tasks() {
		record := engine.Explain(tk, analysis, snap.TakenAt())
		sum := 0.0
		for _, f := range record.Factors {
			sum += f.Contribution
		}
		assert.InDelta(t, record.Total, sum, 1e-9, "task %s", tk.ID())
	}
}

func TestScore_UrgencyDecay(t *testing.T) {
	soon := fixedNow.Add(12 * time.Hour)
	later := fixedNow.Add(10 * 24 * time.Hour)
	overdue := fixedNow.Add(-time.Hour)

	snap, analysis := analyzed(t, []taskSpec{
		{id: "LATER", status: task.StatusTodo, due: &later},
		{id: "NONE", status: task.StatusTodo},
		{id: "OVERDUE", status: task.StatusTodo, due: &overdue},
		{id: "SOON", status: task.StatusTodo, due: &soon},
	})
	cfg := scoringConfig()
	engine := services.NewScoringEngine(cfg)

	score := func(id string) services.ScoreRecord {
		tk, ok := snap.Get(id)
		require.True(t, ok)
		return engine.Score(tk, analysis, snap.TakenAt())
	}

	urgency := func(r services.ScoreRecord) float64 {
		for _, f := range r.Factors {
			if f.Name == services.FactorUrgency {
				return f.Contribution
			}
		}
		t.Fatalf("no urgency factor in %v", r)
		return 0
	}

	assert.Equal(t, cfg.UrgencyMax, urgency(score("OVERDUE")), "overdue gets the full boost")
	assert.Zero(t, urgency(score("NONE")), "no due date means no urgency")
	assert.Greater(t, urgency(score("SOON")), urgency(score("LATER")))

	// Exactly one half-life out decays to half the boost.
	half := fixedNow.Add(time.Duration(cfg.UrgencyHalfLifeHours) * time.Hour)
	snapHalf, analysisHalf := analyzed(t, []taskSpec{{id: "HALF", status: task.StatusTodo, due: &half}})
	tk, _ := snapHalf.Get("HALF")
	record := engine.Score(tk, analysisHalf, snapHalf.TakenAt())
	assert.InDelta(t, cfg.UrgencyMax/2, urgency(record), 1e-9)
}

func TestScore_ImpactMonotoneAndBounded(t *testing.T) {
	// T1 unblocks a chain of three; U1 unblocks one; S has no dependents.
	snap, analysis := analyzed(t, []taskSpec{
		{id: "S", status: task.StatusTodo},
		{id: "T1", status: task.StatusTodo},
		{id: "T2", status: task.StatusBlocked, deps: []string{"T1"}},
		{id: "T3", status: task.StatusBlocked, deps: []string{"T2"}},
		{id: "T4", status: task.StatusBlocked, deps: []string{"T3"}},
		{id: "U1", status: task.StatusTodo},
		{id: "U2", status: task.StatusBlocked, deps: []string{"U1"}},
	})
	cfg := scoringConfig()
	engine := services.NewScoringEngine(cfg)

	total := func(id string) float64 {
		tk, _ := snap.Get(id)
		return engine.Score(tk, analysis, snap.TakenAt()).Total
	}

	require.Equal(t, 3, analysis.UnblockCount("T1"))
	require.Equal(t, 1, analysis.UnblockCount("U1"))
	require.Equal(t, 0, analysis.UnblockCount("S"))

	// Higher unblock count, all else fixed, never scores lower.
	assert.Greater(t, total("T1"), total("U1"))
	assert.Greater(t, total("U1"), total("S"))

	// Impact stays under its bound no matter the count.
	tk, _ := snap.Get("T1")
	record := engine.Score(tk, analysis, snap.TakenAt())
	for _, f := range record.Factors {
		if f.Name == services.FactorImpact {
			assert.Less(t, f.Contribution, cfg.ImpactMax)
			assert.False(t, math.IsNaN(f.Contribution))
		}
	}
}

func TestScore_CategoryWeightLookup(t *testing.T) {
	snap, analysis := analyzed(t, []taskSpec{
		{id: "G", status: task.StatusTodo, category: "grading"},
		{id: "X", status: task.StatusTodo, category: "unlisted"},
	})
	engine := services.NewScoringEngine(scoringConfig())

	category := func(id string) float64 {
		tk, _ := snap.Get(id)
		for _, f := range engine.Score(tk, analysis, snap.TakenAt()).Factors {
			if f.Name == services.FactorCategory {
				return f.Contribution
			}
		}
		return math.NaN()
	}

	assert.Equal(t, 3.0, category("G"))
	assert.Zero(t, category("X"), "unknown category contributes zero")
}

func TestScore_Bonuses(t *testing.T) {
	snap, analysis := analyzed(t, []taskSpec{
		{id: "A", status: task.StatusTodo, anchor: true},
		{id: "B", status: task.StatusTodo},
		{id: "C", status: task.StatusBlocked, deps: []string{"A"}},
	})
	cfg := scoringConfig()
	engine := services.NewScoringEngine(cfg)

	total := func(id string) float64 {
		tk, _ := snap.Get(id)
		return engine.Score(tk, analysis, snap.TakenAt()).Total
	}

	// A carries the anchor bonus plus chain-head bonus plus impact from C.
	// B is a plain chain-head. C is blocked: no chain-head bonus.
	assert.Greater(t, total("A"), total("B"))
	assert.Greater(t, total("B"), total("C"))
}

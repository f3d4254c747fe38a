package services

import (
	"math"
	"time"

	"github.com/jjohnson-47/nowqueue/internal/planning/domain/graph"
	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
)

// Factor names, in the stable order they appear in every explanation.
const (
	FactorUrgency   = "urgency"
	FactorImpact    = "impact"
	FactorCategory  = "category"
	FactorAnchor    = "anchor"
	FactorChainHead = "chain_head"
)

// ScoringConfig tunes how graph facts and task attributes combine into a
// score. Phase and the weight table come from configuration; the engine
// never computes them.
type ScoringConfig struct {
	// UrgencyMax is the urgency contribution of an overdue task; tasks
	// due later decay toward zero with the configured half-life.
	UrgencyMax           float64
	UrgencyHalfLifeHours float64

	// ImpactMax bounds the unblock-impact contribution; saturation sets
	// how quickly the bound is approached (contribution at
	// unblock_count == saturation is half the bound).
	ImpactMax        float64
	ImpactSaturation float64

	AnchorBonus    float64
	ChainHeadBonus float64

	// Phase selects the weight-table row. Opaque to the engine.
	Phase       string
	WeightTable map[string]map[string]float64
}

// DefaultScoringConfig returns a production-friendly configuration.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		UrgencyMax:           5.0,
		UrgencyHalfLifeHours: 48.0,
		ImpactMax:            4.0,
		ImpactSaturation:     3.0,
		AnchorBonus:          2.5,
		ChainHeadBonus:       1.0,
		Phase:                "in-term",
		WeightTable: map[string]map[string]float64{
			"in-term": {"grading": 3.0, "content": 1.5, "communication": 1.5},
		},
	}
}

// Factor is one contribution in a score breakdown.
type Factor struct {
	Name         string  `json:"name"`
	Raw          float64 `json:"raw"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// ScoreRecord is the ephemeral scoring result for one task against one
// snapshot and one configuration. Contributions sum to Total exactly.
type ScoreRecord struct {
	TaskID  string   `json:"task_id"`
	Total   float64  `json:"total"`
	Factors []Factor `json:"factors"`
}

// ScoringEngine computes deterministic, explainable scores from graph
// facts and task attributes. It holds no mutable state; scoring the same
// snapshot with the same configuration is bit-identical.
type ScoringEngine struct {
	config ScoringConfig
}

// NewScoringEngine creates a new engine with the given configuration.
func NewScoringEngine(cfg ScoringConfig) *ScoringEngine {
	return &ScoringEngine{config: cfg}
}

// Config returns the active configuration.
func (e *ScoringEngine) Config() ScoringConfig { return e.config }

// Score computes the score record for one task. asOf is the snapshot
// instant; due-date urgency decays relative to it, never to time.Now.
func (e *ScoringEngine) Score(t *task.Task, analysis *graph.Analysis, asOf time.Time) ScoreRecord {
	factors := make([]Factor, 0, 5)

	factors = append(factors, e.urgencyFactor(t, asOf))
	factors = append(factors, e.impactFactor(analysis.UnblockCount(t.ID())))
	factors = append(factors, e.categoryFactor(t))
	factors = append(factors, e.anchorFactor(t))
	factors = append(factors, e.chainHeadFactor(analysis.IsChainHead(t.ID())))

	total := 0.0
	for _, f := range factors {
		total += f.Contribution
	}

	return ScoreRecord{TaskID: t.ID(), Total: total, Factors: factors}
}

// Explain returns the ordered factor breakdown for one task. It is the
// same computation as Score; the record's contributions sum to its total
// within 1e-9 by construction.
func (e *ScoringEngine) Explain(t *task.Task, analysis *graph.Analysis, asOf time.Time) ScoreRecord {
	return e.Score(t, analysis, asOf)
}

func (e *ScoringEngine) urgencyFactor(t *task.Task, asOf time.Time) Factor {
	f := Factor{Name: FactorUrgency, Weight: e.config.UrgencyMax}
	if t.DueAt() == nil {
		return f
	}

	hoursLeft := t.DueAt().Sub(asOf).Hours()
	f.Raw = hoursLeft
	if hoursLeft <= 0 {
		f.Contribution = e.config.UrgencyMax
		return f
	}
	f.Contribution = e.config.UrgencyMax * math.Exp2(-hoursLeft/e.config.UrgencyHalfLifeHours)
	return f
}

func (e *ScoringEngine) impactFactor(unblockCount int) Factor {
	n := float64(unblockCount)
	return Factor{
		Name:         FactorImpact,
		Raw:          n,
		Weight:       e.config.ImpactMax,
		Contribution: e.config.ImpactMax * n / (n + e.config.ImpactSaturation),
	}
}

func (e *ScoringEngine) categoryFactor(t *task.Task) Factor {
	weight := 0.0
	if table, ok := e.config.WeightTable[e.config.Phase]; ok {
		weight = table[t.Category()]
	}
	return Factor{Name: FactorCategory, Raw: 1, Weight: weight, Contribution: weight}
}

func (e *ScoringEngine) anchorFactor(t *task.Task) Factor {
	f := Factor{Name: FactorAnchor, Weight: e.config.AnchorBonus}
	if t.Anchor() {
		f.Raw = 1
		f.Contribution = e.config.AnchorBonus
	}
	return f
}

func (e *ScoringEngine) chainHeadFactor(isChainHead bool) Factor {
	f := Factor{Name: FactorChainHead, Weight: e.config.ChainHeadBonus}
	if isChainHead {
		f.Raw = 1
		f.Contribution = e.config.ChainHeadBonus
	}
	return f
}

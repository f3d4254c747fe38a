package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoPhases indicates the weight profile declares no phases.
	ErrNoPhases = errors.New("weight profile declares no phases")

	// ErrUnknownPhase indicates the configured phase has no weight-table row.
	ErrUnknownPhase = errors.New("configured phase not present in weight profile")
)

// WeightProfile maps a calendar phase to a table of per-category score
// weights. The phase itself is supplied externally (calendar milestones);
// the engine treats it as an opaque key.
type WeightProfile struct {
	Phases map[string]map[string]float64 `yaml:"phases"`
}

// DefaultWeightProfile returns the built-in semester profile used when no
// profile file is configured.
func DefaultWeightProfile() WeightProfile {
	return WeightProfile{
		Phases: map[string]map[string]float64{
			"pre-launch": {
				"setup":          3.0,
				"content":        2.0,
				"communication":  1.5,
				"grading":        0.5,
				"administrative": 1.0,
			},
			"launch": {
				"setup":          2.0,
				"content":        1.5,
				"communication":  3.0,
				"grading":        1.0,
				"administrative": 1.0,
			},
			"in-term": {
				"setup":          0.5,
				"content":        1.5,
				"communication":  1.5,
				"grading":        3.0,
				"administrative": 1.0,
			},
		},
	}
}

// LoadWeightProfile reads and validates a weight profile from a YAML file.
func LoadWeightProfile(path string) (WeightProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WeightProfile{}, fmt.Errorf("read weight profile: %w", err)
	}

	var profile WeightProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return WeightProfile{}, fmt.Errorf("parse weight profile: %w", err)
	}

	if err := profile.Validate(); err != nil {
		return WeightProfile{}, err
	}
	return profile, nil
}

// Validate checks that the profile is usable: at least one phase, no empty
// names, finite weights.
func (p WeightProfile) Validate() error {
	if len(p.Phases) == 0 {
		return ErrNoPhases
	}
	for phase, table := range p.Phases {
		if phase == "" {
			return errors.New("weight profile contains an empty phase name")
		}
		for category, weight := range table {
			if category == "" {
				return fmt.Errorf("phase %q contains an empty category name", phase)
			}
			if math.IsNaN(weight) || math.IsInf(weight, 0) {
				return fmt.Errorf("phase %q category %q has non-finite weight", phase, category)
			}
		}
	}
	return nil
}

// Weight returns the configured weight for (phase, category). Missing
// entries contribute zero.
func (p WeightProfile) Weight(phase, category string) float64 {
	table, ok := p.Phases[phase]
	if !ok {
		return 0
	}
	return table[category]
}

// HasPhase reports whether the profile carries a row for the given phase.
func (p WeightProfile) HasPhase(phase string) bool {
	_, ok := p.Phases[phase]
	return ok
}

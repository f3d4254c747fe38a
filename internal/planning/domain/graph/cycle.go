package graph

import (
	"fmt"
	"strings"
)

// Edge is a directed dependency edge: From depends on To.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CycleError reports that the dependency graph is not acyclic. It carries
// the exact cycle path (rotation-stable, starting from the lowest id) and
// a suggested edge whose removal breaks the cycle. It is a reportable
// condition, not a crash: scoring proceeds for the acyclic remainder.
type CycleError struct {
	// Path lists the cycle in dependency order: Path[i] depends on
	// Path[i+1], and the last element depends on the first.
	Path []string

	// Break is the cycle edge with the lowest combined task weight.
	Break Edge
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s (suggest removing %s → %s)",
		strings.Join(e.Path, " → "), e.Break.From, e.Break.To)
}

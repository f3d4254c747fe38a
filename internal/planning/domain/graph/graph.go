// Package graph analyzes the task dependency graph: cycle detection,
// actionability (chain-heads), transitive unblock impact, and minimal
// unblocking cuts. The graph is held as integer indices into the
// snapshot's id-sorted task slice, so iteration order is deterministic.
package graph

import (
	"slices"

	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
)

// Cut is the minimal set of incomplete ancestors that must all complete
// before a task becomes a chain-head. Dependency semantics are
// conjunctive, so the minimal cut is exactly the not-done ancestor set.
type Cut struct {
	// Blockers lists the not-done ancestors in id order.
	Blockers []string `json:"blockers"`

	// Unreachable is set when an ancestor lies on a dependency cycle, in
	// which case no finite completion set unblocks the task.
	Unreachable bool `json:"unreachable"`
}

// Analysis holds the derived graph facts for one snapshot.
type Analysis struct {
	tasks      []*task.Task
	index      map[string]int
	deps       [][]int
	dependents [][]int
	onCycle    []bool
	chainHead  []bool
	unblock    []int
	depth      []int
	cycle      *CycleError
}

// Analyze builds the dependency graph for a snapshot and computes
// per-task facts. A detected cycle is recorded, its members flagged, and
// every remaining computation proceeds over the acyclic remainder.
func Analyze(snap *task.Snapshot) *Analysis {
	tasks := snap.Tasks()
	n := len(tasks)

	a := &Analysis{
		tasks:      tasks,
		index:      make(map[string]int, n),
		deps:       make([][]int, n),
		dependents: make([][]int, n),
		onCycle:    make([]bool, n),
		chainHead:  make([]bool, n),
		unblock:    make([]int, n),
		depth:      make([]int, n),
	}

	for i, t := range tasks {
		a.index[t.ID()] = i
	}
	for i, t := range tasks {
		for _, dep := range t.DependsOn() {
			j := a.index[dep]
			a.deps[i] = append(a.deps[i], j)
			a.dependents[j] = append(a.dependents[j], i)
		}
	}
	for i := range a.dependents {
		slices.Sort(a.dependents[i])
	}

	a.detectCycle()
	a.markCyclicComponents()
	a.computeChainHeads()
	a.computeUnblockCounts()
	a.computeDepths()

	return a
}

// DAGOK reports whether the graph is acyclic.
func (a *Analysis) DAGOK() bool { return a.cycle == nil }

// Cycle returns the detected cycle, or nil for an acyclic graph.
func (a *Analysis) Cycle() *CycleError { return a.cycle }

// IsChainHead reports whether every dependency of the task is done.
func (a *Analysis) IsChainHead(id string) bool {
	i, ok := a.index[id]
	return ok && a.chainHead[i]
}

// UnblockCount returns the number of distinct tasks that would newly
// become chain-heads if this task alone completed, applied transitively.
func (a *Analysis) UnblockCount(id string) int {
	i, ok := a.index[id]
	if !ok {
		return 0
	}
	return a.unblock[i]
}

// Depth returns the longest not-done dependency chain below the task.
// Chain-heads have depth 0; tasks on a cycle report -1.
func (a *Analysis) Depth(id string) int {
	i, ok := a.index[id]
	if !ok {
		return 0
	}
	return a.depth[i]
}

// OnCycle reports whether the task sits on a dependency cycle.
func (a *Analysis) OnCycle(id string) bool {
	i, ok := a.index[id]
	return ok && a.onCycle[i]
}

// UnblockingCut computes the minimal set of not-done ancestors that must
// all complete before the task becomes a chain-head. For a chain-head the
// cut is empty. If the ancestor set touches a cycle the cut is
// unreachable.
func (a *Analysis) UnblockingCut(id string) (Cut, error) {
	i, ok := a.index[id]
	if !ok {
		return Cut{}, task.ErrTaskNotFound
	}

	if a.onCycle[i] {
		return Cut{Unreachable: true}, nil
	}

	visited := make([]bool, len(a.tasks))
	var blockers []string
	unreachable := false

	var walk func(int)
	walk = func(v int) {
		for _, d := range a.deps[v] {
			if visited[d] {
				continue
			}
			visited[d] = true
			if a.onCycle[d] {
				unreachable = true
				continue
			}
			if !a.tasks[d].IsDone() {
				blockers = append(blockers, a.tasks[d].ID())
			}
			walk(d)
		}
	}
	walk(i)

	if unreachable {
		return Cut{Unreachable: true}, nil
	}
	slices.Sort(blockers)
	return Cut{Blockers: blockers}, nil
}

// detectCycle runs a depth-first search with an on-stack marker set and
// records the first cycle found, rotated to start at the lowest id.
func (a *Analysis) detectCycle() {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(a.tasks))
	var stack []int

	var visit func(int) []int
	visit = func(u int) []int {
		color[u] = gray
		stack = append(stack, u)
		for _, v := range a.deps[u] {
			switch color[v] {
			case gray:
				// Back edge: the cycle is the stack suffix starting at v.
				start := slices.Index(stack, v)
				return slices.Clone(stack[start:])
			case white:
				if cycle := visit(v); cycle != nil {
					return cycle
				}
			}
		}
		color[u] = black
		stack = stack[:len(stack)-1]
		return nil
	}

	for i := range a.tasks {
		if color[i] != white {
			continue
		}
		stack = stack[:0]
		if cycle := visit(i); cycle != nil {
			a.cycle = a.buildCycleError(cycle)
			return
		}
	}
}

// buildCycleError rotates the cycle to the lowest id and picks the break
// suggestion: the cycle edge whose endpoint tasks have the lowest
// combined weight, ties broken by from-id then to-id.
func (a *Analysis) buildCycleError(cycle []int) *CycleError {
	lowest := 0
	for i := 1; i < len(cycle); i++ {
		if a.tasks[cycle[i]].ID() < a.tasks[cycle[lowest]].ID() {
			lowest = i
		}
	}
	rotated := make([]int, 0, len(cycle))
	rotated = append(rotated, cycle[lowest:]...)
	rotated = append(rotated, cycle[:lowest]...)

	path := make([]string, len(rotated))
	for i, v := range rotated {
		path[i] = a.tasks[v].ID()
	}

	best := Edge{}
	bestWeight := 0.0
	for i, v := range rotated {
		w := rotated[(i+1)%len(rotated)]
		edge := Edge{From: a.tasks[v].ID(), To: a.tasks[w].ID()}
		weight := a.tasks[v].Weight() + a.tasks[w].Weight()
		if i == 0 || weight < bestWeight ||
			(weight == bestWeight && (edge.From < best.From ||
				(edge.From == best.From && edge.To < best.To))) {
			best = edge
			bestWeight = weight
		}
	}

	return &CycleError{Path: path, Break: best}
}

// markCyclicComponents flags every task inside a strongly connected
// component of size greater than one (Tarjan). The reported CycleError
// carries one concrete cycle; the flags cover all of them.
func (a *Analysis) markCyclicComponents() {
	n := len(a.tasks)
	indexOf := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range indexOf {
		indexOf[i] = -1
	}
	var stack []int
	counter := 0

	var strongconnect func(int)
	strongconnect = func(v int) {
		indexOf[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range a.deps[v] {
			if indexOf[w] == -1 {
				strongconnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indexOf[w])
			}
		}

		if lowlink[v] == indexOf[v] {
			var component []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				component = append(component, w)
				if w == v {
					break
				}
			}
			if len(component) > 1 {
				for _, w := range component {
					a.onCycle[w] = true
				}
			}
		}
	}

	for i := range a.tasks {
		if indexOf[i] == -1 {
			strongconnect(i)
		}
	}
}

func (a *Analysis) computeChainHeads() {
	for i := range a.tasks {
		if a.onCycle[i] {
			continue
		}
		head := true
		for _, d := range a.deps[i] {
			if !a.tasks[d].IsDone() {
				head = false
				break
			}
		}
		a.chainHead[i] = head
	}
}

// computeUnblockCounts simulates, for each not-done task, completing it
// alone: every dependent whose remaining blockers are all satisfied
// becomes a chain-head, is treated as done in turn, and the count closes
// transitively over the cascade.
func (a *Analysis) computeUnblockCounts() {
	for i, t := range a.tasks {
		if t.IsDone() || a.onCycle[i] {
			continue
		}
		a.unblock[i] = a.simulateCompletion(i)
	}
}

func (a *Analysis) simulateCompletion(start int) int {
	promoted := make([]bool, len(a.tasks))
	promoted[start] = true
	queue := []int{start}
	count := 0

	satisfied := func(u int) bool {
		for _, d := range a.deps[u] {
			if !a.tasks[d].IsDone() && !promoted[d] {
				return false
			}
		}
		return true
	}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, u := range a.dependents[v] {
			if promoted[u] || a.tasks[u].IsDone() || a.onCycle[u] {
				continue
			}
			if satisfied(u) {
				promoted[u] = true
				count++
				queue = append(queue, u)
			}
		}
	}
	return count
}

func (a *Analysis) computeDepths() {
	memo := make([]int, len(a.tasks))
	for i := range memo {
		memo[i] = -2 // unvisited
	}

	var depthOf func(int) int
	depthOf = func(i int) int {
		if memo[i] != -2 {
			return memo[i]
		}
		if a.onCycle[i] {
			memo[i] = -1
			return -1
		}
		longest := 0
		for _, d := range a.deps[i] {
			if a.tasks[d].IsDone() || a.onCycle[d] {
				continue
			}
			if below := depthOf(d); below+1 > longest {
				longest = below + 1
			}
		}
		memo[i] = longest
		return longest
	}

	for i := range a.tasks {
		a.depth[i] = depthOf(i)
	}
}

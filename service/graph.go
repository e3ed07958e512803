package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"loan-workout/domain"
)

// Key names an engine input or a derived metric.
type Key string

// node is one derived metric: its declared dependencies, a reader for the
// current value and an apply step that recomputes and stores it, reporting
// whether the stored value changed.
type node struct {
	key   Key
	deps  []Key
	read  func(s *state) any
	apply func(s *state) bool
}

func metricNode(key Key, deps []Key, field func(m *domain.DerivedMetrics) *float64, eval func(s *state) float64) node {
	return node{
		key:  key,
		deps: deps,
		read: func(s *state) any { return *field(&s.metrics) },
		apply: func(s *state) bool {
			value := eval(s)
			stored := field(&s.metrics)
			if sameFloat(*stored, value) {
				return false
			}
			*stored = value
			return true
		},
	}
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b
}

// graph holds the derived metrics in a topological order: every node comes
// after all of its dependencies.
type graph struct {
	order []node
	index map[Key]int
}

func newGraph(inputs []Key, nodes []node) (*graph, error) {
	known := make(map[Key]bool, len(inputs)+len(nodes))
	for _, k := range inputs {
		known[k] = true
	}
	byKey := make(map[Key]node, len(nodes))
	for _, n := range nodes {
		if _, dup := byKey[n.key]; dup || known[n.key] {
			return nil, fmt.Errorf("metric %q declared twice: %w", n.key, ErrInvalidInput)
		}
		byKey[n.key] = n
	}

	// Kahn's algorithm over derived-to-derived edges only; inputs are leaves.
	pending := make(map[Key]int, len(nodes))
	dependents := make(map[Key][]Key)
	for _, n := range nodes {
		pending[n.key] = 0
		for _, dep := range n.deps {
			if known[dep] {
				continue
			}
			if _, ok := byKey[dep]; !ok {
				return nil, fmt.Errorf("metric %q depends on %q: %w", n.key, dep, ErrUnknownDependency)
			}
			pending[n.key]++
			dependents[dep] = append(dependents[dep], n.key)
		}
	}

	var ready []Key
	for _, n := range nodes {
		if pending[n.key] == 0 {
			ready = append(ready, n.key)
		}
	}

	g := &graph{index: make(map[Key]int, len(nodes))}
	for len(ready) > 0 {
		k := ready[0]
		ready = ready[1:]
		g.index[k] = len(g.order)
		g.order = append(g.order, byKey[k])
		for _, d := range dependents[k] {
			pending[d]--
			if pending[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(g.order) != len(nodes) {
		var stuck []string
		for k, p := range pending {
			if p > 0 {
				stuck = append(stuck, string(k))
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w: %s", ErrCyclicDependency, strings.Join(stuck, ", "))
	}
	return g, nil
}

// propagate recomputes, in topological order, every node with a dirty
// dependency. A node whose value changes becomes dirty for the nodes after
// it, so each node runs at most once per pass and never sees a stale input.
func (g *graph) propagate(s *state, dirty map[Key]bool, all bool, visit func(n node, changed bool)) {
	for _, n := range g.order {
		if !all && !anyDirty(n.deps, dirty) {
			continue
		}
		changed := n.apply(s)
		if changed {
			dirty[n.key] = true
		}
		if visit != nil {
			visit(n, changed)
		}
	}
}

func anyDirty(deps []Key, dirty map[Key]bool) bool {
	for _, d := range deps {
		if dirty[d] {
			return true
		}
	}
	return false
}

// keys lists derived metrics in evaluation order.
func (g *graph) keys() []Key {
	keys := make([]Key, len(g.order))
	for i, n := range g.order {
		keys[i] = n.key
	}
	return keys
}

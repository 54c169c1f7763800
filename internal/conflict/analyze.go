package conflict

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/confflow/internal/ir"
	"github.com/roach88/confflow/internal/rule"
)

// Warning is a finding that does not make a rule set inconsistent but is
// likely unintended.
type Warning struct {
	Path    []ir.Identifier `json:"path,omitempty"` // requirement cycle: [a, b, a]
	Message string          `json:"message"`
	Level   string          `json:"level"` // "warning" or "info"
}

// Analyze performs static analysis on a rule set.
//
// Two findings are reported:
//  1. Requirement cycles: RequiresAll triggers that transitively require
//     each other. Members of a cycle can only ever be selected together.
//     Reported at level "info" since this is often intended.
//  2. Dead triggers: a trigger that excludes something it also requires
//     can never be selected without violating a rule. Reported at level
//     "warning".
//
// Output is sorted so repeated runs produce identical reports.
func Analyze(rules []*rule.Rule) []Warning {
	warnings := []Warning{}

	graph := buildRequirementGraph(rules)
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 {
			warnings = append(warnings, cycleWarning(scc, graph))
		}
	}

	warnings = append(warnings, deadTriggers(rules)...)
	return warnings
}

// requirementGraph maps a trigger to the identifiers it requires, sorted.
type requirementGraph map[ir.Identifier][]ir.Identifier

func buildRequirementGraph(rules []*rule.Rule) requirementGraph {
	graph := make(requirementGraph)
	for _, r := range rules {
		if r.Kind() != rule.KindRequiresAll {
			continue
		}
		trigger, _ := r.Trigger()
		graph[trigger] = append(graph[trigger], r.Items()...)
		for _, item := range r.Items() {
			if _, ok := graph[item]; !ok {
				graph[item] = nil
			}
		}
	}
	for node, next := range graph {
		graph[node] = dedupe(ir.SortIdentifiers(next))
	}
	return graph
}

func dedupe(ids []ir.Identifier) []ir.Identifier {
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			out = append(out, id)
		}
	}
	return out
}

func (g requirementGraph) nodes() []ir.Identifier {
	nodes := make([]ir.Identifier, 0, len(g))
	for node := range g {
		nodes = append(nodes, node)
	}
	return ir.SortIdentifiers(nodes)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order and each SCC is returned sorted.
func tarjanSCC(graph requirementGraph) [][]ir.Identifier {
	var (
		index   = 0
		stack   []ir.Identifier
		indices = make(map[ir.Identifier]int)
		lowlink = make(map[ir.Identifier]int)
		onStack = make(map[ir.Identifier]bool)
		sccs    [][]ir.Identifier
	)

	var strongConnect func(ir.Identifier)
	strongConnect = func(v ir.Identifier) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []ir.Identifier
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, ir.SortIdentifiers(scc))
		}
	}

	for _, node := range graph.nodes() {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func cycleWarning(scc []ir.Identifier, graph requirementGraph) Warning {
	path := reconstructCyclePath(scc, graph)
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = string(id)
	}
	return Warning{
		Path: path,
		Message: fmt.Sprintf("requirement cycle %s: %s can only be selected together",
			strings.Join(parts, " → "), ir.FormatIdentifiers(scc)),
		Level: "info",
	}
}

// reconstructCyclePath returns the shortest closed walk from the SCC's
// first member back to itself, using only edges inside the SCC. Every
// member of an SCC lies on such a walk.
func reconstructCyclePath(scc []ir.Identifier, graph requirementGraph) []ir.Identifier {
	if len(scc) == 0 {
		return []ir.Identifier{}
	}

	members := make(map[ir.Identifier]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	parent := map[ir.Identifier]ir.Identifier{start: start}
	queue := []ir.Identifier{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range graph[current] {
			if !members[neighbor] {
				continue
			}
			if neighbor == start {
				var path []ir.Identifier
				for node := current; node != start; node = parent[node] {
					path = append(path, node)
				}
				path = append(path, start)
				slices.Reverse(path)
				return append(path, start)
			}
			if _, seen := parent[neighbor]; !seen {
				parent[neighbor] = current
				queue = append(queue, neighbor)
			}
		}
	}

	// Not strongly connected.
	return []ir.Identifier{start}
}

// deadTriggers reports triggers whose requirements and exclusions
// contradict each other.
func deadTriggers(rules []*rule.Rule) []Warning {
	excluded := make(map[ir.Identifier]map[ir.Identifier]bool)
	for _, r := range rules {
		if r.Kind() != rule.KindExcludes {
			continue
		}
		trigger, _ := r.Trigger()
		if excluded[trigger] == nil {
			excluded[trigger] = make(map[ir.Identifier]bool)
		}
		for _, item := range r.Items() {
			excluded[trigger][item] = true
		}
	}

	var warnings []Warning
	for _, r := range rules {
		trigger, ok := r.Trigger()
		if !ok || excluded[trigger] == nil {
			continue
		}
		ex := excluded[trigger]

		switch r.Kind() {
		case rule.KindRequiresAll:
			var clash []ir.Identifier
			for _, item := range r.Items() {
				if ex[item] {
					clash = append(clash, item)
				}
			}
			if len(clash) > 0 {
				warnings = append(warnings, Warning{
					Message: fmt.Sprintf("%s can never be selected: it requires and excludes %s",
						trigger, ir.FormatIdentifiers(clash)),
					Level: "warning",
				})
			}
		case rule.KindRequiresOneOf:
			allExcluded := true
			for _, item := range r.Items() {
				if !ex[item] {
					allExcluded = false
					break
				}
			}
			if allExcluded && r.Len() > 0 {
				warnings = append(warnings, Warning{
					Message: fmt.Sprintf("%s can never be selected: every option in %s is excluded",
						trigger, ir.FormatIdentifiers(r.Items())),
					Level: "warning",
				})
			}
		}
	}
	return warnings
}

// SPDX-License-Identifier: MPL-2.0

// Package dag orders the nodes of a directed graph so that every node follows
// the nodes it depends on. The build uses it to derive a load order for the
// files discovered by the dependency graph pass.
package dag

import (
	"fmt"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing an ordering.
	CycleError struct {
		// Nodes lists every node left with unsatisfied dependencies, in
		// insertion order. It includes the cycle members and anything that
		// depends on them.
		Nodes []string
	}

	// Graph is a directed graph keyed by string. An edge from A to B means
	// "A must come before B".
	Graph struct {
		// successors maps each node to the nodes that must follow it.
		successors map[string][]string
		// order tracks all nodes in insertion order for deterministic output.
		order []string
		seen  map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected among: %s", strings.Join(e.Nodes, ", "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		successors: make(map[string][]string),
		seen:       make(map[string]bool),
	}
}

// AddNode adds a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	if g.seen[name] {
		return
	}
	g.seen[name] = true
	g.order = append(g.order, name)
}

// AddEdge records that before must precede after. Both nodes are added if missing.
func (g *Graph) AddEdge(before, after string) {
	g.AddNode(before)
	g.AddNode(after)
	g.successors[before] = append(g.successors[before], after)
}

// AddDependency records that dependent requires dependency, i.e. the
// dependency is ordered first.
func (g *Graph) AddDependency(dependent, dependency string) {
	g.AddEdge(dependency, dependent)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// TopologicalSort returns an ordering using Kahn's algorithm, or a
// CycleError when none exists. Nodes that become ready at the same time keep
// their insertion order.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.order) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.order))
	for _, node := range g.order {
		inDegree[node] += 0
		for _, next := range g.successors[node] {
			inDegree[next]++
		}
	}

	queue := make([]string, 0, len(g.order))
	for _, node := range g.order {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := make([]string, 0, len(g.order))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, next := range g.successors[node] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(result) != len(g.order) {
		var stuck []string
		for _, node := range g.order {
			if inDegree[node] > 0 {
				stuck = append(stuck, node)
			}
		}
		return nil, &CycleError{Nodes: stuck}
	}

	return result, nil
}

// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestTopologicalSort_EmptyGraph(t *testing.T) {
	t.Parallel()
	order, err := New().TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != nil {
		t.Errorf("expected nil, got %v", order)
	}
}

func TestTopologicalSort_DependenciesFirst(t *testing.T) {
	t.Parallel()
	g := New()
	// main uses lib, lib uses util.
	g.AddNode("main")
	g.AddDependency("main", "lib")
	g.AddDependency("lib", "util")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"util", "lib", "main"}; !slices.Equal(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}
}

func TestTopologicalSort_DiamondKeepsInsertionOrder(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("A", "B")
	g.AddEdge("A", "C")
	g.AddEdge("B", "D")
	g.AddEdge("C", "D")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"A", "B", "C", "D"}; !slices.Equal(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}
	if g.Len() != 4 {
		t.Errorf("Len() = %d, want 4", g.Len())
	}
}

func TestTopologicalSort_DuplicateNodeIgnored(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddNode("A")
	g.AddNode("A")
	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
}

func TestTopologicalSort_Cycle(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddNode("entry")
	g.AddDependency("entry", "A")
	g.AddDependency("A", "B")
	g.AddDependency("B", "A")

	_, err := g.TopologicalSort()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if want := []string{"entry", "A", "B"}; !slices.Equal(cycleErr.Nodes, want) {
		t.Errorf("stuck nodes = %v, want %v", cycleErr.Nodes, want)
	}
	if cycleErr.Error() == "" {
		t.Error("empty error message")
	}
}

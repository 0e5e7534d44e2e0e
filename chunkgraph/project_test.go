/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package chunkgraph

import (
	"errors"
	"reflect"
	"testing"
)

// TestProjectDropsRedundantGrandparent builds a graph where "m" statically
// depends on sources owned by both "e" (the primary) and "p" (a chunk
// itself parented by e). Since e is already p's parent, it is dropped
// from m's parent list as transitively redundant.
func TestProjectDropsRedundantGrandparent(t *testing.T) {
	g := newGraph("e")
	e := g.ensureNode("e")
	e.Sources = []string{"e"}

	p := g.ensureNode("p")
	p.Sources = []string{"p"}
	g.addEdge("e", "p")

	m := g.ensureNode("m")
	m.Sources = []string{"m"}
	m.Deps = map[string]struct{}{"e": {}, "p": {}}
	g.addEdge("e", "m")

	dg, err := Project(g)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if got := dg.Parents("m"); !reflect.DeepEqual(got, []string{"p"}) {
		t.Errorf("Parents(m) = %v, want [p]", got)
	}
}

// TestProjectRejectsCycle builds a graph whose static dep sets, despite
// an acyclic load-order graph, project to a cyclic dependency graph,
// and asserts Project reports CyclicChunkGraph.
func TestProjectRejectsCycle(t *testing.T) {
	g := newGraph("a")
	a := g.ensureNode("a")
	a.Sources = []string{"a"}
	a.Deps = map[string]struct{}{"bsrc": {}}

	b := g.ensureNode("b")
	b.Sources = []string{"bsrc", "b"}
	b.Deps = map[string]struct{}{"a": {}}
	g.addEdge("a", "b")

	_, err := Project(g)
	if err == nil {
		t.Fatal("expected CyclicChunkGraph, got nil")
	}
	var cyclic *CyclicChunkGraph
	if !errors.As(err, &cyclic) {
		t.Fatalf("expected *CyclicChunkGraph, got %T: %v", err, err)
	}
}

func TestProjectEveryNodeDependsOnPrimary(t *testing.T) {
	g := newGraph("root")
	root := g.ensureNode("root")
	root.Sources = []string{"root"}

	child := g.ensureNode("child")
	child.Sources = []string{"child"}
	g.addEdge("root", "child")

	dg, err := Project(g)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if got := dg.Parents("child"); !reflect.DeepEqual(got, []string{"root"}) {
		t.Errorf("Parents(child) = %v, want [root]", got)
	}
	if got := dg.Parents("root"); len(got) != 0 {
		t.Errorf("Parents(root) = %v, want empty", got)
	}
}

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

import "sort"

// DepGraph is the dependency graph G_D: directed, edge A -> B meaning
// "B cannot load until A is loaded". It is built once, from a
// normalized Graph, and is immutable thereafter.
type DepGraph struct {
	primary string
	order   []string
	nodes   map[string]*Node
	parents map[string][]string // node -> sorted, deduplicated parent names
}

// Primary returns the name of the root node.
func (dg *DepGraph) Primary() string { return dg.primary }

// Nodes returns every node name in load-order-graph creation order.
func (dg *DepGraph) Nodes() []string { return append([]string(nil), dg.order...) }

// Node returns the node named name, if it exists.
func (dg *DepGraph) Node(name string) (*Node, bool) {
	n, ok := dg.nodes[name]
	return n, ok
}

// Parents returns the surviving (non-transitively-redundant) parents of
// name, sorted.
func (dg *DepGraph) Parents(name string) []string {
	return append([]string(nil), dg.parents[name]...)
}

// Project builds G_D from a normalized g (C8): every node depends on
// the primary entry, plus the owning chunk of every static dependency
// it reaches, with transitively redundant parents removed. Fails with
// CyclicChunkGraph if the result is not acyclic.
func Project(g *Graph) (*DepGraph, error) {
	sourceOwner := make(map[string]string)
	for _, name := range g.Nodes() {
		node, _ := g.Node(name)
		for _, s := range node.Sources {
			sourceOwner[s] = name
		}
	}

	candidates := make(map[string][]string)
	for _, name := range g.Nodes() {
		node, _ := g.Node(name)
		var cands []string
		add := func(p string) {
			if p == "" || p == name {
				return
			}
			cands = appendDistinct(cands, p)
		}
		if name != g.primary {
			add(g.primary)
		}
		for d := range node.Deps {
			if owner, ok := sourceOwner[d]; ok {
				add(owner)
			}
		}
		candidates[name] = cands
	}

	parents := make(map[string][]string, len(candidates))
	for name, cands := range candidates {
		var kept []string
		for _, par := range cands {
			redundant := false
			for _, other := range cands {
				if other == par {
					continue
				}
				if containsString(candidates[other], par) {
					redundant = true
					break
				}
			}
			if !redundant {
				kept = append(kept, par)
			}
		}
		sort.Strings(kept)
		parents[name] = kept
	}

	dg := &DepGraph{
		primary: g.primary,
		order:   g.Nodes(),
		nodes:   make(map[string]*Node, len(g.nodes)),
		parents: parents,
	}
	for _, name := range g.Nodes() {
		node, _ := g.Node(name)
		dg.nodes[name] = node
	}

	if cycle := dg.findCycle(); cycle != nil {
		return nil, &CyclicChunkGraph{Cycle: cycle}
	}
	return dg, nil
}

func (dg *DepGraph) childrenOf() map[string][]string {
	out := make(map[string][]string)
	for node, ps := range dg.parents {
		for _, p := range ps {
			out[p] = append(out[p], node)
		}
	}
	return out
}

const (
	colorWhite = 0
	colorGray  = 1
	colorBlack = 2
)

// findCycle returns a cycle (as a closed path of node names) if the
// parent relation is not acyclic, or nil if it is.
func (dg *DepGraph) findCycle() []string {
	children := dg.childrenOf()
	color := make(map[string]int, len(dg.order))
	var stack []string
	var cycle []string

	var dfs func(n string) bool
	dfs = func(n string) bool {
		color[n] = colorGray
		stack = append(stack, n)
		for _, c := range children[n] {
			if color[c] == colorGray {
				idx := indexOf(stack, c)
				cycle = append(append([]string(nil), stack[idx:]...), c)
				return true
			}
			if color[c] == colorWhite {
				if dfs(c) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = colorBlack
		return false
	}

	for _, n := range dg.order {
		if color[n] == colorWhite {
			if dfs(n) {
				return cycle
			}
		}
	}
	return nil
}

func indexOf(list []string, value string) int {
	for i, v := range list {
		if v == value {
			return i
		}
	}
	return -1
}

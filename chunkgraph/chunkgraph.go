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

// Package chunkgraph builds the load-order graph of chunks reachable
// from a set of entry points (C5), computes ancestor/LCA relationships
// over it (C6), normalizes it so every source is owned by exactly one
// chunk (C7), projects it into an acyclic dependency graph suitable for
// an optimizer's --chunk flag (C8), and emits that graph as a
// topologically sorted flag list (C9).
//
// Nodes are identified by name (an absolute path), not by pointer, and
// edges are stored as adjacency sets keyed by name rather than as
// pointer-linked graph nodes: an arena plus side tables, not a mutable
// node graph library.
package chunkgraph

import (
	"fmt"
	"sort"
)

// Node is a chunk in the load-order graph.
type Node struct {
	// Name is the node's identity and the file path of its entry file.
	Name string
	// Sources is the ordered, distinct set of source files owned by this
	// chunk. A valid node's Sources ends with Name.
	Sources []string
	// Deps is the full set of static dependencies the chunk's entry file
	// transitively pulls in, a superset of Sources used by the projector
	// to find each dependency's owning chunk.
	Deps map[string]struct{}
	// ChildChunks is the set of entry points this chunk dynamically
	// imports.
	ChildChunks map[string]struct{}
}

// EntryPoint is a named group of files from which dependency discovery
// begins.
type EntryPoint struct {
	Name  string
	Files []string
}

// ManualEntryPoint attaches Child as a chunk reachable from Parent even
// though nothing in the discovered graph dynamically imports it.
type ManualEntryPoint struct {
	Parent string
	Child  EntryPoint
}

// CyclicChunkGraph is returned when the projected dependency graph
// contains a cycle. It is fatal.
type CyclicChunkGraph struct {
	Cycle []string
}

func (e *CyclicChunkGraph) Error() string {
	return fmt.Sprintf("cyclic chunk graph: %v", e.Cycle)
}

// UnsortableChunks is returned when a topological sort of the
// dependency graph makes no progress in a full pass. Reaching this
// should be impossible if CyclicChunkGraph detection is correct.
type UnsortableChunks struct{}

func (e *UnsortableChunks) Error() string {
	return "chunk graph could not be topologically sorted"
}

// ChunkEntrypointMissing reports that, after normalization, a chunk's
// own entry file is not among its sources: some other chunk referenced
// it synchronously (via a static import, not a dynamic one), hoisting
// it away to a shared ancestor. Non-fatal for emission; the process
// exits with error status once this diagnostic is raised.
type ChunkEntrypointMissing struct {
	Name         string
	ReferencedBy []string
}

func (e *ChunkEntrypointMissing) Error() string {
	return fmt.Sprintf("chunk %s: entry file is not among its own sources (referenced synchronously by %v)", e.Name, e.ReferencedBy)
}

// Graph is the load-order graph G_L: directed, edge A -> B meaning
// "loading A causes B to become reachable via a dynamic import".
type Graph struct {
	primary string
	nodes   map[string]*Node
	order   []string // insertion order, for deterministic iteration
	edges   map[string]map[string]bool
	inEdges map[string]map[string]bool
}

func newGraph(primary string) *Graph {
	return &Graph{
		primary: primary,
		nodes:   make(map[string]*Node),
		edges:   make(map[string]map[string]bool),
		inEdges: make(map[string]map[string]bool),
	}
}

// Primary returns the name of the root node.
func (g *Graph) Primary() string { return g.primary }

// Node returns the node named name, if it exists.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns every node name in the order it was first created.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.order...)
}

// Children returns the names dynamically imported by name, sorted.
func (g *Graph) Children(name string) []string {
	return sortedKeys(g.edges[name])
}

// Parents returns the names that dynamically import name, sorted.
func (g *Graph) Parents(name string) []string {
	return sortedKeys(g.inEdges[name])
}

func (g *Graph) ensureNode(name string) *Node {
	if n, ok := g.nodes[name]; ok {
		return n
	}
	n := &Node{
		Name:        name,
		Deps:        make(map[string]struct{}),
		ChildChunks: make(map[string]struct{}),
	}
	g.nodes[name] = n
	g.order = append(g.order, name)
	return n
}

func (g *Graph) addEdge(parent, child string) {
	if g.edges[parent] == nil {
		g.edges[parent] = make(map[string]bool)
	}
	g.edges[parent][child] = true
	if g.inEdges[child] == nil {
		g.inEdges[child] = make(map[string]bool)
	}
	g.inEdges[child][parent] = true
}

func (g *Graph) hasEdgeEitherDirection(a, b string) bool {
	return g.edges[a][b] || g.edges[b][a]
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func appendDistinct(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

func removeString(list []string, value string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

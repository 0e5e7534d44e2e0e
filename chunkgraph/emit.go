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
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// NameStyle selects how DepGraph node names are mapped to the names
// that appear in the emitted chunk flags.
type NameStyle int

const (
	// NameStyleEntrypoint derives a chunk's name from its entry file's
	// project-relative path with the extension stripped.
	NameStyleEntrypoint NameStyle = iota
	// NameStyleNumbered names the primary entry "main" and every other
	// chunk "0", "1", "2", ... in emission order.
	NameStyleNumbered
)

// NameMapper assigns a stable, collision-free display name to each
// chunk node, per spec §6.
type NameMapper struct {
	style    NameStyle
	primary  string
	baseDir  string
	prefix   string
	next     int
	used     map[string]int
	assigned map[string]string
}

// NewNameMapper creates a NameMapper. baseDir anchors NameStyleEntrypoint's
// project-relative naming; it is ignored by NameStyleNumbered. prefix is
// prepended to every emitted name, including "main" and the numbered
// names.
func NewNameMapper(style NameStyle, primary, baseDir, prefix string) *NameMapper {
	return &NameMapper{
		style:    style,
		primary:  primary,
		baseDir:  baseDir,
		prefix:   prefix,
		used:     make(map[string]int),
		assigned: make(map[string]string),
	}
}

// Name returns the display name for node, assigning one on first call
// and caching it for subsequent calls with the same node.
func (m *NameMapper) Name(node string) string {
	if mapped, ok := m.assigned[node]; ok {
		return mapped
	}

	var base string
	switch m.style {
	case NameStyleNumbered:
		if node == m.primary {
			base = "main"
		} else {
			base = strconv.Itoa(m.next)
			m.next++
		}
	default:
		rel := node
		if m.baseDir != "" {
			if r, err := filepath.Rel(m.baseDir, node); err == nil {
				rel = r
			}
		}
		base = strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	}

	candidate := m.prefix + base
	final := candidate
	if n, exists := m.used[candidate]; exists {
		final = candidate + strconv.Itoa(n)
		m.used[candidate] = n + 1
	} else {
		m.used[candidate] = 1
	}
	m.assigned[node] = final
	return final
}

// EmitResult is the output of C9: the two flat lists described in spec
// §6, plus any ChunkEntrypointMissing diagnostics raised along the way.
// Chunk and JS are the only fields in the external JSON contract;
// EntrypointMissing is excluded from that contract (its diagnostics are
// reported separately) and is for the caller's own error handling.
type EmitResult struct {
	Chunk             []string                  `json:"chunk"`
	JS                []string                  `json:"js"`
	EntrypointMissing []*ChunkEntrypointMissing `json:"-"`
}

// Emit topologically sorts dg from its primary entry and produces the
// chunk flag list and the flattened source list (C9). mapper controls
// the display name for each chunk. A chunk whose own entry file is not
// among its sources yields a non-fatal ChunkEntrypointMissing
// diagnostic but is still emitted.
func Emit(dg *DepGraph, mapper *NameMapper) (*EmitResult, error) {
	order, err := topoSort(dg)
	if err != nil {
		return nil, err
	}

	result := &EmitResult{}
	for _, name := range order {
		node, _ := dg.Node(name)

		if !containsString(node.Sources, node.Name) {
			result.EntrypointMissing = append(result.EntrypointMissing, &ChunkEntrypointMissing{
				Name:         node.Name,
				ReferencedBy: referencingChunks(dg, node.Name, name),
			})
		}

		mappedName := mapper.Name(name)
		var mappedParents []string
		for _, p := range dg.Parents(name) {
			mappedParents = append(mappedParents, mapper.Name(p))
		}
		sort.Strings(mappedParents)

		line := fmt.Sprintf("%s:%d", mappedName, len(node.Sources))
		if name != dg.primary && len(mappedParents) > 0 {
			line += ":" + strings.Join(mappedParents, ",")
		}

		result.Chunk = append(result.Chunk, line)
		result.JS = append(result.JS, node.Sources...)
	}

	return result, nil
}

// referencingChunks returns the names (sorted) of every chunk other
// than skip whose static dependency set includes path: the synchronous
// referrers that explain why path's owning chunk lost its own entry
// file to a hoist.
func referencingChunks(dg *DepGraph, path, skip string) []string {
	var refs []string
	for _, name := range dg.Nodes() {
		if name == skip {
			continue
		}
		node, _ := dg.Node(name)
		if _, ok := node.Deps[path]; ok {
			refs = append(refs, name)
		}
	}
	sort.Strings(refs)
	return refs
}

// topoSort orders dg's nodes so that every node is emitted only after
// all of its parents have been. If a full pass makes no progress,
// returns UnsortableChunks: this should be unreachable given Project
// already rejects cyclic graphs.
func topoSort(dg *DepGraph) ([]string, error) {
	emitted := make(map[string]bool, len(dg.order))
	var order []string
	remaining := dg.Nodes()

	for len(remaining) > 0 {
		var next []string
		progressed := false
		for _, name := range remaining {
			ready := true
			for _, p := range dg.parents[name] {
				if !emitted[p] {
					ready = false
					break
				}
			}
			if ready {
				order = append(order, name)
				emitted[name] = true
				progressed = true
			} else {
				next = append(next, name)
			}
		}
		if !progressed {
			return nil, &UnsortableChunks{}
		}
		remaining = next
	}

	return order, nil
}

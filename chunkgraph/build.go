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
	"sort"

	"chunksplit.dev/chunksplit/walker"
)

type queueItem struct {
	name  string
	files []string
}

// Build constructs the load-order graph from entrypoints and
// manualEntrypoints (C5). hoistMap carries hoists from a previous
// normalization pass (4.7) and may be nil on a first build.
//
// The entry file walked for each node already returns a
// dependencies-first, entry-last source list (walker.FileDepInfo.Deps),
// so unlike the literal algorithm in spec §4.5 step 4, Build does not
// reverse each node's Sources at the end: reversing an already-correct
// order would invert it.
func Build(w *walker.Walker, entrypoints []EntryPoint, manualEntrypoints []ManualEntryPoint, hoistMap map[string][]string) (*Graph, error) {
	if len(entrypoints) == 0 {
		return nil, fmt.Errorf("chunkgraph: at least one entry point is required")
	}

	g := newGraph(entrypoints[0].Name)

	var queue []queueItem
	for i, ep := range entrypoints {
		g.ensureNode(ep.Name)
		if i > 0 && !g.hasEdgeEitherDirection(g.primary, ep.Name) {
			g.addEdge(g.primary, ep.Name)
		}
		queue = append(queue, queueItem{name: ep.Name, files: ep.Files})
	}

	visited := make(map[string]bool)

	drain := func() error {
		for len(queue) > 0 {
			item := queue[0]
			queue = queue[1:]
			if visited[item.name] {
				continue
			}
			visited[item.name] = true

			node := g.ensureNode(item.name)
			for _, file := range item.files {
				info, err := w.Walk(file, hoistMap)
				if err != nil {
					return err
				}
				for _, d := range info.Deps {
					node.Sources = appendDistinct(node.Sources, d)
					node.Deps[d] = struct{}{}
				}
				for cc := range info.ChildChunks {
					node.ChildChunks[cc] = struct{}{}
				}
			}

			children := make([]string, 0, len(node.ChildChunks))
			for cc := range node.ChildChunks {
				children = append(children, cc)
			}
			sort.Strings(children)

			for _, child := range children {
				if _, ok := g.nodes[child]; !ok {
					cn := g.ensureNode(child)
					cn.Sources = []string{child}
					queue = append(queue, queueItem{name: child, files: []string{child}})
				}
				if !g.hasEdgeEitherDirection(item.name, child) {
					g.addEdge(item.name, child)
				}
			}
		}
		return nil
	}

	if err := drain(); err != nil {
		return nil, err
	}

	for _, me := range manualEntrypoints {
		if _, ok := g.nodes[me.Parent]; !ok {
			return nil, fmt.Errorf("chunkgraph: manual entry point parent %q is not a known chunk", me.Parent)
		}
		cn := g.ensureNode(me.Child.Name)
		if len(cn.Sources) == 0 {
			cn.Sources = []string{me.Child.Name}
		}
		g.addEdge(me.Parent, me.Child.Name)
		queue = append(queue, queueItem{name: me.Child.Name, files: me.Child.Files})
		if err := drain(); err != nil {
			return nil, err
		}
	}

	return g, nil
}

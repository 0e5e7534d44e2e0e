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

import "fmt"

// LCA computes the lowest common ancestor of nodes in g: the deepest
// node (by shortest-path distance from the primary entry) that lies on
// every path from each member of nodes back to the primary entry.
//
// Path enumeration is depth-first with a cycle guard over the current
// path, per node in nodes; the graph here has one node per chunk, not
// per source, so the exponential worst case of enumerating all simple
// paths is acceptable in practice.
func LCA(g *Graph, nodes []string) (string, error) {
	if len(nodes) == 0 {
		return "", fmt.Errorf("chunkgraph: cannot compute LCA of an empty node set")
	}

	var combined map[string]bool
	for _, n := range nodes {
		ancestors, err := commonAncestorsOf(g, n)
		if err != nil {
			return "", err
		}
		if combined == nil {
			combined = ancestors
			continue
		}
		for k := range combined {
			if !ancestors[k] {
				delete(combined, k)
			}
		}
	}
	if len(combined) == 0 {
		return "", fmt.Errorf("chunkgraph: no common ancestor for %v", nodes)
	}

	dist := shortestDistancesFrom(g, g.primary)
	best := ""
	bestDist := -1
	for name := range combined {
		d, ok := dist[name]
		if !ok {
			continue
		}
		if d > bestDist || (d == bestDist && (best == "" || name < best)) {
			bestDist = d
			best = name
		}
	}
	if best == "" {
		return "", fmt.Errorf("chunkgraph: no reachable common ancestor for %v", nodes)
	}
	return best, nil
}

// commonAncestorsOf enumerates every simple path from n back to the
// primary entry along reversed edges, and returns the set of nodes that
// appear on every such path: P(n) in spec §4.6.
func commonAncestorsOf(g *Graph, n string) (map[string]bool, error) {
	var all []map[string]bool
	onPath := make(map[string]bool)

	var walk func(cur string)
	walk = func(cur string) {
		if onPath[cur] {
			return // cycle guard: never revisit a node already on the current path
		}
		onPath[cur] = true
		defer delete(onPath, cur)

		if cur == g.primary {
			captured := make(map[string]bool, len(onPath))
			for k := range onPath {
				captured[k] = true
			}
			all = append(all, captured)
			return
		}

		parents := g.Parents(cur)
		for _, p := range parents {
			walk(p)
		}
	}
	walk(n)

	if len(all) == 0 {
		return nil, fmt.Errorf("chunkgraph: %s has no path to the primary entry %s", n, g.primary)
	}

	result := all[0]
	for _, s := range all[1:] {
		for k := range result {
			if !s[k] {
				delete(result, k)
			}
		}
	}
	return result, nil
}

// shortestDistancesFrom returns, for every node reachable from root via
// forward (dynamic-import) edges, its shortest-path distance from root.
func shortestDistancesFrom(g *Graph, root string) map[string]int {
	dist := map[string]int{root: 0}
	queue := []string{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range g.Children(cur) {
			if _, seen := dist[child]; !seen {
				dist[child] = dist[cur] + 1
				queue = append(queue, child)
			}
		}
	}
	return dist
}

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
	"sort"
	"strings"
)

// HoistMap records, per chunk, the sources that must be appended to its
// direct static-dependency list the next time that chunk's entry file
// is walked (see walker.Walk's hoistMap parameter).
type HoistMap map[string][]string

type sourceGroup struct {
	owners  []string
	sources []string
}

// Normalize enforces the invariant that each source belongs to exactly
// one node: every source owned by more than one node is hoisted to the
// LCA of its owners (C6), and deleted from every other owner's Sources.
// It returns the hoist map a subsequent Build call must honor to
// reproduce this membership from scratch (C5's rebuild). Normalize never
// modifies the graph's topology, only each node's Sources.
func Normalize(g *Graph) (HoistMap, error) {
	sourcesByNode := make(map[string][]string)
	var sourceOrder []string
	seenSource := make(map[string]bool)

	for _, name := range g.Nodes() {
		node, _ := g.Node(name)
		for _, s := range node.Sources {
			sourcesByNode[s] = append(sourcesByNode[s], name)
			if !seenSource[s] {
				seenSource[s] = true
				sourceOrder = append(sourceOrder, s)
			}
		}
	}

	groups := make(map[string]*sourceGroup)
	var groupOrder []string
	for _, s := range sourceOrder {
		owners := sourcesByNode[s]
		if len(owners) < 2 {
			continue
		}
		sortedOwners := append([]string(nil), owners...)
		sort.Strings(sortedOwners)
		key := strings.Join(sortedOwners, "\x00")

		grp, ok := groups[key]
		if !ok {
			grp = &sourceGroup{owners: sortedOwners}
			groups[key] = grp
			groupOrder = append(groupOrder, key)
		}
		grp.sources = append(grp.sources, s)
	}

	hoistMap := make(HoistMap)
	for _, key := range groupOrder {
		grp := groups[key]
		lca, err := LCA(g, grp.owners)
		if err != nil {
			return nil, err
		}
		for _, s := range grp.sources {
			if !containsString(hoistMap[lca], s) {
				hoistMap[lca] = append(hoistMap[lca], s)
			}
			for _, owner := range grp.owners {
				if owner == lca {
					continue
				}
				node, _ := g.Node(owner)
				node.Sources = removeString(node.Sources, s)
			}
		}
	}

	return hoistMap, nil
}

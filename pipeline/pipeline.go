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

// Package pipeline orchestrates chunkgraph's three stages into the
// driver spec §4.7 describes: build, normalize, and - only if the first
// normalization pass produced any hoists - a seeded rebuild and a
// second normalization pass, followed by projection. It is a two-pass
// process, not a loop to a fixed point. Emission (chunkgraph.Emit) is
// left to the caller.
package pipeline

import (
	"chunksplit.dev/chunksplit/buildctx"
	"chunksplit.dev/chunksplit/chunkgraph"
)

// Input is everything pipeline.Run needs beyond the build context
// already configured by its caller.
type Input struct {
	EntryPoints       []chunkgraph.EntryPoint
	ManualEntryPoints []chunkgraph.ManualEntryPoint
}

// Result is the final load-order graph and its projected dependency
// graph. ChunkEntrypointMissing diagnostics are not part of it; Emit
// reports them.
type Result struct {
	Graph    *chunkgraph.Graph
	DepGraph *chunkgraph.DepGraph
}

// Run executes the full build for one set of entry points.
func Run(ctx *buildctx.Context, input Input) (*Result, error) {
	w := ctx.NewWalker()

	g, err := chunkgraph.Build(w, input.EntryPoints, input.ManualEntryPoints, nil)
	if err != nil {
		return nil, err
	}

	hoists, err := chunkgraph.Normalize(g)
	if err != nil {
		return nil, err
	}

	if len(hoists) > 0 {
		g, err = chunkgraph.Build(w, input.EntryPoints, input.ManualEntryPoints, hoists)
		if err != nil {
			return nil, err
		}
		if _, err := chunkgraph.Normalize(g); err != nil {
			return nil, err
		}
	}

	dg, err := chunkgraph.Project(g)
	if err != nil {
		return nil, err
	}

	return &Result{Graph: g, DepGraph: dg}, nil
}

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
package pipeline

import (
	"testing"

	"chunksplit.dev/chunksplit/buildctx"
	"chunksplit.dev/chunksplit/chunkgraph"
	"chunksplit.dev/chunksplit/internal/mapfs"
)

func TestRunStaticOnlyProducesSingleChunk(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/p/a.js", `import "./b.js";`, 0644)
	mfs.AddFile("/p/b.js", `export const b = 1;`, 0644)

	ctx := buildctx.New(mfs, "/p")
	result, err := Run(ctx, Input{
		EntryPoints: []chunkgraph.EntryPoint{{Name: "/p/a.js", Files: []string{"/p/a.js"}}},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.DepGraph.Nodes()) != 1 {
		t.Fatalf("expected a single chunk, got %v", result.DepGraph.Nodes())
	}
	node, ok := result.DepGraph.Node("/p/a.js")
	if !ok {
		t.Fatal("missing primary node")
	}
	want := []string{"/p/b.js", "/p/a.js"}
	if len(node.Sources) != len(want) {
		t.Fatalf("Sources = %v, want %v", node.Sources, want)
	}
	for i := range want {
		if node.Sources[i] != want[i] {
			t.Errorf("Sources[%d] = %q, want %q", i, node.Sources[i], want[i])
		}
	}
}

func TestRunSharedDynamicImportHoistsToCommonAncestor(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/p/a.js", `
import("./left.js");
import("./right.js");
`, 0644)
	mfs.AddFile("/p/left.js", `import "./shared.js"; export const l = 1;`, 0644)
	mfs.AddFile("/p/right.js", `import "./shared.js"; export const r = 1;`, 0644)
	mfs.AddFile("/p/shared.js", `export const s = 1;`, 0644)

	ctx := buildctx.New(mfs, "/p")
	result, err := Run(ctx, Input{
		EntryPoints: []chunkgraph.EntryPoint{{Name: "/p/a.js", Files: []string{"/p/a.js"}}},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	left, ok := result.DepGraph.Node("/p/left.js")
	if !ok {
		t.Fatal("missing left chunk")
	}
	for _, s := range left.Sources {
		if s == "/p/shared.js" {
			t.Errorf("shared.js should have been hoisted out of left, got Sources = %v", left.Sources)
		}
	}

	primary, ok := result.DepGraph.Node(result.DepGraph.Primary())
	if !ok {
		t.Fatal("missing primary node")
	}
	found := false
	for _, s := range primary.Sources {
		if s == "/p/shared.js" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected shared.js hoisted onto primary, Sources = %v", primary.Sources)
	}
}

func TestRunRejectsUnknownManualEntryPointParent(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/p/a.js", `export const a = 1;`, 0644)
	mfs.AddFile("/p/admin.js", `export const admin = 1;`, 0644)

	ctx := buildctx.New(mfs, "/p")
	_, err := Run(ctx, Input{
		EntryPoints: []chunkgraph.EntryPoint{{Name: "/p/a.js", Files: []string{"/p/a.js"}}},
		ManualEntryPoints: []chunkgraph.ManualEntryPoint{
			{Parent: "/p/nope.js", Child: chunkgraph.EntryPoint{Name: "/p/admin.js", Files: []string{"/p/admin.js"}}},
		},
	})
	if err == nil {
		t.Fatal("expected an error for an unknown manual entry point parent")
	}
}

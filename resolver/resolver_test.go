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
package resolver

import (
	"errors"
	"testing"

	"chunksplit.dev/chunksplit/internal/mapfs"
)

func TestResolveRelative(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/p/a.js", `import "./b.js"`, 0644)
	mfs.AddFile("/p/b.js", ``, 0644)

	r := New(mfs, "/p", nil)
	got, err := r.Resolve("./b.js", "/p/a.js")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Path != "/p/b.js" {
		t.Errorf("got %q, want /p/b.js", got.Path)
	}
	if got.Auxiliary != "" {
		t.Errorf("relative specifier should not produce an auxiliary, got %q", got.Auxiliary)
	}
}

func TestResolveRelativeExtensionProbe(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/p/a.js", ``, 0644)
	mfs.AddFile("/p/b.ts", ``, 0644)

	r := New(mfs, "/p", nil)
	got, err := r.Resolve("./b", "/p/a.js")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Path != "/p/b.ts" {
		t.Errorf("got %q, want /p/b.ts", got.Path)
	}
}

func TestResolveUnresolved(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/p/a.js", ``, 0644)

	r := New(mfs, "/p", nil)
	_, err := r.Resolve("./missing.js", "/p/a.js")
	var target *UnresolvedModule
	if !errors.As(err, &target) {
		t.Fatalf("expected *UnresolvedModule, got %v", err)
	}
	if target.Specifier != "./missing.js" || target.From != "/p/a.js" {
		t.Errorf("unexpected fields: %+v", target)
	}
}

func TestResolveBareNodeModules(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/p/src/a.js", ``, 0644)
	mfs.AddFile("/p/node_modules/lit/package.json", `{"name":"lit","main":"index.js"}`, 0644)
	mfs.AddFile("/p/node_modules/lit/index.js", ``, 0644)

	r := New(mfs, "/p", nil)
	got, err := r.Resolve("lit", "/p/src/a.js")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Path != "/p/node_modules/lit/index.js" {
		t.Errorf("got %q", got.Path)
	}
	if got.Auxiliary != "/p/node_modules/lit/package.json" {
		t.Errorf("expected auxiliary package.json, got %q", got.Auxiliary)
	}
}

func TestResolveBareClimbsAncestors(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/p/src/deep/a.js", ``, 0644)
	mfs.AddFile("/p/node_modules/lit/package.json", `{"name":"lit","main":"index.js"}`, 0644)
	mfs.AddFile("/p/node_modules/lit/index.js", ``, 0644)

	r := New(mfs, "/p", nil)
	got, err := r.Resolve("lit", "/p/src/deep/a.js")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Path != "/p/node_modules/lit/index.js" {
		t.Errorf("got %q", got.Path)
	}
}

func TestResolveBareSubpath(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/p/a.js", ``, 0644)
	mfs.AddFile("/p/node_modules/lit/package.json", `{"name":"lit"}`, 0644)
	mfs.AddFile("/p/node_modules/lit/decorators.js", ``, 0644)

	r := New(mfs, "/p", nil)
	got, err := r.Resolve("lit/decorators.js", "/p/a.js")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Path != "/p/node_modules/lit/decorators.js" {
		t.Errorf("got %q", got.Path)
	}
}

func TestResolveBareSubpathNoAuxiliary(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/p/a.js", ``, 0644)
	mfs.AddFile("/p/node_modules/lit/package.json", `{"name":"lit"}`, 0644)
	mfs.AddFile("/p/node_modules/lit/decorators.js", ``, 0644)

	r := New(mfs, "/p", nil)
	got, err := r.Resolve("lit/decorators.js", "/p/a.js")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Auxiliary != "" {
		t.Errorf("subpath specifier should not produce an auxiliary, got %q", got.Auxiliary)
	}
}

func TestResolveScopedPackage(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/p/a.js", ``, 0644)
	mfs.AddFile("/p/node_modules/@lit/reactive-element/package.json", `{"name":"@lit/reactive-element","main":"index.js"}`, 0644)
	mfs.AddFile("/p/node_modules/@lit/reactive-element/index.js", ``, 0644)

	r := New(mfs, "/p", nil)
	got, err := r.Resolve("@lit/reactive-element", "/p/a.js")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Path != "/p/node_modules/@lit/reactive-element/index.js" {
		t.Errorf("got %q", got.Path)
	}
}

func TestResolveMainFieldPreference(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/p/a.js", ``, 0644)
	mfs.AddFile("/p/node_modules/lit/package.json",
		`{"name":"lit","main":"main.js","module":"module.js","browser":"browser.js"}`, 0644)
	mfs.AddFile("/p/node_modules/lit/main.js", ``, 0644)
	mfs.AddFile("/p/node_modules/lit/module.js", ``, 0644)
	mfs.AddFile("/p/node_modules/lit/browser.js", ``, 0644)

	r := New(mfs, "/p", []string{"browser", "module", "main"})
	got, err := r.Resolve("lit", "/p/a.js")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Path != "/p/node_modules/lit/browser.js" {
		t.Errorf("got %q, want browser.js to win", got.Path)
	}

	r2 := New(mfs, "/p", []string{"main"})
	got2, err := r2.Resolve("lit", "/p/a.js")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got2.Path != "/p/node_modules/lit/main.js" {
		t.Errorf("got %q, want main.js when only main is configured", got2.Path)
	}
}

func TestIsAuxiliaryCandidate(t *testing.T) {
	cases := map[string]bool{
		"lit":                     true,
		"@lit/reactive-element":   true,
		"lit/decorators.js":       false,
		"@scope/name/subpath.js":  false,
		"./relative.js":           false,
		"/abs.js":                 false,
	}
	for spec, want := range cases {
		if got := IsAuxiliaryCandidate(spec); got != want {
			t.Errorf("IsAuxiliaryCandidate(%q) = %v, want %v", spec, got, want)
		}
	}
}

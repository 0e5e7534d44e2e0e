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
package jsast

import (
	"errors"
	"testing"
)

func TestExtractStaticImportsAndReexports(t *testing.T) {
	content := []byte(`
import { a } from "./a.js";
export { b } from "./b.js";
const c = require("./c.js");
`)

	result, err := Extract(content, "/app/entry.js", "", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := []string{"./a.js", "./b.js", "./c.js"}
	if len(result.Static) != len(want) {
		t.Fatalf("got %d static refs, want %d: %+v", len(result.Static), len(want), result.Static)
	}
	for i, spec := range want {
		if result.Static[i].Kind != RefSpecifier {
			t.Errorf("Static[%d].Kind = %v, want RefSpecifier", i, result.Static[i].Kind)
		}
		if result.Static[i].Value != spec {
			t.Errorf("Static[%d].Value = %q, want %q", i, result.Static[i].Value, spec)
		}
	}
	if result.UsesLegacyBase {
		t.Errorf("UsesLegacyBase = true, want false")
	}
}

func TestExtractDynamicImportLiteralOnly(t *testing.T) {
	content := []byte(`
const specifier = "./runtime.js";
import("./chunk.js").then(mod => mod.run());
import(specifier);
`)

	result, err := Extract(content, "/app/entry.js", "", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(result.Dynamic) != 1 || result.Dynamic[0] != "./chunk.js" {
		t.Fatalf("Dynamic = %+v, want [\"./chunk.js\"]", result.Dynamic)
	}
}

func TestExtractGoogRequireResolvesThroughNamespaceMap(t *testing.T) {
	content := []byte(`
goog.require('ns.Foo');
goog.module.declareLegacyNamespace();
class Widget extends goog.require('ns.Foo') {}
`)

	namespaceMap := map[string]string{"ns.Foo": "/lib/foo.js"}

	result, err := Extract(content, "/app/widget.js", "/lib/base.js", namespaceMap)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if !result.UsesLegacyBase {
		t.Fatalf("UsesLegacyBase = false, want true")
	}
	if len(result.Static) < 1 || result.Static[0].Kind != RefResolved || result.Static[0].Value != "/lib/base.js" {
		t.Fatalf("Static[0] = %+v, want prepended legacy base", result.Static)
	}
	found := false
	for _, ref := range result.Static[1:] {
		if ref.Kind == RefResolved && ref.Value == "/lib/foo.js" {
			found = true
		}
	}
	if !found {
		t.Errorf("Static = %+v, want a resolved ref to /lib/foo.js", result.Static)
	}
}

func TestExtractLegacyBaseFileItselfNotPrepended(t *testing.T) {
	content := []byte(`var goog = goog || {};`)

	result, err := Extract(content, "/lib/base.js", "/lib/base.js", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Static) != 0 {
		t.Fatalf("Static = %+v, want empty (base file must not require itself)", result.Static)
	}
}

func TestExtractUnknownNamespaceIsFatal(t *testing.T) {
	content := []byte(`goog.require('ns.Missing');`)

	_, err := Extract(content, "/app/widget.js", "/lib/base.js", map[string]string{})

	var unknown *UnknownNamespace
	if !errors.As(err, &unknown) {
		t.Fatalf("Extract error = %v, want *UnknownNamespace", err)
	}
	if unknown.Namespace != "ns.Missing" {
		t.Errorf("Namespace = %q, want ns.Missing", unknown.Namespace)
	}
}

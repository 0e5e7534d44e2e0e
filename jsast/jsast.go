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

// Package jsast extracts module dependency references from a single
// JavaScript/TypeScript source file using a tree-sitter parse. It sees
// ES module imports/reexports, CommonJS require() calls, dynamic
// import() expressions, and the legacy goog.require/goog.requireType
// namespace system, but it never resolves a specifier to a path itself
// (that belongs to the resolver and the namespace map built by
// googdeps); jsast only reports what a file asked for, in source order.
package jsast

import (
	"fmt"
	"sort"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// FileParseFailure reports that a file's content could not be parsed.
// It is non-fatal: callers may record it as a diagnostic and continue
// the run by treating the file as having no references.
type FileParseFailure struct {
	Path string
	Err  error
}

func (e *FileParseFailure) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *FileParseFailure) Unwrap() error { return e.Err }

// UnknownNamespace reports a goog.require/goog.requireType referencing
// a namespace absent from the namespace map. It is fatal.
type UnknownNamespace struct {
	Namespace string
	File      string
}

func (e *UnknownNamespace) Error() string {
	return fmt.Sprintf("%s: unknown namespace %q", e.File, e.Namespace)
}

// RefKind distinguishes a bare specifier awaiting module resolution from
// a reference that has already been resolved to an absolute path, such
// as a goog.require namespace or the prepended legacy base file.
type RefKind int

const (
	// RefSpecifier is a specifier (relative, bare, or absolute) that the
	// resolver must still turn into a path.
	RefSpecifier RefKind = iota
	// RefResolved is already an absolute path; the resolver is not consulted.
	RefResolved
)

// StaticRef is a single static dependency reference found in a file,
// in the order it appears in the source.
type StaticRef struct {
	Kind  RefKind
	Value string // specifier text, or the resolved absolute path
}

// Result is everything jsast discovered about one file.
type Result struct {
	// Static holds import/export/require/goog.require references, ordered
	// by their position in the source. When UsesLegacyBase is true and
	// path was not itself the legacy base file, the base file's resolved
	// path is prepended as the first entry.
	Static []StaticRef
	// Dynamic holds literal-argument import() specifiers, in source order.
	Dynamic []string
	// UsesLegacyBase is true if the file references any goog.* member.
	UsesLegacyBase bool
}

type positionedCapture struct {
	name    string
	text    string
	startAt uint
}

// Extract parses content (the source of the file at path) and reports
// its static and dynamic dependency references. legacyBasePath is the
// resolved absolute path of the Closure base.js file providing the
// goog global; it is prepended to Static when content uses goog.* and
// path is not itself the base file. namespaceMap maps a Closure
// namespace to the absolute path of the file that provides it, as
// built by googdeps.Parse.
func Extract(content []byte, path string, legacyBasePath string, namespaceMap map[string]string) (Result, error) {
	parser := getParser()
	defer putParser(parser)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return Result{}, &FileParseFailure{Path: path, Err: fmt.Errorf("parser returned no tree")}
	}
	defer tree.Close()

	qm, err := getQueryManager()
	if err != nil {
		return Result{}, err
	}

	root := tree.RootNode()

	captures, err := runCaptures(qm, root, content, "imports", "import.spec")
	if err != nil {
		return Result{}, err
	}
	reexports, err := runCaptures(qm, root, content, "reexports", "reexport.spec")
	if err != nil {
		return Result{}, err
	}
	requires, err := runCaptures(qm, root, content, "requireCalls", "require.spec")
	if err != nil {
		return Result{}, err
	}
	googNamespaces, err := runCaptures(qm, root, content, "googCalls", "goog.namespace")
	if err != nil {
		return Result{}, err
	}
	dynamicImports, err := runCaptures(qm, root, content, "dynamicImports", "dynamicImport.spec")
	if err != nil {
		return Result{}, err
	}
	memberAccess, err := runCaptures(qm, root, content, "googMemberAccess", "goog.memberAccess")
	if err != nil {
		return Result{}, err
	}

	var positioned []positionedCapture
	for _, c := range captures {
		positioned = append(positioned, c)
	}
	for _, c := range reexports {
		positioned = append(positioned, c)
	}
	for _, c := range requires {
		positioned = append(positioned, c)
	}
	for _, c := range googNamespaces {
		if _, ok := namespaceMap[c.text]; !ok {
			return Result{}, &UnknownNamespace{Namespace: c.text, File: path}
		}
		positioned = append(positioned, c)
	}

	sort.SliceStable(positioned, func(i, j int) bool {
		return positioned[i].startAt < positioned[j].startAt
	})

	var static []StaticRef
	for _, c := range positioned {
		if c.name == "goog.namespace" {
			static = append(static, StaticRef{Kind: RefResolved, Value: namespaceMap[c.text]})
			continue
		}
		static = append(static, StaticRef{Kind: RefSpecifier, Value: c.text})
	}

	result := Result{
		Static:         static,
		UsesLegacyBase: len(memberAccess) > 0,
	}
	for _, c := range dynamicImports {
		result.Dynamic = append(result.Dynamic, c.text)
	}

	if result.UsesLegacyBase && legacyBasePath != "" && path != legacyBasePath {
		result.Static = append([]StaticRef{{Kind: RefResolved, Value: legacyBasePath}}, result.Static...)
	}

	return result, nil
}

func runCaptures(qm *queryManager, root ts.Node, content []byte, queryName, captureName string) ([]positionedCapture, error) {
	query, err := qm.Query(queryName)
	if err != nil {
		return nil, err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	captureNames := query.CaptureNames()
	var out []positionedCapture

	matches := cursor.Matches(query, root, content)
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for _, capture := range match.Captures {
			name := captureNames[capture.Index]
			if name != captureName {
				continue
			}
			out = append(out, positionedCapture{
				name:    name,
				text:    capture.Node.Utf8Text(content),
				startAt: capture.Node.StartByte(),
			})
		}
	}

	return out, nil
}

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

// Package googdeps parses legacy-style deps files consisting of top-level
// goog.addDependency(relPath, [namespaces], ...) calls into a namespace to
// absolute-path mapping.
package googdeps

import (
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	tsTypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

//go:embed queries/*.scm
var queryFiles embed.FS

var language = ts.NewLanguage(tsTypescript.LanguageTypescript())

var parserPool = sync.Pool{
	New: func() any {
		parser := ts.NewParser()
		if err := parser.SetLanguage(language); err != nil {
			panic("failed to set typescript language: " + err.Error())
		}
		return parser
	},
}

var (
	addDependencyQuery     *ts.Query
	addDependencyQueryOnce sync.Once
	addDependencyQueryErr  error
)

func getQuery() (*ts.Query, error) {
	addDependencyQueryOnce.Do(func() {
		data, err := queryFiles.ReadFile(filepath.Join("queries", "googDeps.scm"))
		if err != nil {
			addDependencyQueryErr = err
			return
		}
		addDependencyQuery, addDependencyQueryErr = ts.NewQuery(language, string(data))
	})
	return addDependencyQuery, addDependencyQueryErr
}

// InvalidDepsFile is returned when a deps file cannot be parsed.
type InvalidDepsFile struct {
	Path string
	Err  error
}

func (e *InvalidDepsFile) Error() string {
	return fmt.Sprintf("invalid deps file %s: %v", e.Path, e.Err)
}

func (e *InvalidDepsFile) Unwrap() error { return e.Err }

// Parse extracts namespace -> absolute path mappings from the deps file
// content at path, joining each declared relative path against baseDir.
// Every goog.addDependency(...) call with a string path and an array of
// string namespaces is used, wherever it appears in the file; anything
// else is silently ignored.
func Parse(content []byte, path, baseDir string) (map[string]string, error) {
	parser := parserPool.Get().(*ts.Parser)
	defer parserPool.Put(parser)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, &InvalidDepsFile{Path: path, Err: fmt.Errorf("parser returned no tree")}
	}
	defer tree.Close()

	query, err := getQuery()
	if err != nil {
		return nil, &InvalidDepsFile{Path: path, Err: err}
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	captureNames := query.CaptureNames()
	result := make(map[string]string)

	matches := cursor.Matches(query, tree.RootNode(), content)
	for {
		match := matches.Next()
		if match == nil {
			break
		}

		var relPath string
		var namespaces []string
		for _, capture := range match.Captures {
			name := captureNames[capture.Index]
			text := capture.Node.Utf8Text(content)
			switch name {
			case "relpath":
				relPath = unquote(text)
			case "namespace":
				namespaces = append(namespaces, unquote(text))
			}
		}

		if relPath == "" || len(namespaces) == 0 {
			continue
		}

		abs := filepath.Join(baseDir, relPath)
		for _, ns := range namespaces {
			result[ns] = abs
		}
	}

	return result, nil
}

// unquote strips the surrounding quote characters from a tree-sitter string
// literal capture. goog.addDependency files only ever use plain string
// literals, never template strings with interpolation.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return strings.Trim(s, `"'`)
}

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
	"embed"
	"fmt"
	"path"
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

func getParser() *ts.Parser {
	return parserPool.Get().(*ts.Parser)
}

func putParser(p *ts.Parser) {
	p.Reset()
	parserPool.Put(p)
}

// queryManager holds the compiled queries used for static/dynamic
// specifier extraction. Unlike the teacher's QueryManager, a single
// instance only ever serves one grammar (TypeScript, parsed as a superset
// of plain JavaScript), so there is no language dimension to the map.
type queryManager struct {
	mu      sync.Mutex
	closed  bool
	queries map[string]*ts.Query
}

func newQueryManager(names ...string) (*queryManager, error) {
	qm := &queryManager{queries: make(map[string]*ts.Query)}
	for _, name := range names {
		if err := qm.load(name); err != nil {
			qm.Close()
			return nil, err
		}
	}
	return qm, nil
}

func (qm *queryManager) load(name string) error {
	data, err := queryFiles.ReadFile(path.Join("queries", name+".scm"))
	if err != nil {
		return fmt.Errorf("failed to read query %s: %w", name, err)
	}
	query, err := ts.NewQuery(language, string(data))
	if err != nil {
		return fmt.Errorf("failed to parse query %s: %w", name, err)
	}
	qm.queries[name] = query
	return nil
}

func (qm *queryManager) Close() {
	qm.mu.Lock()
	if qm.closed {
		qm.mu.Unlock()
		return
	}
	qm.closed = true
	queries := qm.queries
	qm.queries = nil
	qm.mu.Unlock()

	for _, q := range queries {
		q.Close()
	}
}

func (qm *queryManager) Query(name string) (*ts.Query, error) {
	q, ok := qm.queries[name]
	if !ok {
		return nil, fmt.Errorf("query not found: %s", name)
	}
	return q, nil
}

var (
	globalQM     *queryManager
	globalQMOnce sync.Once
	globalQMErr  error
)

func getQueryManager() (*queryManager, error) {
	globalQMOnce.Do(func() {
		globalQM, globalQMErr = newQueryManager(
			"imports", "reexports", "dynamicImports", "requireCalls",
			"googCalls", "googMemberAccess",
		)
	})
	return globalQM, globalQMErr
}

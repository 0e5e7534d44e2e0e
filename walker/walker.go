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

// Package walker computes, for a single file, the transitive closure of
// its static dependencies and the set of chunks it dynamically imports.
// It sits directly on top of jsast (what a file references) and
// resolver (what those references point to), memoizing per absolute
// path so a file shared by many chunks is only ever parsed once.
package walker

import (
	"errors"
	"path/filepath"
	"sync"

	"chunksplit.dev/chunksplit/diag"
	"chunksplit.dev/chunksplit/fs"
	"chunksplit.dev/chunksplit/jsast"
	"chunksplit.dev/chunksplit/resolver"
)

// FileDepInfo is the result of walking a single file: its flattened,
// deduplicated static dependency closure (dependencies before the file
// itself, which is always the last element), and the set of chunk entry
// points it reaches only through a dynamic import.
type FileDepInfo struct {
	Path        string
	Deps        []string
	ChildChunks map[string]struct{}
}

// metadataExtensions are file extensions walked as auxiliary sources
// rather than parsed for dependencies: a package.json contributes no
// static imports of its own.
var metadataExtensions = map[string]bool{
	".json": true,
}

func isMetadataFile(path string) bool {
	return metadataExtensions[filepath.Ext(path)]
}

// directResult is the cached, pre-hoist outcome of parsing and resolving
// a single file: its direct static deps and the chunks it dynamically
// imports. It never changes between a build's two C5 passes, since
// hoists only ever append to the list a caller sees after the cache
// lookup (see directDeps) — only the transitive closure built on top of
// it depends on which pass's hoist map is in effect.
type directResult struct {
	deps        []string
	childChunks map[string]struct{}
}

// Walker holds the direct-dependency cache shared across a single
// build. directCache is safe to reuse across the (at most two) C5
// passes of one build, since it never reflects hoists; it is not safe
// to reuse across builds that resolve the same paths to different
// content.
type Walker struct {
	fs             fs.FileSystem
	resolver       *resolver.Resolver
	legacyBasePath string
	namespaceMap   map[string]string
	logger         diag.Logger
	directCache    sync.Map // path -> *directResult
}

// New builds a Walker. legacyBasePath and namespaceMap may be empty/nil
// when the tree under analysis makes no use of the legacy namespace
// system. logger receives non-fatal FileParseFailure diagnostics; a nil
// logger discards them.
func New(filesystem fs.FileSystem, res *resolver.Resolver, legacyBasePath string, namespaceMap map[string]string, logger diag.Logger) *Walker {
	if logger == nil {
		logger = diag.Discard
	}
	return &Walker{
		fs:             filesystem,
		resolver:       res,
		legacyBasePath: legacyBasePath,
		namespaceMap:   namespaceMap,
		logger:         logger,
	}
}

// Walk computes F's FileDepInfo. hoistMap carries hoists injected by a
// previous normalization pass; it is nil on a first build. Each call
// starts a fresh memo of the full (post-hoist) transitive closure, since
// that closure is only valid for the hoistMap it was built with; the
// per-file direct-dependency cache (parsing and resolution) persists on
// the Walker itself and is shared across calls regardless of hoistMap.
func (w *Walker) Walk(path string, hoistMap map[string][]string) (*FileDepInfo, error) {
	memo := make(map[string]*FileDepInfo)
	return w.walk(path, hoistMap, memo, make(map[string]bool))
}

func (w *Walker) walk(path string, hoistMap map[string][]string, memo map[string]*FileDepInfo, visiting map[string]bool) (*FileDepInfo, error) {
	if cached, ok := memo[path]; ok {
		return cached, nil
	}
	if visiting[path] {
		return &FileDepInfo{Path: path, ChildChunks: map[string]struct{}{}}, nil
	}
	visiting[path] = true
	defer delete(visiting, path)

	direct, childChunks, err := w.directDeps(path)
	if err != nil {
		return nil, err
	}

	for _, hoisted := range hoistMap[path] {
		direct = appendDistinct(direct, hoisted)
	}

	var deps []string
	seen := make(map[string]bool)
	for _, d := range direct {
		childInfo, err := w.walk(d, hoistMap, memo, visiting)
		if err != nil {
			return nil, err
		}
		for _, dd := range childInfo.Deps {
			if !seen[dd] {
				deps = append(deps, dd)
				seen[dd] = true
			}
		}
		if !seen[d] {
			deps = append(deps, d)
			seen[d] = true
		}
		for cc := range childInfo.ChildChunks {
			childChunks[cc] = struct{}{}
		}
	}
	if !seen[path] {
		deps = append(deps, path)
	}

	info := &FileDepInfo{Path: path, Deps: deps, ChildChunks: childChunks}
	memo[path] = info
	return info, nil
}

// directDeps returns path's immediate static and dynamic references,
// without descending into them, consulting and populating the Walker's
// direct-dependency cache. The cache stores the pre-hoist result, so it
// never goes stale across a build's two C5 passes.
func (w *Walker) directDeps(path string) ([]string, map[string]struct{}, error) {
	if isMetadataFile(path) {
		return nil, map[string]struct{}{}, nil
	}

	if cached, ok := w.directCache.Load(path); ok {
		dr := cached.(*directResult)
		return append([]string(nil), dr.deps...), cloneSet(dr.childChunks), nil
	}

	direct, childChunks, err := w.parseDirectDeps(path)
	if err != nil {
		return nil, nil, err
	}

	w.directCache.Store(path, &directResult{deps: direct, childChunks: childChunks})
	return append([]string(nil), direct...), cloneSet(childChunks), nil
}

// parseDirectDeps does the actual parse-and-resolve work for path, with
// no caching of its own.
func (w *Walker) parseDirectDeps(path string) ([]string, map[string]struct{}, error) {
	childChunks := make(map[string]struct{})

	content, err := w.fs.ReadFile(path)
	if err != nil {
		return nil, childChunks, err
	}

	result, err := jsast.Extract(content, path, w.legacyBasePath, w.namespaceMap)
	var parseFailure *jsast.FileParseFailure
	if errors.As(err, &parseFailure) {
		w.logger.Diagnosticf("%s: %v", path, parseFailure)
		return nil, childChunks, nil
	}
	if err != nil {
		return nil, childChunks, err
	}

	var direct []string
	for _, ref := range result.Static {
		if ref.Kind == jsast.RefResolved {
			direct = appendDistinct(direct, ref.Value)
			continue
		}
		resolved, err := w.resolver.Resolve(ref.Value, path)
		if err != nil {
			return nil, childChunks, err
		}
		if resolved.Auxiliary != "" {
			direct = appendDistinct(direct, resolved.Auxiliary)
		}
		direct = appendDistinct(direct, resolved.Path)
	}

	for _, spec := range result.Dynamic {
		resolved, err := w.resolver.Resolve(spec, path)
		if err != nil {
			return nil, childChunks, err
		}
		childChunks[resolved.Path] = struct{}{}
	}

	return direct, childChunks, nil
}

func cloneSet(s map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func appendDistinct(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

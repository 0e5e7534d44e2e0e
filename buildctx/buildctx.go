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

// Package buildctx threads the configuration a single chunksplit build
// needs - the filesystem, module-resolution settings, and the legacy
// namespace map - through explicit, immutable context instead of
// process-wide singletons. A Context produces a fresh Walker per build,
// each starting with its own direct-dependency cache that the build's
// C5 passes share.
package buildctx

import (
	"path/filepath"

	"chunksplit.dev/chunksplit/diag"
	"chunksplit.dev/chunksplit/fs"
	"chunksplit.dev/chunksplit/googdeps"
	"chunksplit.dev/chunksplit/resolver"
	"chunksplit.dev/chunksplit/walker"
)

// Context carries everything a build needs to resolve specifiers and
// walk files, independent of any particular entry point.
type Context struct {
	fs             fs.FileSystem
	baseDirectory  string
	mainFields     []string
	legacyBasePath string
	namespaceMap   map[string]string
	logger         diag.Logger
}

// New creates a Context rooted at baseDirectory, the directory that
// anchors auxiliary package-metadata lookups for bare specifiers.
func New(filesystem fs.FileSystem, baseDirectory string) *Context {
	return &Context{
		fs:            filesystem,
		baseDirectory: baseDirectory,
		namespaceMap:  map[string]string{},
		logger:        diag.Discard,
	}
}

// WithMainFields sets the ordered package-metadata field name
// preference (spec §4.1); nil restores packagejson.DefaultMainFields.
func (c *Context) WithMainFields(fields []string) *Context {
	c.mainFields = fields
	return c
}

// WithLegacyBase sets the resolved absolute path of the Closure base.js
// file providing the goog global.
func (c *Context) WithLegacyBase(path string) *Context {
	c.legacyBasePath = path
	return c
}

// WithNamespaceMap sets the namespace -> absolute path mapping used to
// resolve goog.require/goog.requireType references.
func (c *Context) WithNamespaceMap(m map[string]string) *Context {
	c.namespaceMap = m
	return c
}

// WithLogger sets the Logger that receives non-fatal diagnostics
// (FileParseFailure) raised while walking files.
func (c *Context) WithLogger(l diag.Logger) *Context {
	if l == nil {
		l = diag.Discard
	}
	c.logger = l
	return c
}

// NewWalker builds a Walker bound to this Context's configuration. Call
// this once per build: each Walker starts with an empty
// direct-dependency cache, and a build's (at most two) C5 passes share
// that one Walker rather than recreate it, per spec §5's resource
// ownership note.
func (c *Context) NewWalker() *walker.Walker {
	res := resolver.New(c.fs, c.baseDirectory, c.mainFields)
	return walker.New(c.fs, res, c.legacyBasePath, c.namespaceMap, c.logger)
}

// LoadNamespaceMap parses zero or more legacy deps files (C2) and merges
// in extraDeps, producing the namespace -> absolute path mapping a
// Context can be configured with via WithNamespaceMap. Each deps file's
// relative paths are joined against its own containing directory.
func LoadNamespaceMap(filesystem fs.FileSystem, depsFiles []string, extraDeps map[string]string) (map[string]string, error) {
	result := make(map[string]string)
	for _, df := range depsFiles {
		content, err := filesystem.ReadFile(df)
		if err != nil {
			return nil, err
		}
		parsed, err := googdeps.Parse(content, df, filepath.Dir(df))
		if err != nil {
			return nil, err
		}
		for ns, path := range parsed {
			result[ns] = path
		}
	}
	for ns, path := range extraDeps {
		result[ns] = path
	}
	return result, nil
}

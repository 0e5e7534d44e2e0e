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

// Package resolver maps a (referring-file, specifier) pair to an absolute
// file path using the Node module resolution algorithm.
package resolver

import (
	"fmt"
	"path/filepath"
	"strings"

	"chunksplit.dev/chunksplit/fs"
	"chunksplit.dev/chunksplit/packagejson"
)

// UnresolvedModule is returned when a specifier cannot be resolved to a file.
type UnresolvedModule struct {
	Specifier string
	From      string
}

func (e *UnresolvedModule) Error() string {
	return fmt.Sprintf("cannot resolve %q from %s", e.Specifier, e.From)
}

// Resolved is the result of resolving one specifier: the file it points to,
// plus an optional auxiliary dependency (the package's metadata file, for
// bare specifiers) that must itself be tracked as a source.
type Resolved struct {
	Path      string
	Auxiliary string // absolute path to package.json, "" unless a package-root bare specifier
}

// Resolver resolves module specifiers the way Node resolves require/import
// targets: relative/absolute specifiers join against the referrer's
// directory, bare specifiers climb node_modules, and a package's
// configurable main-field list substitutes for its canonical entry point.
//
// Resolver is a pure function of (fs, baseDirectory, mainFields) and its
// inputs; it memoizes package.json parses for its own lifetime via
// pkgCache (each Resolver has its own cache), which is safe because
// package.json content is immutable for the life of a build.
type Resolver struct {
	fs            fs.FileSystem
	baseDirectory string
	mainFields    []string
	pkgCache      packagejson.Cache
}

// New creates a Resolver rooted at baseDirectory, used to anchor auxiliary
// package-metadata lookups for bare specifiers. mainFields defaults to
// packagejson.DefaultMainFields when nil.
func New(filesystem fs.FileSystem, baseDirectory string, mainFields []string) *Resolver {
	if len(mainFields) == 0 {
		mainFields = packagejson.DefaultMainFields
	}
	return &Resolver{
		fs:            filesystem,
		baseDirectory: baseDirectory,
		mainFields:    mainFields,
		pkgCache:      packagejson.NewMemoryCache(),
	}
}

// Resolve maps specifier, referenced from the file at from, to an absolute
// path. For package-root bare specifiers (see IsAuxiliaryCandidate),
// Resolved.Auxiliary carries the package's metadata file so callers can
// record it as an additional source.
func (r *Resolver) Resolve(specifier, from string) (Resolved, error) {
	if isRelativeOrAbsolute(specifier) {
		path, err := r.resolveRelative(specifier, from)
		if err != nil {
			return Resolved{}, err
		}
		return Resolved{Path: path}, nil
	}
	return r.resolveBare(specifier, from)
}

// isRelativeOrAbsolute reports whether specifier must be resolved against a
// directory rather than climbed for in node_modules.
func isRelativeOrAbsolute(specifier string) bool {
	return strings.HasPrefix(specifier, "./") ||
		strings.HasPrefix(specifier, "../") ||
		strings.HasPrefix(specifier, "/")
}

// resolveRelative resolves a relative or absolute specifier to a concrete
// file, trying the literal path, common extensions, and directory index
// files, in that order, mirroring Node's file/extension/index resolution.
func (r *Resolver) resolveRelative(specifier, from string) (string, error) {
	var base string
	if strings.HasPrefix(specifier, "/") {
		base = specifier
	} else {
		base = filepath.Join(filepath.Dir(from), specifier)
	}

	if candidate, ok := r.probeFile(base); ok {
		return candidate, nil
	}

	return "", &UnresolvedModule{Specifier: specifier, From: from}
}

// probeFile tries path as-is, then with common JS/TS extensions appended,
// then as a directory governed by its own package.json main-field, then
// as a directory with an index file.
func (r *Resolver) probeFile(path string) (string, bool) {
	if r.fs.Exists(path) {
		if info, err := r.fs.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}

	for _, ext := range []string{".js", ".mjs", ".cjs", ".ts", ".tsx", ".jsx"} {
		candidate := path + ext
		if r.fs.Exists(candidate) {
			return candidate, true
		}
	}

	if r.fs.Exists(path) {
		if info, err := r.fs.Stat(path); err == nil && info.IsDir() {
			if pkgPath, ok := r.mainFieldEntry(path); ok {
				return pkgPath, true
			}
			for _, name := range []string{"index.js", "index.mjs", "index.ts"} {
				candidate := filepath.Join(path, name)
				if r.fs.Exists(candidate) {
					return candidate, true
				}
			}
		}
	}

	return "", false
}

// mainFieldEntry consults dir/package.json's configured main-field
// preference list and returns the resolved entry file, if present.
func (r *Resolver) mainFieldEntry(dir string) (string, bool) {
	pkg, err := r.loadPackageJSON(filepath.Join(dir, "package.json"))
	if err != nil {
		return "", false
	}
	field, ok := pkg.ResolveMainField(r.mainFields)
	if !ok {
		return "", false
	}
	entry := filepath.Join(dir, strings.TrimPrefix(field, "./"))
	if candidate, ok := r.probeFile(entry); ok {
		return candidate, true
	}
	return "", false
}

// resolveBare climbs parent directories of from looking for node_modules,
// following Node's standard bare-specifier algorithm, and, for package-root
// specifiers, also produces the package's metadata file as an auxiliary
// dependency.
func (r *Resolver) resolveBare(specifier, from string) (Resolved, error) {
	pkgName, subpath := splitSpecifier(specifier)
	wantsAux := IsAuxiliaryCandidate(specifier)

	dir := filepath.Dir(from)
	for {
		nodeModules := filepath.Join(dir, "node_modules")
		pkgDir := filepath.Join(nodeModules, pkgName)
		if r.fs.Exists(pkgDir) {
			resolved, aux, err := r.resolveWithinPackage(pkgDir, subpath)
			if err == nil {
				if !wantsAux {
					aux = ""
				}
				return Resolved{Path: resolved, Auxiliary: aux}, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return Resolved{}, &UnresolvedModule{Specifier: specifier, From: from}
}

// resolveWithinPackage resolves subpath (possibly empty, meaning the
// package's own entry) inside pkgDir, returning the metadata file path as
// the auxiliary dependency whenever one exists.
func (r *Resolver) resolveWithinPackage(pkgDir, subpath string) (resolved, auxiliary string, err error) {
	pkgJSONPath := filepath.Join(pkgDir, "package.json")
	auxiliary = ""
	if r.fs.Exists(pkgJSONPath) {
		auxiliary = pkgJSONPath
	}

	if pkgPath, ok := r.exportsEntry(pkgDir, subpath); ok {
		return pkgPath, auxiliary, nil
	}

	if subpath == "" {
		if pkgPath, ok := r.mainFieldEntry(pkgDir); ok {
			return pkgPath, auxiliary, nil
		}
		if candidate, ok := r.probeFile(filepath.Join(pkgDir, "index.js")); ok {
			return candidate, auxiliary, nil
		}
		return "", auxiliary, fmt.Errorf("no entry point in %s", pkgDir)
	}

	target := filepath.Join(pkgDir, subpath)
	if candidate, ok := r.probeFile(target); ok {
		return candidate, auxiliary, nil
	}
	return "", auxiliary, fmt.Errorf("no file at %s", target)
}

// exportsEntry consults dir/package.json's "exports" map, when present,
// ahead of the plain main-field preference: modern packages that declare
// exports use it to gate which files are importable at all, and its
// condition ordering subsumes the main-field preference list.
func (r *Resolver) exportsEntry(dir, subpath string) (string, bool) {
	pkg, err := r.loadPackageJSON(filepath.Join(dir, "package.json"))
	if err != nil || pkg.Exports == nil {
		return "", false
	}

	key := "."
	if subpath != "" {
		key = "./" + subpath
	}

	target, err := pkg.ResolveExport(key, &packagejson.ResolveOptions{
		Conditions: exportConditionsFor(r.mainFields),
	})
	if err != nil {
		return "", false
	}

	entry := filepath.Join(dir, target)
	return r.probeFile(entry)
}

// exportConditionsFor translates the caller's main-field preference list
// into export-condition names, so --main-fields also governs which
// condition of a conditional "exports" map wins: "main" has no export
// condition counterpart and maps to "default", "module" maps to the
// standard "import" condition, and any other field name (including
// "browser") is passed through unchanged.
func exportConditionsFor(mainFields []string) []string {
	if len(mainFields) == 0 {
		return packagejson.DefaultConditions
	}
	conditions := make([]string, 0, len(mainFields)+1)
	for _, f := range mainFields {
		switch f {
		case "main":
			conditions = append(conditions, "default")
		case "module":
			conditions = append(conditions, "import")
		default:
			conditions = append(conditions, f)
		}
	}
	return append(conditions, "default")
}

// loadPackageJSON parses and caches a package.json by absolute path,
// coalescing concurrent lookups of the same path onto a single parse.
func (r *Resolver) loadPackageJSON(path string) (*packagejson.PackageJSON, error) {
	return r.pkgCache.GetOrLoad(path, func() (*packagejson.PackageJSON, error) {
		return packagejson.ParseFile(r.fs, path)
	})
}

// splitSpecifier separates a bare specifier into its package name and
// subpath, honoring scoped package names (@scope/name/subpath).
func splitSpecifier(specifier string) (pkgName, subpath string) {
	if strings.HasPrefix(specifier, "@") {
		parts := strings.SplitN(specifier, "/", 3)
		if len(parts) < 2 {
			return specifier, ""
		}
		pkgName = parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			subpath = parts[2]
		}
		return pkgName, subpath
	}
	parts := strings.SplitN(specifier, "/", 2)
	pkgName = parts[0]
	if len(parts) == 2 {
		subpath = parts[1]
	}
	return pkgName, subpath
}

// IsAuxiliaryCandidate reports whether specifier is a bare specifier whose
// resolution should also surface the package's metadata file as a
// dependency: either a single unscoped segment, or exactly two segments
// where the first begins with "@".
func IsAuxiliaryCandidate(specifier string) bool {
	if isRelativeOrAbsolute(specifier) {
		return false
	}
	parts := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") {
		return len(parts) == 2
	}
	return len(parts) == 1
}

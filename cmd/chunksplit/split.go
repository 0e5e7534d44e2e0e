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

// Package chunksplit provides the split command: the CLI entry point
// that wires fs, buildctx, pipeline and chunkgraph into a runnable
// command producing an optimizer's --chunk flag list.
package chunksplit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chunksplit.dev/chunksplit/buildctx"
	"chunksplit.dev/chunksplit/chunkgraph"
	"chunksplit.dev/chunksplit/diag"
	"chunksplit.dev/chunksplit/fs"
	"chunksplit.dev/chunksplit/pipeline"
)

// Cmd is the split cobra command that discovers a program's dependency
// graph from its entry points and emits a chunk specification.
var Cmd = &cobra.Command{
	Use:   "split [entry-file...]",
	Short: "Split a program's sources into chunks at dynamic import boundaries",
	Long: `Split discovers the full transitive dependency set of one or more entry
points, partitions it into chunks at dynamic-import boundaries, and emits
a dependency graph between chunks plus a topologically ordered source list.`,
	Example: `  # Split a single entry point
  chunksplit split src/main.js

  # Multiple entry points, the first is primary
  chunksplit split src/main.js src/admin.js

  # Collect entry points via glob
  chunksplit split --glob "src/entries/*.js"

  # Attach a chunk reachable only through manual configuration
  chunksplit split src/main.js --manual-entry src/main.js=src/admin.js`,
	RunE: run,
}

func init() {
	Cmd.Flags().String("glob", "", "Glob pattern to collect additional entry point files")
	Cmd.Flags().StringSlice("manual-entry", nil, "parent=child entry point attached even if undiscovered, repeatable")
	Cmd.Flags().String("name-style", "entrypoint", "Chunk naming style (entrypoint, numbered)")
	Cmd.Flags().String("name-prefix", "", "Prefix prepended to every emitted chunk name")
	Cmd.Flags().StringSlice("main-fields", nil, "Package metadata main-field preference order (default: browser,module,main)")
	Cmd.Flags().String("goog-base", "", "Path to the legacy Closure base.js providing the goog global")
	Cmd.Flags().StringSlice("goog-deps", nil, "Legacy goog.addDependency deps file, repeatable")
	Cmd.Flags().StringP("format", "f", "json", "Output format (json, chunk-only)")
}

func run(cmd *cobra.Command, args []string) error {
	osfs := fs.NewOSFileSystem()

	absRoot, err := filepath.Abs(viper.GetString("package"))
	if err != nil {
		return fmt.Errorf("invalid package directory: %w", err)
	}

	entryFiles, err := collectEntryFiles(cmd, args, absRoot)
	if err != nil {
		return err
	}
	if len(entryFiles) == 0 {
		return fmt.Errorf("no entry points: provide entry file arguments or use --glob")
	}

	ctx, err := buildContext(cmd, osfs, absRoot)
	if err != nil {
		return err
	}

	manualEntries, err := parseManualEntries(cmd)
	if err != nil {
		return err
	}

	entrypoints := make([]chunkgraph.EntryPoint, len(entryFiles))
	for i, f := range entryFiles {
		entrypoints[i] = chunkgraph.EntryPoint{Name: f, Files: []string{f}}
	}

	result, err := pipeline.Run(ctx, pipeline.Input{
		EntryPoints:       entrypoints,
		ManualEntryPoints: manualEntries,
	})
	if err != nil {
		return fmt.Errorf("split failed: %w", err)
	}

	nameStyle, err := parseNameStyle(cmd)
	if err != nil {
		return err
	}
	namePrefix, _ := cmd.Flags().GetString("name-prefix")
	mapper := chunkgraph.NewNameMapper(nameStyle, result.DepGraph.Primary(), absRoot, namePrefix)

	emitted, err := chunkgraph.Emit(result.DepGraph, mapper)
	if err != nil {
		return fmt.Errorf("emit failed: %w", err)
	}

	for _, missing := range emitted.EntrypointMissing {
		fmt.Fprintf(os.Stderr, "warning: %s\n", missing.Error())
	}

	format, _ := cmd.Flags().GetString("format")
	if err := writeResult(osfs, format, emitted); err != nil {
		return err
	}

	if len(emitted.EntrypointMissing) > 0 {
		return fmt.Errorf("%d chunk(s) reported ChunkEntrypointMissing", len(emitted.EntrypointMissing))
	}
	return nil
}

// collectEntryFiles gathers initial entry point files from positional
// arguments (in order, first is primary) and an optional --glob pattern,
// deduplicating by absolute path. Glob matches are appended after
// positional args so the primary entry is always whichever the caller
// named explicitly.
func collectEntryFiles(cmd *cobra.Command, args []string, absRoot string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) error {
		abs := path
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(absRoot, path)
		}
		if _, exists := seen[abs]; exists {
			return nil
		}
		seen[abs] = struct{}{}
		files = append(files, abs)
		return nil
	}

	for _, arg := range args {
		if err := add(arg); err != nil {
			return nil, err
		}
	}

	globPattern, _ := cmd.Flags().GetString("glob")
	if globPattern != "" {
		matches, err := doublestar.FilepathGlob(globPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern: %w", err)
		}
		for _, match := range matches {
			absPath, err := filepath.Abs(match)
			if err != nil {
				return nil, fmt.Errorf("invalid file path %q: %w", match, err)
			}
			if err := add(absPath); err != nil {
				return nil, err
			}
		}
	}

	return files, nil
}

// parseManualEntries parses repeated --manual-entry parent=child flags
// into chunkgraph.ManualEntryPoint values, resolving both sides against
// absRoot.
func parseManualEntries(cmd *cobra.Command) ([]chunkgraph.ManualEntryPoint, error) {
	raw, _ := cmd.Flags().GetStringSlice("manual-entry")
	absRoot, err := filepath.Abs(viper.GetString("package"))
	if err != nil {
		return nil, err
	}

	var out []chunkgraph.ManualEntryPoint
	for _, entry := range raw {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid --manual-entry %q: want parent=child", entry)
		}
		parent := parts[0]
		if !filepath.IsAbs(parent) {
			parent = filepath.Join(absRoot, parent)
		}
		child := parts[1]
		if !filepath.IsAbs(child) {
			child = filepath.Join(absRoot, child)
		}
		out = append(out, chunkgraph.ManualEntryPoint{
			Parent: parent,
			Child:  chunkgraph.EntryPoint{Name: child, Files: []string{child}},
		})
	}
	return out, nil
}

func parseNameStyle(cmd *cobra.Command) (chunkgraph.NameStyle, error) {
	style, _ := cmd.Flags().GetString("name-style")
	switch style {
	case "", "entrypoint":
		return chunkgraph.NameStyleEntrypoint, nil
	case "numbered":
		return chunkgraph.NameStyleNumbered, nil
	default:
		return 0, fmt.Errorf("invalid --name-style %q: must be one of entrypoint, numbered", style)
	}
}

// buildContext assembles a buildctx.Context from the split command's
// flags: the main-fields preference order, the legacy goog base path,
// and the namespace map loaded from --goog-deps.
func buildContext(cmd *cobra.Command, osfs fs.FileSystem, absRoot string) (*buildctx.Context, error) {
	ctx := buildctx.New(osfs, absRoot)

	if fields, _ := cmd.Flags().GetStringSlice("main-fields"); len(fields) > 0 {
		ctx = ctx.WithMainFields(fields)
	}

	googBase, _ := cmd.Flags().GetString("goog-base")
	if googBase != "" {
		if !filepath.IsAbs(googBase) {
			googBase = filepath.Join(absRoot, googBase)
		}
		ctx = ctx.WithLegacyBase(googBase)
	}

	depsFiles, _ := cmd.Flags().GetStringSlice("goog-deps")
	if len(depsFiles) > 0 {
		for i, df := range depsFiles {
			if !filepath.IsAbs(df) {
				depsFiles[i] = filepath.Join(absRoot, df)
			}
		}
		nsMap, err := buildctx.LoadNamespaceMap(osfs, depsFiles, nil)
		if err != nil {
			return nil, fmt.Errorf("loading --goog-deps: %w", err)
		}
		ctx = ctx.WithNamespaceMap(nsMap)
	}

	ctx = ctx.WithLogger(diag.StderrLogger{})
	return ctx, nil
}

// writeResult writes the emit result to stdout or --output in the
// requested format: "json" for the full EmitResult, "chunk-only" for
// just the --chunk flag lines, one per line.
func writeResult(osfs fs.FileSystem, format string, emitted *chunkgraph.EmitResult) error {
	var out []byte
	switch format {
	case "json":
		b, err := json.MarshalIndent(emitted, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}
		out = append(b, '\n')
	case "chunk-only":
		out = []byte(strings.Join(emitted.Chunk, "\n") + "\n")
	default:
		return fmt.Errorf("invalid --format %q: must be one of json, chunk-only", format)
	}

	if output := viper.GetString("output"); output != "" {
		return osfs.WriteFile(output, out, 0644)
	}
	_, err := os.Stdout.Write(out)
	return err
}

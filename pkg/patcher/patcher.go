// Package patcher cross-references imports against export surfaces and
// adds visibility for referenced-but-unexported top-level declarations.
package patcher

import (
	"log/slog"
	"sort"

	"github.com/gnana997/barrelgen/pkg/analyzer"
)

// Patch adds export bindings to one file. A patch never invents a
// declaration, it only exposes existing ones.
type Patch struct {
	// Path is the file receiving the export statement.
	Path string

	// Names are the declaration names to expose, sorted.
	Names []string
}

// Diagnostic reports an imported name with no matching declaration in the
// resolved target module. The target file is left untouched.
type Diagnostic struct {
	// Importer is the file whose import could not be satisfied.
	Importer string

	// Source is the module specifier as written.
	Source string

	// Target is the resolved path of the imported file.
	Target string

	// Name is the imported name that resolved nowhere.
	Name string

	// Line is the 1-based line of the import statement.
	Line int
}

// Patcher computes missing-export patches over a complete project
// snapshot.
type Patcher struct {
	logger *slog.Logger
}

// New creates a Patcher.
func New(logger *slog.Logger) *Patcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Patcher{logger: logger}
}

// Compute walks every local import binding in the snapshot and decides,
// per target file, which unexported declarations need an export statement.
// Names that neither resolve to an export nor to a declaration become
// diagnostics, unless the target re-exports wildcards whose surface cannot
// be enumerated here.
//
// Running Compute over an already-patched snapshot yields no patches: the
// patched names are part of the export surface by then.
func (p *Patcher) Compute(files map[string]*analyzer.FileAnalysis) ([]Patch, []Diagnostic) {
	missing := make(map[string]map[string]bool)
	var diagnostics []Diagnostic

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		fa := files[path]
		for _, imp := range fa.Imports {
			if imp.ResolvedPath == "" {
				continue
			}
			target, ok := files[imp.ResolvedPath]
			if !ok {
				continue
			}

			for _, binding := range imp.Bindings {
				name := binding.Imported
				if name == "default" || name == "*" || name == "" {
					continue
				}
				if target.HasExport(name) {
					continue
				}

				if decl := target.Declaration(name); decl != nil && !decl.Exported {
					if missing[target.Path] == nil {
						missing[target.Path] = make(map[string]bool)
					}
					missing[target.Path][name] = true
					continue
				}

				if hasWildcardReexport(target) {
					continue
				}

				diagnostics = append(diagnostics, Diagnostic{
					Importer: fa.Path,
					Source:   imp.Source,
					Target:   target.Path,
					Name:     name,
					Line:     imp.StartLine,
				})
				p.logger.Warn("unresolved import",
					"importer", fa.Path,
					"name", name,
					"target", target.Path)
			}
		}
	}

	patches := make([]Patch, 0, len(missing))
	for path, names := range missing {
		patch := Patch{Path: path}
		for name := range names {
			patch.Names = append(patch.Names, name)
		}
		sort.Strings(patch.Names)
		patches = append(patches, patch)
	}
	sort.Slice(patches, func(i, j int) bool {
		return patches[i].Path < patches[j].Path
	})

	return patches, diagnostics
}

// Apply appends the export statement for a patch to the file's source. All
// content before the appended statement is preserved byte for byte.
func Apply(source []byte, patch Patch) []byte {
	if len(patch.Names) == 0 {
		return source
	}

	stmt := "export { "
	for i, name := range patch.Names {
		if i > 0 {
			stmt += ", "
		}
		stmt += name
	}
	stmt += " };\n"

	out := make([]byte, 0, len(source)+len(stmt)+1)
	out = append(out, source...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, stmt...)
	return out
}

func hasWildcardReexport(fa *analyzer.FileAnalysis) bool {
	for _, rec := range fa.Exports {
		if rec.IsWildcard {
			return true
		}
	}
	return false
}

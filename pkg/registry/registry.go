// Package registry aggregates export surfaces per directory and resolves
// name collisions into a deterministic barrel plan.
package registry

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/gnana997/barrelgen/pkg/analyzer"
)

// Contributor is one (file, record) pair providing an exported name.
type Contributor struct {
	// Path is the absolute path of the contributing file.
	Path string

	Record analyzer.ExportRecord

	// DefaultAlias marks a synthesized `default as Name` contribution: the
	// file has a default export whose identifier is not already a named
	// export of the same file. The alias participates in collision
	// detection like any real export.
	DefaultAlias bool
}

// DirectoryContext is the set of analyzed sibling files sharing one parent
// directory, barrels excluded.
type DirectoryContext struct {
	Dir string

	// Files are sorted by base name for deterministic output.
	Files []*analyzer.FileAnalysis
}

// ExportRegistry maps each exported name of a directory to its
// contributors.
type ExportRegistry struct {
	Dir   string
	Names map[string][]Contributor
}

// BuildDirectoryContexts groups analyses by parent directory. Files named
// like the barrel are left out so a stale generated barrel never
// contributes to its own successor.
func BuildDirectoryContexts(files []*analyzer.FileAnalysis, barrelName string) []*DirectoryContext {
	byDir := make(map[string]*DirectoryContext)

	for _, fa := range files {
		if filepath.Base(fa.Path) == barrelName {
			continue
		}

		dir := filepath.Dir(fa.Path)
		ctx, ok := byDir[dir]
		if !ok {
			ctx = &DirectoryContext{Dir: dir}
			byDir[dir] = ctx
		}
		ctx.Files = append(ctx.Files, fa)
	}

	contexts := make([]*DirectoryContext, 0, len(byDir))
	for _, ctx := range byDir {
		sort.Slice(ctx.Files, func(i, j int) bool {
			return filepath.Base(ctx.Files[i].Path) < filepath.Base(ctx.Files[j].Path)
		})
		contexts = append(contexts, ctx)
	}

	sort.Slice(contexts, func(i, j int) bool {
		return contexts[i].Dir < contexts[j].Dir
	})

	return contexts
}

// Registry builds the name to contributors map for the directory.
//
// Wildcard re-exports are not entered: their names cannot be enumerated
// without transitively resolving the target module, and they flow through
// the file's own wildcard line unchanged. A default export contributes
// under its identifier as a synthesized alias, except when the same file
// already exports that identifier by name; the named export always wins
// and no alias is synthesized.
func (dc *DirectoryContext) Registry() *ExportRegistry {
	reg := &ExportRegistry{
		Dir:   dc.Dir,
		Names: make(map[string][]Contributor),
	}

	for _, fa := range dc.Files {
		for _, rec := range fa.Exports {
			if rec.IsWildcard || rec.Name == "" {
				continue
			}

			if rec.Kind == analyzer.ExportDefault {
				if hasNamedExport(fa, rec.Name) {
					continue
				}
				reg.Names[rec.Name] = append(reg.Names[rec.Name], Contributor{
					Path:         fa.Path,
					Record:       rec,
					DefaultAlias: true,
				})
				continue
			}

			reg.Names[rec.Name] = append(reg.Names[rec.Name], Contributor{
				Path:   fa.Path,
				Record: rec,
			})
		}
	}

	return reg
}

// SortedNames returns the registry's names in lexical order.
func (er *ExportRegistry) SortedNames() []string {
	names := make([]string, 0, len(er.Names))
	for name := range er.Names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasName reports whether any sibling file exports name.
func (er *ExportRegistry) HasName(name string) bool {
	return len(er.Names[name]) > 0
}

func hasNamedExport(fa *analyzer.FileAnalysis, name string) bool {
	for _, rec := range fa.Exports {
		if rec.Kind != analyzer.ExportDefault && rec.Name == name && !rec.IsWildcard {
			return true
		}
	}
	return false
}

// baseName returns the file name without its extension chain, so
// auth.service.ts keeps its dotted stem (auth.service).
func baseName(path string) string {
	base := filepath.Base(path)
	if idx := strings.LastIndex(base, "."); idx > 0 {
		return base[:idx]
	}
	return base
}

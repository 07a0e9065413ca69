// Package emitter renders resolved barrel plans into deterministic
// aggregator modules and writes them to disk.
package emitter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gnana997/barrelgen/pkg/registry"
)

// Header is the first line of every generated barrel.
const Header = "// Code generated by barrelgen. DO NOT EDIT."

// Emitter renders and writes per-directory barrels.
type Emitter struct {
	barrelName string
	logger     *slog.Logger
}

// New creates an Emitter writing barrels under the given file name
// (index.ts by convention).
func New(barrelName string, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Emitter{
		barrelName: barrelName,
		logger:     logger,
	}
}

// BarrelPath returns the path the directory's barrel is written to.
func (e *Emitter) BarrelPath(dir string) string {
	return filepath.Join(dir, e.barrelName)
}

// Render produces the barrel text for a plan: plain wildcard lines first,
// then default-alias lines, then namespace lines, each group in file
// order. Regenerating an unchanged plan yields byte-identical output.
func (e *Emitter) Render(plan *registry.Plan) string {
	var plain, aliases, namespaced []string

	files := make([]registry.FilePlan, len(plan.Files))
	copy(files, plan.Files)
	sort.Slice(files, func(i, j int) bool {
		return filepath.Base(files[i].Path) < filepath.Base(files[j].Path)
	})

	for _, fp := range files {
		spec := moduleSpecifier(fp.Path)

		switch fp.Mode {
		case registry.FileModePlain:
			plain = append(plain, exportLine("*", fp.TypeOnly, spec))
			if fp.DefaultAlias != "" {
				clause := fmt.Sprintf("{ default as %s }", fp.DefaultAlias)
				aliases = append(aliases, exportLine(clause, fp.DefaultTypeOnly, spec))
			}
		case registry.FileModeNamespaced:
			clause := fmt.Sprintf("* as %s", SanitizeAlias(moduleStem(fp.Path)))
			namespaced = append(namespaced, exportLine(clause, fp.TypeOnly, spec))
		}
	}

	lines := make([]string, 0, len(plain)+len(aliases)+len(namespaced)+1)
	lines = append(lines, Header)
	lines = append(lines, plain...)
	lines = append(lines, aliases...)
	lines = append(lines, namespaced...)

	return strings.Join(lines, "\n") + "\n"
}

// Emit writes the rendered barrel, skipping the write when the file
// already holds identical content. It returns the barrel path and whether
// the file changed.
func (e *Emitter) Emit(plan *registry.Plan) (string, bool, error) {
	path := e.BarrelPath(plan.Dir)

	if len(plan.Files) == 0 {
		return path, false, nil
	}

	content := e.Render(plan)

	if existing, err := os.ReadFile(path); err == nil && string(existing) == content {
		return path, false, nil
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return path, false, fmt.Errorf("failed to write barrel %s: %w", path, err)
	}

	e.logger.Debug("wrote barrel", "path", path, "files", len(plan.Files))
	return path, true, nil
}

func exportLine(clause string, typeOnly bool, spec string) string {
	if typeOnly {
		return fmt.Sprintf("export type %s from '%s';", clause, spec)
	}
	return fmt.Sprintf("export %s from '%s';", clause, spec)
}

// moduleSpecifier is the extensionless relative specifier for a sibling
// file: /src/auth/auth.service.ts becomes ./auth.service.
func moduleSpecifier(path string) string {
	return "./" + moduleStem(path)
}

// moduleStem strips the final extension only, keeping dotted stems intact
// (auth.service.ts keeps auth.service).
func moduleStem(path string) string {
	base := filepath.Base(path)
	if idx := strings.LastIndex(base, "."); idx > 0 {
		return base[:idx]
	}
	return base
}

// SanitizeAlias derives a namespace binding identifier from a file stem:
// split on '.' and '-', camel-case join. The result never contains a
// character that is illegal in an identifier.
func SanitizeAlias(stem string) string {
	parts := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '.' || r == '-'
	})
	if len(parts) == 0 {
		return "mod"
	}

	var b strings.Builder
	for i, part := range parts {
		if i == 0 {
			b.WriteString(part)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}

	alias := b.String()
	if alias == "" {
		return "mod"
	}
	if alias[0] >= '0' && alias[0] <= '9' {
		alias = "_" + alias
	}
	return alias
}

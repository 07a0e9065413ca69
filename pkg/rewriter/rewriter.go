// Package rewriter rewrites import statements so that bindings used only
// in type positions are imported as type-only, splitting mixed statements
// and merging statements sharing one module specifier.
package rewriter

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/gnana997/barrelgen/pkg/analyzer"
	"github.com/gnana997/barrelgen/pkg/classifier"
)

// Edit replaces the byte range [StartByte, EndByte) with Replacement. An
// empty Replacement deletes the range.
type Edit struct {
	StartByte   uint32
	EndByte     uint32
	Replacement string
}

// Rewriter plans import statement edits from classifier verdicts.
type Rewriter struct {
	logger *slog.Logger
}

// New creates a Rewriter.
func New(logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rewriter{logger: logger}
}

// Plan computes the edits for one file. Only imports resolving to local
// modules are touched. A statement whose bindings are all value-classified
// is left byte-for-byte as written; statements are rewritten when a
// binding must gain or lose type-onlyness, and all statements sharing a
// specifier are re-rendered as one canonical group so one module never
// keeps duplicate import lines after a split.
func (r *Rewriter) Plan(fa *analyzer.FileAnalysis, verdicts map[string]classifier.Verdict) []Edit {
	groups := groupBySource(fa.Imports)

	var edits []Edit
	for _, group := range groups {
		if !groupNeedsChange(group, verdicts) {
			continue
		}
		edits = append(edits, renderGroup(fa, group, verdicts)...)
	}

	sort.Slice(edits, func(i, j int) bool {
		return edits[i].StartByte < edits[j].StartByte
	})

	return edits
}

// Splice applies edits to source. Edits must be non-overlapping; they are
// applied back to front so earlier offsets stay valid.
func Splice(source []byte, edits []Edit) []byte {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartByte > sorted[j].StartByte
	})

	out := make([]byte, len(source))
	copy(out, source)
	for _, e := range sorted {
		if int(e.EndByte) > len(out) || e.StartByte > e.EndByte {
			continue
		}
		var next []byte
		next = append(next, out[:e.StartByte]...)
		next = append(next, e.Replacement...)
		next = append(next, out[e.EndByte:]...)
		out = next
	}
	return out
}

type importGroup struct {
	source  string
	records []analyzer.ImportRecord
}

// groupBySource collects local-module import statements per specifier, in
// statement order.
func groupBySource(imports []analyzer.ImportRecord) []importGroup {
	index := make(map[string]int)
	var groups []importGroup

	for _, rec := range imports {
		if rec.ResolvedPath == "" {
			continue
		}
		i, ok := index[rec.Source]
		if !ok {
			i = len(groups)
			index[rec.Source] = i
			groups = append(groups, importGroup{source: rec.Source})
		}
		groups[i].records = append(groups[i].records, rec)
	}

	return groups
}

// bindingIsType is the effective type-onlyness of a binding: a verdict
// overrides whatever is written; with no verdict the written form stands.
func bindingIsType(rec analyzer.ImportRecord, b analyzer.ImportBinding, verdicts map[string]classifier.Verdict) bool {
	switch verdicts[b.Local] {
	case classifier.VerdictTypeOnly:
		return true
	case classifier.VerdictValue:
		return false
	}
	return b.IsTypeOnly || rec.IsTypeOnly
}

// groupNeedsChange reports whether any binding's written type-onlyness
// disagrees with its effective one. It also flags inline `type` specifier
// markers on otherwise fully type-only statements, which are normalized to
// the statement-level form.
func groupNeedsChange(group importGroup, verdicts map[string]classifier.Verdict) bool {
	for _, rec := range group.records {
		allType := true
		for _, b := range rec.Bindings {
			effective := bindingIsType(rec, b, verdicts)
			written := b.IsTypeOnly || rec.IsTypeOnly
			if effective != written {
				return true
			}
			if !effective {
				allType = false
			}
		}
		if allType && len(rec.Bindings) > 0 && !rec.IsTypeOnly {
			return true
		}
	}
	return false
}

// renderGroup re-renders every statement of a group as canonical value
// statements followed by type statements. The first statement's range
// holds the new text; the remaining statements are deleted.
func renderGroup(fa *analyzer.FileAnalysis, group importGroup, verdicts map[string]classifier.Verdict) []Edit {
	var (
		valueDefault, typeDefault     string
		valueNamespace, typeNamespace string
		valueNamed, typeNamed         []analyzer.ImportBinding
	)

	for _, rec := range group.records {
		for _, b := range rec.Bindings {
			isType := bindingIsType(rec, b, verdicts)
			switch b.Imported {
			case "default":
				if isType {
					typeDefault = b.Local
				} else {
					valueDefault = b.Local
				}
			case "*":
				if isType {
					typeNamespace = b.Local
				} else {
					valueNamespace = b.Local
				}
			default:
				nb := analyzer.ImportBinding{Local: b.Local, Imported: b.Imported}
				if isType {
					typeNamed = appendBinding(typeNamed, nb)
				} else {
					valueNamed = appendBinding(valueNamed, nb)
				}
			}
		}
	}

	sortBindings(valueNamed)
	sortBindings(typeNamed)

	var stmts []string
	spec := group.source

	switch {
	case valueDefault != "" && len(valueNamed) > 0:
		stmts = append(stmts, fmt.Sprintf("import %s, %s from '%s';", valueDefault, namedClause(valueNamed), spec))
	case valueDefault != "" && valueNamespace != "":
		stmts = append(stmts, fmt.Sprintf("import %s, * as %s from '%s';", valueDefault, valueNamespace, spec))
		valueNamespace = ""
	case valueDefault != "":
		stmts = append(stmts, fmt.Sprintf("import %s from '%s';", valueDefault, spec))
	case len(valueNamed) > 0:
		stmts = append(stmts, fmt.Sprintf("import %s from '%s';", namedClause(valueNamed), spec))
	}
	if valueNamespace != "" {
		stmts = append(stmts, fmt.Sprintf("import * as %s from '%s';", valueNamespace, spec))
	}

	// `import type` never combines a default or namespace clause with
	// named specifiers, so the type side is up to three statements.
	if typeDefault != "" {
		stmts = append(stmts, fmt.Sprintf("import type %s from '%s';", typeDefault, spec))
	}
	if typeNamespace != "" {
		stmts = append(stmts, fmt.Sprintf("import type * as %s from '%s';", typeNamespace, spec))
	}
	if len(typeNamed) > 0 {
		stmts = append(stmts, fmt.Sprintf("import type %s from '%s';", namedClause(typeNamed), spec))
	}

	if len(stmts) == 0 {
		return nil
	}

	edits := []Edit{{
		StartByte:   group.records[0].StartByte,
		EndByte:     group.records[0].EndByte,
		Replacement: strings.Join(stmts, "\n"),
	}}

	for _, rec := range group.records[1:] {
		end := rec.EndByte
		if int(end) < len(fa.Source) && fa.Source[end] == '\n' {
			end++
		}
		edits = append(edits, Edit{StartByte: rec.StartByte, EndByte: end})
	}

	return edits
}

func appendBinding(list []analyzer.ImportBinding, b analyzer.ImportBinding) []analyzer.ImportBinding {
	for _, existing := range list {
		if existing.Local == b.Local && existing.Imported == b.Imported {
			return list
		}
	}
	return append(list, b)
}

func sortBindings(list []analyzer.ImportBinding) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Imported != list[j].Imported {
			return list[i].Imported < list[j].Imported
		}
		return list[i].Local < list[j].Local
	})
}

func namedClause(list []analyzer.ImportBinding) string {
	parts := make([]string, 0, len(list))
	for _, b := range list {
		if b.Local == b.Imported {
			parts = append(parts, b.Imported)
		} else {
			parts = append(parts, b.Imported+" as "+b.Local)
		}
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

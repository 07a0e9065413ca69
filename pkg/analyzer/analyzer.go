package analyzer

import (
	"fmt"
	"log/slog"
	"sort"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/barrelgen/pkg/parser"
	"github.com/gnana997/barrelgen/pkg/parser/queries"
)

// Analyzer performs unified per-file analysis.
//
// Each file is parsed ONCE; the export and import queries and the
// declaration walk all run on the same tree.
//
// Usage:
//
//	a := analyzer.New(parserManager, queryManager, logger)
//	fa, err := a.AnalyzeFile(filePath, sourceCode)
type Analyzer struct {
	parserManager *parser.Manager
	queryManager  *queries.Manager
	logger        *slog.Logger
}

// New creates a new Analyzer.
func New(pm *parser.Manager, qm *queries.Manager, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Analyzer{
		parserManager: pm,
		queryManager:  qm,
		logger:        logger,
	}
}

// AnalyzeFile parses a file once and extracts its export surface, import
// statements, and top-level declarations.
//
// The returned FileAnalysis owns sourceCode; callers must not mutate the
// slice afterwards.
func (a *Analyzer) AnalyzeFile(filePath string, sourceCode []byte) (*FileAnalysis, error) {
	lang := parser.DetectLanguage(filePath)
	if lang == parser.LanguageUnknown {
		return nil, fmt.Errorf("unsupported language for file: %s", filePath)
	}
	isTSX := parser.IsTSXFile(filePath)

	tree, err := a.parserManager.Parse(sourceCode, lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	defer tree.Close()

	fa := &FileAnalysis{
		Path:     filePath,
		Language: lang,
		IsTSX:    isTSX,
		Source:   sourceCode,
	}

	// Declarations first: export kind resolution for `export default Foo`
	// and `export { Foo }` needs the local declaration inventory.
	fa.Declarations = collectDeclarations(tree.RootNode(), sourceCode)

	exportQuery, err := a.queryManager.GetQuery(lang, isTSX, queries.QueryTypeExports)
	if err != nil {
		return nil, fmt.Errorf("failed to get export query: %w", err)
	}
	exportMatches, err := a.queryManager.ExecuteQuery(tree, exportQuery, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to execute export query: %w", err)
	}
	fa.Exports = buildExportRecords(exportMatches, fa.Declarations)

	importQuery, err := a.queryManager.GetQuery(lang, isTSX, queries.QueryTypeImports)
	if err != nil {
		return nil, fmt.Errorf("failed to get import query: %w", err)
	}
	importMatches, err := a.queryManager.ExecuteQuery(tree, importQuery, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to execute import query: %w", err)
	}
	fa.Imports = buildImportRecords(importMatches)

	// Mark declarations referenced by export clauses as exported.
	markExportedDeclarations(fa)

	a.logger.Debug("analyzed file",
		"file", filePath,
		"exports", len(fa.Exports),
		"imports", len(fa.Imports),
		"declarations", len(fa.Declarations))

	return fa, nil
}

// ParseTree exposes a parsed tree for callers that need direct AST access
// (the usage classifier). The caller must Close() the returned tree.
func (a *Analyzer) ParseTree(fa *FileAnalysis) (*ts.Tree, error) {
	return a.parserManager.Parse(fa.Source, fa.Language, fa.IsTSX)
}

// QueryManager returns the underlying query manager (shared with the
// usage classifier so compiled queries are reused).
func (a *Analyzer) QueryManager() *queries.Manager {
	return a.queryManager
}

// markExportedDeclarations flips Exported on declarations whose names
// appear in the export surface, so a later patcher pass sees patched
// files as already exported.
func markExportedDeclarations(fa *FileAnalysis) {
	exported := make(map[string]bool, len(fa.Exports))
	for _, rec := range fa.Exports {
		if rec.Kind == ExportNamedValue || rec.Kind == ExportNamedType {
			exported[rec.Name] = true
		}
	}
	for i := range fa.Declarations {
		if exported[fa.Declarations[i].Name] {
			fa.Declarations[i].Exported = true
		}
	}
}

// sortExports orders records by (Name, Kind) so the export surface is
// stable regardless of statement order in the source file. Wildcard
// re-exports sort last.
func sortExports(records []ExportRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.IsWildcard != b.IsWildcard {
			return !a.IsWildcard
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Kind < b.Kind
	})
}

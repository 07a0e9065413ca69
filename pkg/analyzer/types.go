// Package analyzer builds the per-file analysis snapshot the
// reconciliation passes run on: the top-level export surface, the import
// statements with their bindings, and the top-level declaration inventory.
package analyzer

import "github.com/gnana997/barrelgen/pkg/parser"

// ExportKind classifies an export record.
type ExportKind string

const (
	// ExportDefault is the module's default export
	ExportDefault ExportKind = "default"
	// ExportNamedValue is a named export carrying a runtime binding
	ExportNamedValue ExportKind = "named-value"
	// ExportNamedType is a named export of a type-level construct
	ExportNamedType ExportKind = "named-type"
	// ExportReexport re-exports bindings from another module
	ExportReexport ExportKind = "re-export"
)

// ExportRecord is one entry of a module's export surface.
type ExportRecord struct {
	// Name is the externally visible name. "*" for wildcard re-exports,
	// empty for anonymous default exports.
	Name string

	Kind ExportKind

	// IsTypeOnly marks exports erased at compile time: interfaces, type
	// aliases, and `export type` clauses.
	IsTypeOnly bool

	// Source is the module specifier for re-exports, "" otherwise.
	Source string

	// IsWildcard marks `export * from` records.
	IsWildcard bool
}

// ImportBinding is one local name bound by an import statement.
type ImportBinding struct {
	// Local is the name the binding is visible under in this file.
	Local string

	// Imported is the exported name in the source module. "default" for
	// default imports, "*" for namespace imports.
	Imported string

	// IsTypeOnly is true when the binding is already type-only, either
	// via `import type { ... }` or a per-specifier `type` marker.
	IsTypeOnly bool
}

// ImportRecord is one import statement.
type ImportRecord struct {
	// Source is the module specifier as written.
	Source string

	// ResolvedPath is the absolute path of the imported file when Source
	// points into the scanned tree; filled in by the engine after the
	// scan completes, empty for external packages.
	ResolvedPath string

	// IsExternal is true for bare package specifiers.
	IsExternal bool

	// IsTypeOnly is true for statement-level `import type`.
	IsTypeOnly bool

	Bindings []ImportBinding

	// StartByte/EndByte delimit the whole statement in the source text,
	// semicolon included. The rewriter splices on these offsets.
	StartByte uint32
	EndByte   uint32

	// StartLine is the 1-based line of the statement (diagnostics).
	StartLine int
}

// DeclKind classifies a top-level declaration.
type DeclKind string

const (
	DeclClass     DeclKind = "class"
	DeclFunction  DeclKind = "function"
	DeclConst     DeclKind = "const"
	DeclLet       DeclKind = "let"
	DeclVar       DeclKind = "var"
	DeclInterface DeclKind = "interface"
	DeclTypeAlias DeclKind = "type"
	DeclEnum      DeclKind = "enum"
)

// IsTypeOnly reports whether declarations of this kind are erased at
// compile time.
func (k DeclKind) IsTypeOnly() bool {
	return k == DeclInterface || k == DeclTypeAlias
}

// Declaration is one top-level declaration in a module.
type Declaration struct {
	Name     string
	Kind     DeclKind
	Exported bool

	// EndByte is the end offset of the declaration statement; the patcher
	// uses it to splice an export statement after the declaration.
	StartByte uint32
	EndByte   uint32
}

// FileAnalysis is the immutable per-file snapshot used by every
// downstream pass within one run.
type FileAnalysis struct {
	// Path is the absolute file path.
	Path string

	Language parser.Language
	IsTSX    bool

	// Source is an owned copy of the file contents at scan time.
	Source []byte

	// Exports is the export surface, sorted by (Name, Kind) so the order
	// is stable regardless of statement order in the source.
	Exports []ExportRecord

	// Imports are in statement order.
	Imports []ImportRecord

	// Declarations are in statement order.
	Declarations []Declaration
}

// Declaration returns the top-level declaration with the given name, or nil.
func (fa *FileAnalysis) Declaration(name string) *Declaration {
	for i := range fa.Declarations {
		if fa.Declarations[i].Name == name {
			return &fa.Declarations[i]
		}
	}
	return nil
}

// HasExport reports whether name is present in the export surface.
func (fa *FileAnalysis) HasExport(name string) bool {
	for i := range fa.Exports {
		if fa.Exports[i].Name == name {
			return true
		}
	}
	return false
}

// DefaultExport returns the default export record, or nil.
func (fa *FileAnalysis) DefaultExport() *ExportRecord {
	for i := range fa.Exports {
		if fa.Exports[i].Kind == ExportDefault {
			return &fa.Exports[i]
		}
	}
	return nil
}

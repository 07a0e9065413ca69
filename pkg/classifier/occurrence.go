package classifier

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

type position int

const (
	positionType position = iota
	positionValue
)

// Node kinds whose "name" field declares a fresh binding. An identifier in
// one of those slots shadows or redefines the import rather than using it.
var declarationNameParents = map[string]bool{
	"variable_declarator":            true,
	"function_declaration":           true,
	"generator_function_declaration": true,
	"class_declaration":              true,
	"abstract_class_declaration":     true,
	"interface_declaration":          true,
	"type_alias_declaration":         true,
	"enum_declaration":               true,
	"module_declaration":             true,
	"required_parameter":             true,
	"optional_parameter":             true,
	"method_definition":              true,
	"property_signature":             true,
	"public_field_definition":        true,
}

// classifyOccurrence decides whether an identifier occurrence counts as a
// type position, a value position, or not at all.
//
// The grammar does most of the work: identifiers in annotations, generic
// arguments, extends clauses and as-casts parse as type_identifier nodes,
// so the node kind of the occurrence itself is the primary signal. The
// exceptions handled here are qualified type names (the namespace part of
// ns.Foo parses as a plain identifier even in a type position), import and
// export clauses, and declaration names.
func classifyOccurrence(node *ts.Node) (position, bool) {
	switch node.Kind() {
	case "type_identifier":
		if isDeclarationName(node) {
			return 0, false
		}
		return positionType, true

	case "shorthand_property_identifier":
		return positionValue, true

	case "identifier":
		parent := node.Parent()
		if parent == nil {
			return positionValue, true
		}

		if insideKind(node, "import_statement") {
			return 0, false
		}

		if isDeclarationName(node) {
			return 0, false
		}

		// The namespace part of a qualified type (ns.Foo in a type
		// annotation) is an identifier under nested_type_identifier.
		if withinNestedTypeIdentifier(node) {
			return positionType, true
		}

		if spec := ancestorOfKind(node, "export_specifier"); spec != nil {
			return classifyExportSpecifier(node, spec)
		}

		return positionValue, true
	}

	return 0, false
}

// classifyExportSpecifier handles identifiers inside `export { ... }`
// clauses. Re-exports with a source reference another module's names, not
// this file's bindings, so they are skipped entirely. A local re-export is
// a value use unless the clause or specifier carries a type marker, and
// only the name side counts (the alias declares a new exported name).
func classifyExportSpecifier(node *ts.Node, spec *ts.Node) (position, bool) {
	if alias := spec.ChildByFieldName("alias"); alias != nil && alias.StartByte() == node.StartByte() {
		return 0, false
	}

	stmt := ancestorOfKind(spec, "export_statement")
	if stmt == nil {
		return positionValue, true
	}
	if stmt.ChildByFieldName("source") != nil {
		return 0, false
	}
	if hasTypeToken(stmt) || hasTypeToken(spec) {
		return positionType, true
	}
	return positionValue, true
}

// isDeclarationName reports whether node sits in the name slot of a
// declaration-like parent.
func isDeclarationName(node *ts.Node) bool {
	parent := node.Parent()
	if parent == nil || !declarationNameParents[parent.Kind()] {
		return false
	}
	name := parent.ChildByFieldName("name")
	return name != nil && name.StartByte() == node.StartByte()
}

func withinNestedTypeIdentifier(node *ts.Node) bool {
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		switch cur.Kind() {
		case "nested_type_identifier":
			return true
		case "nested_identifier":
			continue
		default:
			return false
		}
	}
	return false
}

func insideKind(node *ts.Node, kind string) bool {
	return ancestorOfKind(node, kind) != nil
}

func ancestorOfKind(node *ts.Node, kind string) *ts.Node {
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		if cur.Kind() == kind {
			return cur
		}
	}
	return nil
}

// hasTypeToken reports whether the node carries an inline `type` keyword
// child, as in `export type { Foo }` or `export { type Foo }`.
func hasTypeToken(node *ts.Node) bool {
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "type" {
			return true
		}
	}
	return false
}

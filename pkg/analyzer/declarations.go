package analyzer

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// collectDeclarations walks the top-level statements of a module and
// records every declaration. Nested scopes are never entered: only direct
// children of the program node (and declarations wrapped in an export
// statement) count.
func collectDeclarations(root *ts.Node, source []byte) []Declaration {
	var decls []Declaration

	for i := uint(0); i < uint(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Kind() == "export_statement" {
			if decl := child.ChildByFieldName("declaration"); decl != nil {
				appendDeclarations(decl, source, true, &decls)
			}
			continue
		}
		appendDeclarations(child, source, false, &decls)
	}

	return decls
}

// appendDeclarations records the declarations introduced by a single
// statement node. Destructuring declarators are skipped: the patcher only
// ever exports simple named bindings.
func appendDeclarations(node *ts.Node, source []byte, exported bool, out *[]Declaration) {
	switch node.Kind() {
	case "lexical_declaration", "variable_declaration":
		kind := variableDeclKind(node, source)
		for i := uint(0); i < uint(node.ChildCount()); i++ {
			declarator := node.Child(i)
			if declarator.Kind() != "variable_declarator" {
				continue
			}
			name := declarator.ChildByFieldName("name")
			if name == nil || name.Kind() != "identifier" {
				continue
			}
			*out = append(*out, Declaration{
				Name:      name.Utf8Text(source),
				Kind:      kind,
				Exported:  exported,
				StartByte: uint32(node.StartByte()),
				EndByte:   uint32(node.EndByte()),
			})
		}

	case "function_declaration", "generator_function_declaration":
		appendNamedDeclaration(node, source, DeclFunction, exported, out)

	case "class_declaration", "abstract_class_declaration":
		appendNamedDeclaration(node, source, DeclClass, exported, out)

	case "interface_declaration":
		appendNamedDeclaration(node, source, DeclInterface, exported, out)

	case "type_alias_declaration":
		appendNamedDeclaration(node, source, DeclTypeAlias, exported, out)

	case "enum_declaration":
		appendNamedDeclaration(node, source, DeclEnum, exported, out)
	}
}

func appendNamedDeclaration(node *ts.Node, source []byte, kind DeclKind, exported bool, out *[]Declaration) {
	name := node.ChildByFieldName("name")
	if name == nil {
		return
	}
	*out = append(*out, Declaration{
		Name:      name.Utf8Text(source),
		Kind:      kind,
		Exported:  exported,
		StartByte: uint32(node.StartByte()),
		EndByte:   uint32(node.EndByte()),
	})
}

// variableDeclKind decides const/let/var from the declaration keyword.
func variableDeclKind(node *ts.Node, source []byte) DeclKind {
	first := node.Child(0)
	if first == nil {
		return DeclConst
	}
	switch first.Utf8Text(source) {
	case "let":
		return DeclLet
	case "var":
		return DeclVar
	default:
		return DeclConst
	}
}

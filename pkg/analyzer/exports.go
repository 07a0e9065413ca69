package analyzer

import (
	"sort"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/barrelgen/pkg/parser/queries"
)

// exportStmt accumulates the captures of one export_statement before it is
// converted into ExportRecords.
type exportStmt struct {
	startByte      uint32
	hasDefault     bool
	defaultIdent   string
	valueNames     []string
	typeNames      []string
	typeMarker     bool
	source         string
	namespaceAlias string
	specs          map[uint32]*exportSpec
	specOrder      []uint32
}

// exportSpec is one specifier within an export clause.
type exportSpec struct {
	name       string
	alias      string
	typeMarker bool
}

// buildExportRecords regroups export query captures per statement and
// converts each statement into its ExportRecords.
//
// Query patterns match one capture at a time (one match per specifier, one
// per declared name), so captures sharing an enclosing export_statement
// must be merged before records can be built.
func buildExportRecords(matches []queries.QueryMatch, decls []Declaration) []ExportRecord {
	stmts := make(map[uint32]*exportStmt)
	var order []uint32

	stmtFor := func(node *ts.Node) *exportStmt {
		stmtNode := ancestorOfKind(node, "export_statement")
		if stmtNode == nil {
			return nil
		}
		// Only the module's own top-level surface counts; exports inside
		// ambient module or namespace bodies are ignored.
		if parent := stmtNode.Parent(); parent == nil || parent.Kind() != "program" {
			return nil
		}
		key := uint32(stmtNode.StartByte())
		st, ok := stmts[key]
		if !ok {
			st = &exportStmt{startByte: key, specs: make(map[uint32]*exportSpec)}
			stmts[key] = st
			order = append(order, key)
		}
		return st
	}

	specFor := func(st *exportStmt, node *ts.Node) *exportSpec {
		specNode := ancestorOfKind(node, "export_specifier")
		if specNode == nil {
			return nil
		}
		key := uint32(specNode.StartByte())
		sp, ok := st.specs[key]
		if !ok {
			sp = &exportSpec{}
			st.specs[key] = sp
			st.specOrder = append(st.specOrder, key)
		}
		return sp
	}

	for _, match := range matches {
		for _, capture := range match.Captures {
			st := stmtFor(capture.Node)
			if st == nil {
				continue
			}

			switch capture.Name {
			case "export.value.name":
				st.valueNames = append(st.valueNames, capture.Text)
			case "export.type.name":
				st.typeNames = append(st.typeNames, capture.Text)
			case "export.default.marker":
				st.hasDefault = true
			case "export.default.identifier":
				st.defaultIdent = capture.Text
			case "export.typemarker":
				st.typeMarker = true
			case "export.source":
				st.source = capture.Text
			case "export.namespace":
				st.namespaceAlias = capture.Text
			case "export.spec.name":
				if sp := specFor(st, capture.Node); sp != nil {
					sp.name = capture.Text
				}
			case "export.spec.alias":
				if sp := specFor(st, capture.Node); sp != nil {
					sp.alias = capture.Text
				}
			case "export.spec.typemarker":
				if sp := specFor(st, capture.Node); sp != nil {
					sp.typeMarker = true
				}
			}
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	var records []ExportRecord
	for _, key := range order {
		records = append(records, stmts[key].toRecords(decls)...)
	}

	sortExports(records)
	return records
}

// toRecords converts one accumulated export statement into ExportRecords.
func (st *exportStmt) toRecords(decls []Declaration) []ExportRecord {
	var records []ExportRecord

	// export * as ns from './mod'
	if st.namespaceAlias != "" {
		return append(records, ExportRecord{
			Name:       st.namespaceAlias,
			Kind:       ExportReexport,
			IsTypeOnly: st.typeMarker,
			Source:     st.source,
		})
	}

	// Re-exports: export * from / export { a, b as c } from
	if st.source != "" {
		if len(st.specOrder) == 0 {
			return append(records, ExportRecord{
				Name:       "*",
				Kind:       ExportReexport,
				IsTypeOnly: st.typeMarker,
				Source:     st.source,
				IsWildcard: true,
			})
		}
		for _, specKey := range st.specOrder {
			sp := st.specs[specKey]
			records = append(records, ExportRecord{
				Name:       sp.exportedName(),
				Kind:       ExportReexport,
				IsTypeOnly: st.typeMarker || sp.typeMarker,
				Source:     st.source,
			})
		}
		return records
	}

	// export default <...>: exactly one record; the declared names (if
	// any) belong to the default binding, not to named exports.
	if st.hasDefault {
		name := st.defaultIdent
		if name == "" && len(st.valueNames) > 0 {
			name = st.valueNames[0]
		}
		if name == "" && len(st.typeNames) > 0 {
			name = st.typeNames[0]
		}
		return append(records, ExportRecord{
			Name:       name,
			Kind:       ExportDefault,
			IsTypeOnly: defaultIsTypeOnly(name, st, decls),
		})
	}

	// export <declaration>
	for _, name := range st.valueNames {
		records = append(records, ExportRecord{Name: name, Kind: ExportNamedValue})
	}
	for _, name := range st.typeNames {
		records = append(records, ExportRecord{Name: name, Kind: ExportNamedType, IsTypeOnly: true})
	}

	// export { a, b as c } without source: kind comes from the local
	// declaration. An unresolvable name defaults to a value export;
	// misclassifying a value as type-only could strip runtime behavior.
	for _, specKey := range st.specOrder {
		sp := st.specs[specKey]
		typeOnly := st.typeMarker || sp.typeMarker
		if !typeOnly {
			if decl := findDeclaration(decls, sp.name); decl != nil {
				typeOnly = decl.Kind.IsTypeOnly()
			}
		}
		kind := ExportNamedValue
		if typeOnly {
			kind = ExportNamedType
		}
		records = append(records, ExportRecord{
			Name:       sp.exportedName(),
			Kind:       kind,
			IsTypeOnly: typeOnly,
		})
	}

	return records
}

// exportedName is the externally visible name of a specifier.
func (sp *exportSpec) exportedName() string {
	if sp.alias != "" {
		return sp.alias
	}
	return sp.name
}

// defaultIsTypeOnly resolves whether a default export is erased at compile
// time by looking at the local declaration of its identifier. Unresolved
// defaults are treated as values.
func defaultIsTypeOnly(name string, st *exportStmt, decls []Declaration) bool {
	if len(st.typeNames) > 0 && len(st.valueNames) == 0 && st.defaultIdent == "" {
		// export default interface Foo {}
		return true
	}
	if name == "" {
		return false
	}
	if decl := findDeclaration(decls, name); decl != nil {
		return decl.Kind.IsTypeOnly()
	}
	return false
}

func findDeclaration(decls []Declaration, name string) *Declaration {
	for i := range decls {
		if decls[i].Name == name {
			return &decls[i]
		}
	}
	return nil
}

// ancestorOfKind walks up from node (inclusive) to the first ancestor of
// the given kind.
func ancestorOfKind(node *ts.Node, kind string) *ts.Node {
	for n := node; n != nil; n = n.Parent() {
		if n.Kind() == kind {
			return n
		}
	}
	return nil
}

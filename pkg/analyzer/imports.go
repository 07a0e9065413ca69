package analyzer

import (
	"sort"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/barrelgen/pkg/parser/queries"
)

// importStmt accumulates the captures of one import_statement.
type importStmt struct {
	startByte  uint32
	endByte    uint32
	startLine  int
	source     string
	typeMarker bool
	defaultTo  string
	namespace  string
	specs      map[uint32]*importSpec
	specOrder  []uint32
}

// importSpec is one specifier within a named import clause.
type importSpec struct {
	name       string
	alias      string
	typeMarker bool
}

// buildImportRecords regroups import query captures per statement and
// converts each statement into an ImportRecord. Records come out in
// statement order.
func buildImportRecords(matches []queries.QueryMatch) []ImportRecord {
	stmts := make(map[uint32]*importStmt)
	var order []uint32

	stmtFor := func(node *ts.Node) *importStmt {
		stmtNode := ancestorOfKind(node, "import_statement")
		if stmtNode == nil {
			return nil
		}
		key := uint32(stmtNode.StartByte())
		st, ok := stmts[key]
		if !ok {
			st = &importStmt{
				startByte: key,
				endByte:   uint32(stmtNode.EndByte()),
				startLine: int(stmtNode.StartPosition().Row) + 1,
				specs:     make(map[uint32]*importSpec),
			}
			stmts[key] = st
			order = append(order, key)
		}
		return st
	}

	specFor := func(st *importStmt, node *ts.Node) *importSpec {
		specNode := ancestorOfKind(node, "import_specifier")
		if specNode == nil {
			return nil
		}
		key := uint32(specNode.StartByte())
		sp, ok := st.specs[key]
		if !ok {
			sp = &importSpec{}
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
			case "import.source":
				st.source = capture.Text
			case "import.typemarker":
				st.typeMarker = true
			case "import.default":
				st.defaultTo = capture.Text
			case "import.namespace":
				st.namespace = capture.Text
			case "import.spec.name":
				if sp := specFor(st, capture.Node); sp != nil {
					sp.name = capture.Text
				}
			case "import.spec.alias":
				if sp := specFor(st, capture.Node); sp != nil {
					sp.alias = capture.Text
				}
			case "import.spec.typemarker":
				if sp := specFor(st, capture.Node); sp != nil {
					sp.typeMarker = true
				}
			}
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	records := make([]ImportRecord, 0, len(order))
	for _, key := range order {
		st := stmts[key]

		rec := ImportRecord{
			Source:     st.source,
			IsExternal: isExternalSpecifier(st.source),
			IsTypeOnly: st.typeMarker,
			StartByte:  st.startByte,
			EndByte:    st.endByte,
			StartLine:  st.startLine,
		}

		if st.defaultTo != "" {
			rec.Bindings = append(rec.Bindings, ImportBinding{
				Local:      st.defaultTo,
				Imported:   "default",
				IsTypeOnly: st.typeMarker,
			})
		}
		if st.namespace != "" {
			rec.Bindings = append(rec.Bindings, ImportBinding{
				Local:      st.namespace,
				Imported:   "*",
				IsTypeOnly: st.typeMarker,
			})
		}
		for _, specKey := range st.specOrder {
			sp := st.specs[specKey]
			local := sp.alias
			if local == "" {
				local = sp.name
			}
			rec.Bindings = append(rec.Bindings, ImportBinding{
				Local:      local,
				Imported:   sp.name,
				IsTypeOnly: st.typeMarker || sp.typeMarker,
			})
		}

		records = append(records, rec)
	}

	return records
}

// isExternalSpecifier reports whether a module specifier names a package
// rather than a file in the scanned tree.
func isExternalSpecifier(source string) bool {
	return !strings.HasPrefix(source, ".") && !strings.HasPrefix(source, "/")
}

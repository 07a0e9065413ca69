// Package queries provides tree-sitter query compilation, caching, and execution.
package queries

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/barrelgen/pkg/parser"
	"github.com/gnana997/barrelgen/pkg/parser/queries/exports"
	"github.com/gnana997/barrelgen/pkg/parser/queries/imports"
	"github.com/gnana997/barrelgen/pkg/parser/queries/refs"
)

// QueryType identifies which query to execute.
type QueryType int

const (
	// QueryTypeExports extracts the top-level export surface of a module
	QueryTypeExports QueryType = iota
	// QueryTypeImports extracts import statements and their bindings
	QueryTypeImports
	// QueryTypeRefs extracts identifier occurrences for usage classification
	QueryTypeRefs
)

// String returns the string representation of a QueryType.
func (qt QueryType) String() string {
	switch qt {
	case QueryTypeExports:
		return "exports"
	case QueryTypeImports:
		return "imports"
	case QueryTypeRefs:
		return "refs"
	default:
		return "unknown"
	}
}

// queryKey uniquely identifies a compiled query.
//
// isTSX is part of the key: a query must be compiled against the exact
// grammar the tree was parsed with, and TSX is a distinct grammar.
type queryKey struct {
	lang  parser.Language
	isTSX bool
	qtype QueryType
}

// Manager compiles and caches tree-sitter queries.
//
//   - Lazy compilation: queries compiled on first use
//   - Thread-safe caching via sync.RWMutex
//   - Compiled queries freed via Close()
type Manager struct {
	parserManager *parser.Manager
	cache         map[queryKey]*ts.Query
	mutex         sync.RWMutex
	logger        *slog.Logger
}

// NewManager creates a new query manager.
//
// The parser manager supplies grammar pointers for compilation. Logger can
// be nil (uses slog.Default()).
func NewManager(pm *parser.Manager, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		parserManager: pm,
		cache:         make(map[queryKey]*ts.Query),
		logger:        logger,
	}
}

// GetQuery returns a compiled query for the given grammar and query type.
//
// Compiled lazily on first access, cached afterwards. Thread-safe.
func (m *Manager) GetQuery(lang parser.Language, isTSX bool, qtype QueryType) (*ts.Query, error) {
	key := queryKey{lang: lang, isTSX: isTSX, qtype: qtype}

	m.mutex.RLock()
	query, exists := m.cache[key]
	m.mutex.RUnlock()

	if exists {
		return query, nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if query, exists = m.cache[key]; exists {
		return query, nil
	}

	queryString, err := queryString(lang, qtype)
	if err != nil {
		return nil, err
	}

	langPtr, err := m.parserManager.LanguagePointer(lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to get language pointer for %s: %w", lang, err)
	}

	tsLang := ts.NewLanguage(langPtr)

	query, qerr := ts.NewQuery(tsLang, queryString)
	if qerr != nil {
		return nil, fmt.Errorf("failed to compile %s query for %s: %s", qtype, lang, qerr.Message)
	}

	m.cache[key] = query

	m.logger.Debug("compiled query",
		"language", lang.String(),
		"isTSX", isTSX,
		"type", qtype.String())

	return query, nil
}

// queryString returns the query source for a language and type.
func queryString(lang parser.Language, qtype QueryType) (string, error) {
	switch qtype {
	case QueryTypeExports:
		switch lang {
		case parser.LanguageTypeScript:
			return exports.TSQueries, nil
		case parser.LanguageJavaScript:
			return exports.JSQueries, nil
		}
	case QueryTypeImports:
		switch lang {
		case parser.LanguageTypeScript:
			return imports.TSQueries, nil
		case parser.LanguageJavaScript:
			return imports.JSQueries, nil
		}
	case QueryTypeRefs:
		switch lang {
		case parser.LanguageTypeScript:
			return refs.TSQueries, nil
		case parser.LanguageJavaScript:
			return refs.JSQueries, nil
		}
	}
	return "", fmt.Errorf("no %s query for language %s", qtype, lang)
}

// ExecuteQuery runs a compiled query on a parse tree and returns structured matches.
func (m *Manager) ExecuteQuery(tree *ts.Tree, query *ts.Query, source []byte) ([]QueryMatch, error) {
	if tree == nil {
		return nil, fmt.Errorf("tree is nil")
	}
	if query == nil {
		return nil, fmt.Errorf("query is nil")
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	iter := cursor.Matches(query, tree.RootNode(), source)

	captureNames := query.CaptureNames()

	var matches []QueryMatch
	for {
		match := iter.Next()
		if match == nil {
			break
		}

		var captures []QueryCapture
		for _, capture := range match.Captures {
			var captureName string
			if int(capture.Index) < len(captureNames) {
				captureName = captureNames[capture.Index]
			}

			category, field := parseCaptureName(captureName)

			node := capture.Node
			captures = append(captures, QueryCapture{
				Name:     captureName,
				Category: category,
				Field:    field,
				Node:     &node,
				Text:     node.Utf8Text(source),
				Location: nodeLocation(&node),
			})
		}

		matches = append(matches, QueryMatch{
			PatternIndex: uint32(match.PatternIndex),
			Captures:     captures,
		})
	}

	return matches, nil
}

// Close releases all compiled queries. The Manager cannot be used after.
func (m *Manager) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.logger.Debug("closing query manager", "queries_compiled", len(m.cache))

	for key, query := range m.cache {
		if query != nil {
			query.Close()
		}
		delete(m.cache, key)
	}

	return nil
}

// QueryMatch represents a single pattern match from query execution.
type QueryMatch struct {
	// PatternIndex identifies which query pattern matched
	PatternIndex uint32

	// Captures contains all captured nodes for this match
	Captures []QueryCapture
}

// QueryCapture represents a single captured node from a query match.
type QueryCapture struct {
	// Name is the full capture name (e.g., "export.value.name")
	Name string

	// Category is the first segment of the capture name (e.g., "export")
	Category string

	// Field is the remainder after the first dot ("" if no dot)
	Field string

	// Node is the captured AST node
	Node *ts.Node

	// Text is the source code text of the captured node
	Text string

	// Location is the file location of the captured node
	Location Location
}

// Location represents a position in source code.
type Location struct {
	StartLine   uint32 // 1-based line number
	StartColumn uint32 // 1-based column number
	EndLine     uint32
	EndColumn   uint32
	StartByte   uint32 // 0-based byte offset
	EndByte     uint32
}

// parseCaptureName splits a capture name like "export.value.name" into
// ("export", "value.name"). A name with no dot returns (name, "").
func parseCaptureName(name string) (category, field string) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return name, ""
}

// nodeLocation extracts location information from a tree-sitter node.
// Converts tree-sitter's 0-based coordinates to 1-based line/column.
func nodeLocation(node *ts.Node) Location {
	start := node.StartPosition()
	end := node.EndPosition()

	return Location{
		StartLine:   uint32(start.Row + 1),
		StartColumn: uint32(start.Column + 1),
		EndLine:     uint32(end.Row + 1),
		EndColumn:   uint32(end.Column + 1),
		StartByte:   uint32(node.StartByte()),
		EndByte:     uint32(node.EndByte()),
	}
}

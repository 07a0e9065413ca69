// Package classifier decides, per importing file, whether each imported
// local name is used only in type positions or carries runtime behavior.
package classifier

import (
	"fmt"
	"log/slog"

	"github.com/gnana997/barrelgen/pkg/analyzer"
	"github.com/gnana997/barrelgen/pkg/parser"
	"github.com/gnana997/barrelgen/pkg/parser/queries"
)

// Verdict is the classification of one imported local name in one file.
type Verdict string

const (
	// VerdictTypeOnly: every occurrence is in a type position. The
	// import can be erased at compile time.
	VerdictTypeOnly Verdict = "type-only"

	// VerdictValue: at least one occurrence is in a value position. The
	// binding is runtime-required and must never be imported as type.
	VerdictValue Verdict = "value"
)

// Usage counts the occurrences backing a verdict (diagnostics only).
type Usage struct {
	TypeOccurrences  int
	ValueOccurrences int
}

// Classifier scans a file's AST for occurrences of its imported names.
//
// Classification is strictly per importing file: the same exported symbol
// may be type-only in one consumer and a value in another.
type Classifier struct {
	parserManager *parser.Manager
	queryManager  *queries.Manager
	logger        *slog.Logger
}

// New creates a new Classifier. The parser and query managers are shared
// with the analyzer so parsers and compiled queries are reused.
func New(pm *parser.Manager, qm *queries.Manager, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}

	return &Classifier{
		parserManager: pm,
		queryManager:  qm,
		logger:        logger,
	}
}

// ClassifyFile returns a verdict for every imported local name of the file
// that occurs at least once outside its import statement. Names bound by
// external package imports are classified too; the rewriter only acts on
// local-module imports, but the verdicts are cheap to carry.
func (c *Classifier) ClassifyFile(fa *analyzer.FileAnalysis) (map[string]Verdict, error) {
	verdicts := make(map[string]Verdict)

	usages, err := c.Usages(fa)
	if err != nil {
		return nil, err
	}

	for name, usage := range usages {
		if usage.ValueOccurrences > 0 {
			verdicts[name] = VerdictValue
		} else if usage.TypeOccurrences > 0 {
			verdicts[name] = VerdictTypeOnly
		}
	}

	return verdicts, nil
}

// Usages returns raw occurrence counts per imported local name.
func (c *Classifier) Usages(fa *analyzer.FileAnalysis) (map[string]Usage, error) {
	tracked := trackedNames(fa)
	if len(tracked) == 0 {
		return map[string]Usage{}, nil
	}

	tree, err := c.parserManager.Parse(fa.Source, fa.Language, fa.IsTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fa.Path, err)
	}
	defer tree.Close()

	query, err := c.queryManager.GetQuery(fa.Language, fa.IsTSX, queries.QueryTypeRefs)
	if err != nil {
		return nil, fmt.Errorf("failed to get refs query: %w", err)
	}

	matches, err := c.queryManager.ExecuteQuery(tree, query, fa.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to execute refs query: %w", err)
	}

	usages := make(map[string]Usage, len(tracked))
	for _, match := range matches {
		for _, capture := range match.Captures {
			name := capture.Text
			if !tracked[name] {
				continue
			}

			pos, ok := classifyOccurrence(capture.Node)
			if !ok {
				continue
			}

			usage := usages[name]
			if pos == positionType {
				usage.TypeOccurrences++
			} else {
				usage.ValueOccurrences++
			}
			usages[name] = usage
		}
	}

	return usages, nil
}

// trackedNames collects the local names bound by the file's imports.
func trackedNames(fa *analyzer.FileAnalysis) map[string]bool {
	tracked := make(map[string]bool)
	for _, rec := range fa.Imports {
		for _, binding := range rec.Bindings {
			if binding.Local != "" {
				tracked[binding.Local] = true
			}
		}
	}
	return tracked
}

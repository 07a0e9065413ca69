// Package engine orchestrates the reconciliation pipeline: scan, parallel
// per-file analysis, missing-export patching, type-only import rewriting,
// and barrel emission.
package engine

import (
	"github.com/gnana997/barrelgen/pkg/analyzer"
	"github.com/gnana997/barrelgen/pkg/classifier"
)

// Config is the immutable per-run configuration. There is no global
// mutable state; every run takes an explicit root and extension set.
type Config struct {
	// Root is the absolute directory the run operates on.
	Root string

	// Extensions are the recognized source extensions. Empty means all
	// supported extensions.
	Extensions []string

	// BarrelName is the aggregator file name per directory.
	BarrelName string

	// Include and Exclude are doublestar patterns relative to Root.
	Exclude []string
	Include []string

	// Priority ranks file base names for conflict resolution; earlier
	// entries win plain bindings.
	Priority []string

	// ReportPath, when set, persists the run report as JSON.
	ReportPath string

	// DryRun computes every mutation without writing anything.
	DryRun bool

	// Workers overrides the analysis worker count (0 = auto).
	Workers int
}

// DefaultConfig returns a Config for a root with conventional settings.
func DefaultConfig(root string) Config {
	return Config{
		Root:       root,
		BarrelName: "index.ts",
		Exclude: []string{
			"**/node_modules/**",
			"**/dist/**",
			"**/build/**",
			"**/.git/**",
		},
	}
}

// FileState is the complete analysis of one file: its snapshot plus the
// per-local-name usage verdicts.
type FileState struct {
	Analysis *analyzer.FileAnalysis
	Verdicts map[string]classifier.Verdict
}

// FileError pairs a path with the error that stopped its processing.
type FileError struct {
	FilePath string
	Error    error
}

// ConflictReport is one resolved collision in the run report.
type ConflictReport struct {
	Name  string   `json:"name"`
	Files []string `json:"files"`
}

// UnresolvedImportReport surfaces an import the patcher could not satisfy.
type UnresolvedImportReport struct {
	Importer string `json:"importer"`
	Name     string `json:"name"`
	Target   string `json:"target"`
	Line     int    `json:"line"`
}

// Report is the structured summary of one run. The run always completes;
// per-file failures are recorded here rather than aborting.
type Report struct {
	FilesAnalyzed     int              `json:"files_analyzed"`
	ExportsFound      int              `json:"exports_found"`
	ConflictsDetected int              `json:"conflicts_detected"`
	BarrelsGenerated  int              `json:"barrels_generated"`
	ValidationErrors  int              `json:"validation_errors"`
	Conflicts         []ConflictReport `json:"conflicts"`

	FilesPatched   []string `json:"files_patched,omitempty"`
	FilesRewritten []string `json:"files_rewritten,omitempty"`
	BarrelPaths    []string `json:"barrel_paths,omitempty"`

	SkippedFiles      []string                 `json:"skipped_files,omitempty"`
	WriteFailures     []string                 `json:"write_failures,omitempty"`
	UnresolvedImports []UnresolvedImportReport `json:"unresolved_imports,omitempty"`

	DryRun bool `json:"dry_run,omitempty"`
}

// Changed reports whether the run produced (or, for a dry run, would
// produce) any file mutation. Check mode exits non-zero on true.
func (r *Report) Changed() bool {
	return len(r.FilesPatched) > 0 || len(r.FilesRewritten) > 0 || r.BarrelsGenerated > 0
}

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/gnana997/barrelgen/pkg/analyzer"
	"github.com/gnana997/barrelgen/pkg/classifier"
	"github.com/gnana997/barrelgen/pkg/emitter"
	"github.com/gnana997/barrelgen/pkg/patcher"
	"github.com/gnana997/barrelgen/pkg/parser"
	"github.com/gnana997/barrelgen/pkg/parser/queries"
	"github.com/gnana997/barrelgen/pkg/registry"
	"github.com/gnana997/barrelgen/pkg/rewriter"
	"github.com/gnana997/barrelgen/pkg/util"
)

// Engine runs the reconciliation pipeline over one root. All analysis
// state is built fresh per Run from the current file-system contents; the
// analysis index only short-circuits re-parsing of unchanged files.
type Engine struct {
	cfg Config

	parserManager *parser.Manager
	queryManager  *queries.Manager
	fileCache     util.FileCache

	analyzer   *analyzer.Analyzer
	classifier *classifier.Classifier
	patcher    *patcher.Patcher
	rewriter   *rewriter.Rewriter
	emitter    *emitter.Emitter
	resolver   *registry.Resolver
	index      *AnalysisIndex

	logger *slog.Logger
}

// New creates an Engine for a run configuration.
func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Root == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	if cfg.BarrelName == "" {
		cfg.BarrelName = "index.ts"
	}

	index, err := NewAnalysisIndex(0)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis index: %w", err)
	}

	pm := parser.NewManager(logger)
	qm := queries.NewManager(pm, logger)

	return &Engine{
		cfg:           cfg,
		parserManager: pm,
		queryManager:  qm,
		fileCache:     util.NewFileCache(util.DefaultFileCacheConfig()),
		analyzer:      analyzer.New(pm, qm, logger),
		classifier:    classifier.New(pm, qm, logger),
		patcher:       patcher.New(logger),
		rewriter:      rewriter.New(logger),
		emitter:       emitter.New(cfg.BarrelName, logger),
		resolver:      registry.NewResolver(cfg.Priority, logger),
		index:         index,
		logger:        logger,
	}, nil
}

// Config returns the engine's run configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Close releases parsers, compiled queries, and mapped files.
func (e *Engine) Close() error {
	var firstErr error
	if err := e.queryManager.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.parserManager.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.fileCache.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Invalidate drops cached content and analysis for a path. The watcher
// calls this on every change event before re-running.
func (e *Engine) Invalidate(path string) {
	e.fileCache.Invalidate(path)
	e.index.Invalidate(path)
}

// Run executes the full pipeline: scan, analyze, patch, rewrite, emit.
// The run always completes; per-file failures land on the report.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	return e.run(ctx, e.cfg.DryRun)
}

// RunDry executes the pipeline computing every mutation without writing.
func (e *Engine) RunDry(ctx context.Context) (*Report, error) {
	return e.run(ctx, true)
}

func (e *Engine) run(ctx context.Context, dryRun bool) (*Report, error) {
	report := &Report{DryRun: dryRun}

	files, err := NewScanner(e.cfg, e.logger).Scan()
	if err != nil {
		return nil, err
	}

	states, err := e.analyzeAll(ctx, files, report)
	if err != nil {
		return nil, err
	}

	e.resolveImports(states)

	// Registry barrier: patching and rewriting start only once every
	// file's exports and verdicts are in. A rewrite target in one
	// directory may be an import source for an unrelated one.
	patches, diagnostics := e.patcher.Compute(analysesOf(states))
	for _, d := range diagnostics {
		report.ValidationErrors++
		report.UnresolvedImports = append(report.UnresolvedImports, UnresolvedImportReport{
			Importer: d.Importer,
			Name:     d.Name,
			Target:   d.Target,
			Line:     d.Line,
		})
	}

	e.applyMutations(states, patches, report, dryRun)

	e.emitBarrels(states, report, dryRun)

	report.FilesAnalyzed = len(states)
	for _, state := range states {
		report.ExportsFound += len(state.Analysis.Exports)
	}

	if err := e.writeReport(report); err != nil {
		e.logger.Error("failed to persist report", "path", e.cfg.ReportPath, "error", err)
	}

	e.logger.Info("run complete",
		"files_analyzed", report.FilesAnalyzed,
		"exports_found", report.ExportsFound,
		"conflicts", report.ConflictsDetected,
		"barrels", report.BarrelsGenerated,
		"patched", len(report.FilesPatched),
		"rewritten", len(report.FilesRewritten),
		"dry_run", report.DryRun)

	return report, nil
}

// analyzeAll fans per-file analysis out over the worker pool and collects
// an immutable snapshot. Files that cannot be read or parsed are recorded
// as skipped.
func (e *Engine) analyzeAll(ctx context.Context, files []string, report *Report) (map[string]*FileState, error) {
	states := make(map[string]*FileState, len(files))
	if len(files) == 0 {
		return states, nil
	}

	pool := NewWorkerPool(e.cfg.Workers, e.analyzer, e.classifier, e.fileCache, e.index, e.logger)
	pool.Start()
	defer pool.Stop()

	var mu sync.Mutex
	remaining := len(files)

	done := make(chan struct{})
	collectCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The collector must run before submission: Submit blocks once the
	// jobs channel fills, and nothing would drain results.
	go func() {
		defer close(done)
		for remaining > 0 {
			select {
			case <-collectCtx.Done():
				return

			case result, ok := <-pool.Results():
				if !ok {
					return
				}
				mu.Lock()
				states[result.FilePath] = result.State
				mu.Unlock()
				remaining--

			case fileErr, ok := <-pool.Errors():
				if !ok {
					return
				}
				e.logger.Warn("file skipped",
					"file", fileErr.FilePath,
					"error", fileErr.Error)
				mu.Lock()
				report.SkippedFiles = append(report.SkippedFiles, fileErr.FilePath)
				report.ValidationErrors++
				mu.Unlock()
				remaining--
			}
		}
	}()

	for i, file := range files {
		if err := pool.Submit(FileJob{FilePath: file, JobID: i}); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to submit %s: %w", file, err)
		}
	}
	pool.FinishSubmitting()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	sort.Strings(report.SkippedFiles)
	return states, nil
}

// resolveImports fills ResolvedPath on every import record against the
// snapshot's path set.
func (e *Engine) resolveImports(states map[string]*FileState) {
	exists := func(path string) bool {
		_, ok := states[path]
		return ok
	}

	for _, state := range states {
		fa := state.Analysis
		for i := range fa.Imports {
			if fa.Imports[i].IsExternal {
				continue
			}
			fa.Imports[i].ResolvedPath = analyzer.ResolveImport(fa.Path, fa.Imports[i].Source, exists)
		}
	}
}

// applyMutations combines each file's import rewrites and missing-export
// patch into one splice, writes the result, and re-analyzes the file so
// the registry sees the patched surface before barrels are emitted. In a
// dry run the new content is analyzed but never written.
func (e *Engine) applyMutations(states map[string]*FileState, patches []patcher.Patch, report *Report, dryRun bool) {
	patchByPath := make(map[string]patcher.Patch, len(patches))
	for _, p := range patches {
		patchByPath[p.Path] = p
	}

	paths := make([]string, 0, len(states))
	for path := range states {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		state := states[path]
		fa := state.Analysis

		edits := e.rewriter.Plan(fa, state.Verdicts)
		patch, hasPatch := patchByPath[path]
		if len(edits) == 0 && !hasPatch {
			continue
		}

		// The patch appends at the end of the file, so it never shifts
		// the rewrite offsets.
		next := rewriter.Splice(fa.Source, edits)
		rewritten := !bytes.Equal(next, fa.Source)
		if hasPatch {
			next = patcher.Apply(next, patch)
		}
		if bytes.Equal(next, fa.Source) {
			continue
		}

		if !dryRun {
			if err := os.WriteFile(path, next, 0o644); err != nil {
				e.logger.Error("write failed, abandoning change", "file", path, "error", err)
				report.WriteFailures = append(report.WriteFailures, path)
				report.ValidationErrors++
				continue
			}
			e.Invalidate(path)
		}

		if rewritten {
			report.FilesRewritten = append(report.FilesRewritten, path)
		}
		if hasPatch {
			report.FilesPatched = append(report.FilesPatched, path)
		}

		newState, err := e.analyzeSource(path, next)
		if err != nil {
			e.logger.Warn("re-analysis after mutation failed, keeping prior analysis",
				"file", path, "error", err)
			continue
		}
		states[path] = newState
	}

	e.resolveImports(states)
}

// analyzeSource analyzes in-memory content for a path.
func (e *Engine) analyzeSource(path string, source []byte) (*FileState, error) {
	fa, err := e.analyzer.AnalyzeFile(path, source)
	if err != nil {
		return nil, err
	}
	verdicts, err := e.classifier.ClassifyFile(fa)
	if err != nil {
		return nil, err
	}
	return &FileState{Analysis: fa, Verdicts: verdicts}, nil
}

// Snapshot scans and analyzes the tree without mutating anything. Skipped
// files are dropped silently; callers wanting diagnostics use Run.
func (e *Engine) Snapshot(ctx context.Context) (map[string]*FileState, error) {
	files, err := NewScanner(e.cfg, e.logger).Scan()
	if err != nil {
		return nil, err
	}
	states, err := e.analyzeAll(ctx, files, &Report{})
	if err != nil {
		return nil, err
	}
	e.resolveImports(states)
	return states, nil
}

// AnalyzeFile analyzes one file from disk, via the index when fresh.
func (e *Engine) AnalyzeFile(path string) (*FileState, error) {
	source, err := e.fileCache.Snapshot(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if cached, ok := e.index.Lookup(path, source); ok {
		return cached, nil
	}
	state, err := e.analyzeSource(path, source)
	if err != nil {
		return nil, err
	}
	e.index.Store(path, source, state)
	return state, nil
}

// PlanBarrels resolves every directory's barrel plan from the snapshot.
func (e *Engine) PlanBarrels(states map[string]*FileState) []*registry.Plan {
	analyses := make([]*analyzer.FileAnalysis, 0, len(states))
	for _, state := range states {
		analyses = append(analyses, state.Analysis)
	}
	contexts := registry.BuildDirectoryContexts(analyses, e.cfg.BarrelName)

	plans := make([]*registry.Plan, 0, len(contexts))
	for _, dc := range contexts {
		plans = append(plans, e.resolver.Resolve(dc))
	}
	return plans
}

// emitBarrels renders every directory's barrel; writes run concurrently,
// one write failure never blocks siblings.
func (e *Engine) emitBarrels(states map[string]*FileState, report *Report, dryRun bool) {
	plans := e.PlanBarrels(states)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, plan := range plans {
		for _, c := range plan.Conflicts {
			report.ConflictsDetected++
			report.Conflicts = append(report.Conflicts, ConflictReport{Name: c.Name, Files: c.Files})
		}

		if len(plan.Files) == 0 {
			continue
		}

		wg.Add(1)
		go func(plan *registry.Plan) {
			defer wg.Done()

			path := e.emitter.BarrelPath(plan.Dir)

			if dryRun {
				content := e.emitter.Render(plan)
				existing, err := os.ReadFile(path)
				if err != nil || string(existing) != content {
					mu.Lock()
					report.BarrelsGenerated++
					report.BarrelPaths = append(report.BarrelPaths, path)
					mu.Unlock()
				}
				return
			}

			_, wrote, err := e.emitter.Emit(plan)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.logger.Error("barrel write failed", "path", path, "error", err)
				report.WriteFailures = append(report.WriteFailures, path)
				report.ValidationErrors++
				return
			}
			if wrote {
				report.BarrelsGenerated++
				report.BarrelPaths = append(report.BarrelPaths, path)
			}
		}(plan)
	}

	wg.Wait()

	sort.Strings(report.BarrelPaths)
	sort.Slice(report.Conflicts, func(i, j int) bool {
		return report.Conflicts[i].Name < report.Conflicts[j].Name
	})
}

// writeReport persists the report as JSON when a path is configured.
func (e *Engine) writeReport(report *Report) error {
	if e.cfg.ReportPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(e.cfg.ReportPath, append(data, '\n'), 0o644)
}

func analysesOf(states map[string]*FileState) map[string]*analyzer.FileAnalysis {
	analyses := make(map[string]*analyzer.FileAnalysis, len(states))
	for path, state := range states {
		analyses[path] = state.Analysis
	}
	return analyses
}

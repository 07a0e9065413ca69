package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gnana997/barrelgen/pkg/analyzer"
	"github.com/gnana997/barrelgen/pkg/classifier"
	"github.com/gnana997/barrelgen/pkg/util"
)

// FileJob is one file to analyze.
type FileJob struct {
	FilePath string
	JobID    int
}

// FileResult carries one file's completed analysis.
type FileResult struct {
	FilePath string
	State    *FileState
	JobID    int
}

// WorkerPool fans per-file analysis out over a fixed set of goroutines.
//
// Worker count must match the parser pool size; each in-flight job holds
// one parser, so more workers than parsers would block inside Parse.
type WorkerPool struct {
	numWorkers int
	jobs       chan FileJob
	results    chan FileResult
	errors     chan FileError
	wg         sync.WaitGroup

	analyzer   *analyzer.Analyzer
	classifier *classifier.Classifier
	fileCache  util.FileCache
	index      *AnalysisIndex
	logger     *slog.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	stopped    atomic.Bool
	jobsClosed atomic.Bool

	jobsSubmitted atomic.Int64
	jobsProcessed atomic.Int64
	jobsFailed    atomic.Int64
}

// NewWorkerPool creates a pool. numWorkers 0 auto-detects to the parser
// pool size. The index may be nil; when set, files whose content hash is
// unchanged skip re-analysis, which is what makes watch mode incremental.
func NewWorkerPool(
	numWorkers int,
	a *analyzer.Analyzer,
	c *classifier.Classifier,
	fileCache util.FileCache,
	index *AnalysisIndex,
	logger *slog.Logger,
) *WorkerPool {
	if numWorkers == 0 {
		numWorkers = util.GetOptimalPoolSize()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan FileJob, numWorkers*2),
		results:    make(chan FileResult, numWorkers),
		errors:     make(chan FileError, numWorkers),
		analyzer:   a,
		classifier: c,
		fileCache:  fileCache,
		index:      index,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start spawns the worker goroutines. Must be called before Submit.
func (wp *WorkerPool) Start() {
	if !wp.started.CompareAndSwap(false, true) {
		wp.logger.Warn("worker pool already started")
		return
	}

	wp.logger.Debug("starting worker pool", "workers", wp.numWorkers)

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return

		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.processJob(id, job)
		}
	}
}

// processJob reads, analyzes, and classifies a single file. Unreadable or
// unparsable files go to the errors channel and are skipped by the run,
// never fatal.
func (wp *WorkerPool) processJob(workerID int, job FileJob) {
	source, err := wp.fileCache.Snapshot(job.FilePath)
	if err != nil {
		wp.jobsFailed.Add(1)
		wp.errors <- FileError{
			FilePath: job.FilePath,
			Error:    fmt.Errorf("failed to read file: %w", err),
		}
		return
	}

	if wp.index != nil {
		if cached, ok := wp.index.Lookup(job.FilePath, source); ok {
			wp.jobsProcessed.Add(1)
			wp.results <- FileResult{FilePath: job.FilePath, State: cached, JobID: job.JobID}
			return
		}
	}

	fa, err := wp.analyzer.AnalyzeFile(job.FilePath, source)
	if err != nil {
		wp.jobsFailed.Add(1)
		wp.errors <- FileError{
			FilePath: job.FilePath,
			Error:    fmt.Errorf("analysis failed: %w", err),
		}
		return
	}

	verdicts, err := wp.classifier.ClassifyFile(fa)
	if err != nil {
		wp.jobsFailed.Add(1)
		wp.errors <- FileError{
			FilePath: job.FilePath,
			Error:    fmt.Errorf("classification failed: %w", err),
		}
		return
	}

	state := &FileState{Analysis: fa, Verdicts: verdicts}
	if wp.index != nil {
		wp.index.Store(job.FilePath, source, state)
	}

	wp.jobsProcessed.Add(1)
	wp.results <- FileResult{
		FilePath: job.FilePath,
		State:    state,
		JobID:    job.JobID,
	}
}

// Submit enqueues a job. Blocks when the jobs channel is full.
func (wp *WorkerPool) Submit(job FileJob) error {
	if wp.stopped.Load() {
		return fmt.Errorf("worker pool is stopped")
	}

	wp.jobsSubmitted.Add(1)

	select {
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool cancelled")
	case wp.jobs <- job:
		return nil
	}
}

// Results returns the results channel.
func (wp *WorkerPool) Results() <-chan FileResult {
	return wp.results
}

// Errors returns the errors channel.
func (wp *WorkerPool) Errors() <-chan FileError {
	return wp.errors
}

// FinishSubmitting closes the jobs channel so workers drain and exit.
// Idempotent.
func (wp *WorkerPool) FinishSubmitting() {
	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
	}
}

// Wait blocks until all workers have finished. Call after
// FinishSubmitting.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Stop shuts the pool down: closes jobs if still open, waits for in-flight
// work, then closes the result and error channels. Idempotent.
func (wp *WorkerPool) Stop() {
	if !wp.stopped.CompareAndSwap(false, true) {
		return
	}

	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
	}

	wp.wg.Wait()

	close(wp.results)
	close(wp.errors)

	wp.cancel()

	wp.logger.Debug("worker pool stopped",
		"jobs_submitted", wp.jobsSubmitted.Load(),
		"jobs_processed", wp.jobsProcessed.Load(),
		"jobs_failed", wp.jobsFailed.Load())
}

// GetStats returns current pool counters.
func (wp *WorkerPool) GetStats() WorkerPoolStats {
	return WorkerPoolStats{
		NumWorkers:    wp.numWorkers,
		JobsSubmitted: wp.jobsSubmitted.Load(),
		JobsProcessed: wp.jobsProcessed.Load(),
		JobsFailed:    wp.jobsFailed.Load(),
		QueueLength:   len(wp.jobs),
	}
}

// WorkerPoolStats contains worker pool counters.
type WorkerPoolStats struct {
	NumWorkers    int
	JobsSubmitted int64
	JobsProcessed int64
	JobsFailed    int64
	QueueLength   int
}

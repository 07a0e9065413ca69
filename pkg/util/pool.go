package util

import "runtime"

// GetOptimalPoolSize returns the pool size used for CPU-bound parallel work.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
// The 2× factor keeps cores busy while goroutines are blocked inside CGO
// (tree-sitter parsing). The floor guarantees some parallelism on small
// machines; the cap bounds parser memory on large ones.
//
// This one value sizes both the parser pools and the analysis worker pool.
// The two MUST agree or workers can stall waiting for a free parser.
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2

	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}

	return poolSize
}

// GetOptimalPoolSizeWithOverride returns pool size with optional override.
//
// If override > 0, uses the override value (for testing/tuning).
// Otherwise falls back to GetOptimalPoolSize().
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}

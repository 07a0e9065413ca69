package engine

import (
	"crypto/sha256"

	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultIndexSize bounds the number of cached analyses. Watch mode
// re-runs the pipeline on every change burst; unchanged files hit the
// index instead of being re-parsed.
const defaultIndexSize = 4096

type indexEntry struct {
	hash  [sha256.Size]byte
	state *FileState
}

// AnalysisIndex caches per-file analyses keyed by path and content hash.
type AnalysisIndex struct {
	cache *lru.Cache[string, indexEntry]
}

// NewAnalysisIndex creates an index holding up to size entries (0 = default).
func NewAnalysisIndex(size int) (*AnalysisIndex, error) {
	if size <= 0 {
		size = defaultIndexSize
	}
	cache, err := lru.New[string, indexEntry](size)
	if err != nil {
		return nil, err
	}
	return &AnalysisIndex{cache: cache}, nil
}

// Lookup returns the cached state for path when the content still hashes
// the same.
func (ix *AnalysisIndex) Lookup(path string, source []byte) (*FileState, bool) {
	entry, ok := ix.cache.Get(path)
	if !ok {
		return nil, false
	}
	if entry.hash != sha256.Sum256(source) {
		return nil, false
	}
	return entry.state, true
}

// Store caches the state for path under the content's hash.
func (ix *AnalysisIndex) Store(path string, source []byte, state *FileState) {
	ix.cache.Add(path, indexEntry{
		hash:  sha256.Sum256(source),
		state: state,
	})
}

// Invalidate drops the cached state for path.
func (ix *AnalysisIndex) Invalidate(path string) {
	ix.cache.Remove(path)
}

// Len returns the number of cached analyses.
func (ix *AnalysisIndex) Len() int {
	return ix.cache.Len()
}

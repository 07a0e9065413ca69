// FileCache provides read access to source files using memory-mapped IO.
//
// The engine reads every source file once per run to build its analysis
// snapshot. Mapping instead of os.ReadFile keeps large trees cheap: only
// accessed pages are faulted in, and repeated access (watch mode re-runs,
// MCP tool calls) hits the cache.
//
// Safety:
//   - Graceful fallback to os.ReadFile when mmap fails
//   - Thread-safe (RWMutex; parallel reads, exclusive loads)
//   - Snapshot() returns an owned copy so callers survive the file being
//     rewritten on disk mid-run
package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// FileCache is the read layer shared by the scanner workers and watch mode.
type FileCache interface {
	// Get returns the mapped file, loading it on first access.
	Get(filePath string) (*MappedFile, error)

	// Snapshot returns an owned copy of the file's current contents.
	// Unlike Get, the returned slice is safe to retain after the
	// underlying file changes or the cache is closed.
	Snapshot(filePath string) ([]byte, error)

	// Invalidate drops a cached entry so the next Get re-reads the file.
	// Used after the engine rewrites a file in place.
	Invalidate(filePath string)

	// Size returns the number of currently cached files.
	Size() int

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	// Close unmaps all files and releases resources.
	Close() error
}

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles limits how many files are kept mapped. 0 means unlimited.
	MaxFiles int

	// Logger for warnings. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig covers typical frontend trees (thousands of modules).
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles: 10000,
	}
}

// MappedFile represents a memory-mapped source file.
type MappedFile struct {
	// Path is the absolute path to the source file.
	Path string

	// Data is the mapped region. Nil for empty files and fallback loads
	// keep it as a plain byte slice wrapped in the same type.
	Data mmap.MMap

	// File is the underlying descriptor; nil for fallback entries.
	File *os.File

	// Size is the file size in bytes.
	Size int64
}

// FileCacheStats tracks cache performance metrics.
type FileCacheStats struct {
	FilesLoaded  int64
	FilesCached  int
	CacheHits    int64
	CacheMisses  int64
	MmapFailures int64
}

// NewFileCache creates a new FileCache with the given config.
// A nil config uses DefaultFileCacheConfig().
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &fileCacheImpl{
		config: config,
		cache:  make(map[string]*MappedFile),
		logger: logger,
	}
}

type fileCacheImpl struct {
	config *FileCacheConfig
	logger *slog.Logger

	cache map[string]*MappedFile
	mu    sync.RWMutex

	stats   FileCacheStats
	statsMu sync.Mutex
}

func (fc *fileCacheImpl) Get(filePath string) (*MappedFile, error) {
	// Fast path: already cached.
	fc.mu.RLock()
	if mf, ok := fc.cache[filePath]; ok {
		fc.mu.RUnlock()
		fc.recordHit()
		return mf, nil
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	defer fc.mu.Unlock()

	// Double-check: another goroutine may have loaded it.
	if mf, ok := fc.cache[filePath]; ok {
		fc.recordHit()
		return mf, nil
	}

	fc.recordMiss()

	if fc.config.MaxFiles > 0 && len(fc.cache) >= fc.config.MaxFiles {
		return nil, fmt.Errorf("file cache limit reached (%d files); raise MaxFiles", fc.config.MaxFiles)
	}

	mf, err := fc.loadFile(filePath)
	if err != nil {
		return nil, err
	}

	fc.cache[filePath] = mf
	return mf, nil
}

func (fc *fileCacheImpl) Snapshot(filePath string) ([]byte, error) {
	mf, err := fc.Get(filePath)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(mf.Data))
	copy(out, mf.Data)
	return out, nil
}

func (fc *fileCacheImpl) Invalidate(filePath string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	mf, ok := fc.cache[filePath]
	if !ok {
		return
	}
	delete(fc.cache, filePath)
	fc.closeMapped(mf)
}

func (fc *fileCacheImpl) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.cache)
}

func (fc *fileCacheImpl) Stats() FileCacheStats {
	fc.statsMu.Lock()
	defer fc.statsMu.Unlock()

	stats := fc.stats
	stats.FilesCached = fc.Size()
	return stats
}

func (fc *fileCacheImpl) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var firstErr error
	for path, mf := range fc.cache {
		if err := fc.closeMapped(mf); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("unmap %q: %w", path, err)
		}
	}
	fc.cache = make(map[string]*MappedFile)
	return firstErr
}

// loadFile maps the file, falling back to a plain read when mmap fails
// (empty files, exotic filesystems).
func (fc *fileCacheImpl) loadFile(filePath string) (*MappedFile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", filePath, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat %q: %w", filePath, err)
	}

	fc.recordLoad()

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		file.Close()
		return &MappedFile{Path: filePath, Data: nil, Size: 0}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		fc.recordMmapFailure()
		fc.logger.Warn("mmap failed, falling back to read", "path", filePath, "error", err)

		raw, rerr := os.ReadFile(filePath)
		if rerr != nil {
			return nil, fmt.Errorf("failed to read %q after mmap failure: %w", filePath, rerr)
		}
		return &MappedFile{Path: filePath, Data: mmap.MMap(raw), Size: int64(len(raw))}, nil
	}

	return &MappedFile{
		Path: filePath,
		Data: data,
		File: file,
		Size: stat.Size(),
	}, nil
}

func (fc *fileCacheImpl) closeMapped(mf *MappedFile) error {
	var err error
	if mf.File != nil {
		// Real mapping: unmap then close the descriptor.
		if mf.Data != nil {
			err = mf.Data.Unmap()
		}
		if cerr := mf.File.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (fc *fileCacheImpl) recordHit() {
	fc.statsMu.Lock()
	fc.stats.CacheHits++
	fc.statsMu.Unlock()
}

func (fc *fileCacheImpl) recordMiss() {
	fc.statsMu.Lock()
	fc.stats.CacheMisses++
	fc.statsMu.Unlock()
}

func (fc *fileCacheImpl) recordLoad() {
	fc.statsMu.Lock()
	fc.stats.FilesLoaded++
	fc.statsMu.Unlock()
}

func (fc *fileCacheImpl) recordMmapFailure() {
	fc.statsMu.Lock()
	fc.stats.MmapFailures++
	fc.statsMu.Unlock()
}

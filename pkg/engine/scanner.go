package engine

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/barrelgen/pkg/parser"
)

// Scanner enumerates the source files a run operates on.
type Scanner struct {
	cfg    Config
	logger *slog.Logger
}

// NewScanner creates a Scanner for a run configuration.
func NewScanner(cfg Config, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{cfg: cfg, logger: logger}
}

// Scan walks the root and returns the matching source files, sorted.
// Generated barrels and declaration files never enter the set: a barrel
// must not contribute to its own successor, and .d.ts files carry no
// runtime exports to reconcile.
func (s *Scanner) Scan() ([]string, error) {
	for _, pattern := range s.cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range s.cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}

	var files []string

	err := filepath.WalkDir(s.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("walk error", "path", path, "error", err)
			return nil
		}

		relPath, relErr := filepath.Rel(s.cfg.Root, path)
		if relErr != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		for _, pattern := range s.cfg.Exclude {
			if matched, _ := doublestar.PathMatch(pattern, relPath); matched {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			return nil
		}

		if !s.matchesExtension(path) {
			return nil
		}
		if filepath.Base(path) == s.cfg.BarrelName {
			return nil
		}
		if parser.IsDeclarationFile(path) {
			return nil
		}

		if len(s.cfg.Include) > 0 {
			matched := false
			for _, pattern := range s.cfg.Include {
				if m, _ := doublestar.PathMatch(pattern, relPath); m {
					matched = true
					break
				}
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed for %s: %w", s.cfg.Root, err)
	}

	sort.Strings(files)

	s.logger.Debug("scan complete", "root", s.cfg.Root, "files", len(files))
	return files, nil
}

func (s *Scanner) matchesExtension(path string) bool {
	if len(s.cfg.Extensions) == 0 {
		return parser.DetectLanguage(path) != parser.LanguageUnknown
	}
	ext := filepath.Ext(path)
	for _, allowed := range s.cfg.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

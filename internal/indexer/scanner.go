package indexer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/jamaly87/codebase-qa/internal/models"
	"github.com/jamaly87/codebase-qa/pkg/config"
	"github.com/jamaly87/codebase-qa/pkg/ignore"
)

// Scanner finds the Python files of a repository
type Scanner struct {
	ignoreMatcher    *ignore.Matcher
	langDetector     *LanguageDetector
	maxFileSizeBytes int64
}

// NewScanner creates a new file scanner
func NewScanner(cfg *config.IndexingConfig, ignorePatterns []string) *Scanner {
	var maxBytes int64
	if cfg != nil && cfg.MaxFileSizeMB > 0 {
		maxBytes = int64(cfg.MaxFileSizeMB) * 1024 * 1024
	}
	return &Scanner{
		ignoreMatcher:    ignore.NewMatcher(ignorePatterns),
		langDetector:     NewLanguageDetector(),
		maxFileSizeBytes: maxBytes,
	}
}

// SourceFile is one file selected for ingestion
type SourceFile struct {
	AbsPath string
	RelPath string // forward slashes, relative to the repo root
}

// ScanResult contains the results of a directory scan
type ScanResult struct {
	Files        []SourceFile
	SkippedFiles int
	Errors       []error
}

// Scan walks repoPath and returns its eligible source files in lexical order
func (s *Scanner) Scan(repoPath string) (*ScanResult, error) {
	info, err := os.Stat(repoPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("repository %s: %w", repoPath, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat repo path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository %s is not a directory: %w", repoPath, models.ErrNotFound)
	}

	result := &ScanResult{}

	err = filepath.WalkDir(repoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil
		}

		relPath, err := filepath.Rel(repoPath, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && s.shouldIgnoreDir(relPath, d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		if !s.langDetector.IsSupported(path) {
			return nil
		}

		if s.ignoreMatcher.ShouldIgnore(relPath) {
			result.SkippedFiles++
			return nil
		}

		if s.maxFileSizeBytes > 0 {
			fileInfo, err := d.Info()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("failed to get file info for %s: %w", path, err))
				result.SkippedFiles++
				return nil
			}
			if fileInfo.Size() > s.maxFileSizeBytes {
				result.SkippedFiles++
				return nil
			}
		}

		result.Files = append(result.Files, SourceFile{AbsPath: path, RelPath: relPath})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].RelPath < result.Files[j].RelPath
	})

	return result, nil
}

// shouldIgnoreDir returns true if a directory should not be descended into
func (s *Scanner) shouldIgnoreDir(relPath, dirName string) bool {
	if s.ignoreMatcher.IsExcludedDir(dirName) {
		return true
	}
	return s.ignoreMatcher.ShouldIgnore(relPath)
}

// IsSupported returns true if the file is an indexed language
func (s *Scanner) IsSupported(filePath string) bool {
	return s.langDetector.IsSupported(filePath)
}

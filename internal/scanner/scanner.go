// Package scanner discovers Solidity source files under a directory tree.
// It respects .soligraphignore files with gitignore-style patterns and
// skips the build artifacts of common Solidity toolchains.
package scanner

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SourceFile represents a discovered Solidity source file.
type SourceFile struct {
	Path     string // Relative path from root
	FullPath string // Absolute path
	Size     int64  // File size in bytes
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden      bool     // Skip hidden files and directories (starting with .)
	DefaultExcludes []string // Default directories to exclude
	IgnoreFileName  string   // Name of the ignore file (default: .soligraphignore)
}

// DefaultOptions returns scanner options with sensible defaults. The
// exclusion list covers the dependency and artifact directories of
// Hardhat, Foundry and Truffle projects.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		IgnoreFileName: ".soligraphignore",
		DefaultExcludes: []string{
			"node_modules",
			".git",
			"artifacts",
			"cache",
			"out",
			"build",
			"coverage",
			".deps",
		},
	}
}

// Scanner provides Solidity file tree scanning.
type Scanner struct {
	opts Options
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	return &Scanner{opts: opts}
}

// Scan recursively scans root and returns all Solidity source files,
// honoring .soligraphignore patterns and default exclusions.
func (s *Scanner) Scan(root string) ([]SourceFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	patterns, err := s.loadIgnorePatterns(absRoot)
	if err != nil {
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}

	var files []SourceFile

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil || relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if s.opts.SkipHidden && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if s.isDefaultExcluded(info.Name()) {
				return filepath.SkipDir
			}
			// Nested ignore files extend the pattern set.
			nested, err := s.loadIgnorePatterns(path)
			if err == nil {
				patterns = append(patterns, nested...)
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(path), ".sol") {
			return nil
		}
		if matchesIgnorePatterns(relPath, patterns) {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}

		files = append(files, SourceFile{
			Path:     relPath,
			FullPath: path,
			Size:     info.Size(),
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return files, nil
}

func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

func (s *Scanner) loadIgnorePatterns(dir string) ([]IgnorePattern, error) {
	file, err := os.Open(filepath.Join(dir, s.opts.IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var patterns []IgnorePattern
	lines := bufio.NewScanner(file)
	for lines.Scan() {
		line := strings.TrimSpace(lines.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, ParseIgnorePattern(line))
	}
	return patterns, lines.Err()
}

// matchesIgnorePatterns implements gitignore ordering: later patterns
// win, and negation patterns override earlier positive matches.
func matchesIgnorePatterns(relPath string, patterns []IgnorePattern) bool {
	ignored := false
	for _, pattern := range patterns {
		if pattern.Match(relPath) {
			ignored = !pattern.IsNegation()
		}
	}
	return ignored
}

// Scan is a convenience function that scans a directory with default options.
func Scan(root string) ([]SourceFile, error) {
	return New(DefaultOptions()).Scan(root)
}

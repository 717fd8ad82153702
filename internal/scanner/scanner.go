// Package scanner finds the Ruby sources of a project.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/panbanda/wraith/pkg/config"
	"github.com/panbanda/wraith/pkg/parser"
)

// Scanner finds source files in a directory.
type Scanner struct {
	config *config.Config
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// excluder matches config patterns relative to the scan root and .gitignore
// patterns relative to the repository root.
type excluder struct {
	root    string
	config  gitignore.Matcher
	gitRoot string
	git     gitignore.Matcher
}

func (s *Scanner) newExcluder(root string) *excluder {
	e := &excluder{root: root}

	var patterns []gitignore.Pattern
	for _, p := range s.config.ExcludePatterns() {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	if len(patterns) > 0 {
		e.config = gitignore.NewMatcher(patterns)
	}

	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			// ReadPatterns walks every .gitignore below the repository root.
			if gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil); err == nil && len(gitPatterns) > 0 {
				e.gitRoot = gitRoot
				e.git = gitignore.NewMatcher(gitPatterns)
			}
		}
	}
	return e
}

func splitRel(base, path string) []string {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}
	return strings.Split(filepath.ToSlash(rel), "/")
}

// excluded checks if an absolute path matches any exclusion pattern.
func (e *excluder) excluded(path string, isDir bool) bool {
	if e.config != nil {
		if parts := splitRel(e.root, path); parts != nil && e.config.Match(parts, isDir) {
			return true
		}
	}
	if e.git != nil {
		if parts := splitRel(e.gitRoot, path); parts != nil && e.git.Match(parts, isDir) {
			return true
		}
	}
	return false
}

// ScanDir recursively scans a directory for Ruby files, in lexical order.
// Symlinks that resolve outside the root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 1024)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	ex := s.newExcluder(absRoot)

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == absRoot {
			return nil
		}

		// Security: validate path stays within root (prevent symlink traversal)
		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, realRoot) {
				return nil
			}
		}

		if d.IsDir() {
			if ex.excluded(path, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if ex.excluded(path, false) {
			return nil
		}
		if parser.IsRubyFile(path) {
			files = append(files, path)
		}
		return nil
	})

	return files, walkErr
}

// ScanPaths expands directories and keeps explicitly named Ruby files. The
// result is absolute, sorted and free of duplicates.
func (s *Scanner) ScanPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if parser.IsRubyFile(abs) {
				add(abs)
			}
			continue
		}
		found, err := s.ScanDir(abs)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

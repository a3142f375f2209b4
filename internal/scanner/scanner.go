// Package scanner finds TypeScript and JavaScript sources under a directory.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/parkrevil/firebat-sub000/pkg/config"
	"github.com/parkrevil/firebat-sub000/pkg/parser"
)

// Scanner finds source files in a directory.
type Scanner struct {
	config *config.Config

	// ignoreRoot is the directory the gitignore matcher is relative to.
	ignoreRoot string
	matcher    gitignore.Matcher
	dirs       map[string]bool
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	dirs := make(map[string]bool, len(cfg.Exclude.Dirs))
	for _, d := range cfg.Exclude.Dirs {
		dirs[d] = true
	}
	return &Scanner{config: cfg, dirs: dirs}
}

// findGitRoot finds the root of the git repository by looking for .git.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadGitignore reads every .gitignore below the repository root, or below
// root itself outside a repository.
func (s *Scanner) loadGitignore(root string) {
	s.matcher = nil
	if !s.config.Exclude.Gitignore {
		return
	}

	s.ignoreRoot = findGitRoot(root)
	if s.ignoreRoot == "" {
		s.ignoreRoot = root
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(s.ignoreRoot), nil)
	if err != nil || len(patterns) == 0 {
		return
	}
	s.matcher = gitignore.NewMatcher(patterns)
}

// isIgnored checks an absolute path against the gitignore matcher.
func (s *Scanner) isIgnored(path string, isDir bool) bool {
	if s.matcher == nil {
		return false
	}
	rel, err := filepath.Rel(s.ignoreRoot, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	return s.matcher.Match(strings.Split(filepath.ToSlash(rel), "/"), isDir)
}

// matchesPattern checks a root-relative slash path against the configured
// doublestar patterns.
func (s *Scanner) matchesPattern(rel string) bool {
	for _, pattern := range s.config.Exclude.Patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// ScanDir recursively scans a directory for source files. Paths are
// absolute and sorted. Symlinks that leave the root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadGitignore(absRoot)

	files := make([]string, 0, 256)
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == absRoot {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}

		rel, _ := filepath.Rel(absRoot, path)
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if s.dirs[d.Name()] || s.isIgnored(path, true) || s.matchesPattern(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !parser.IsSupported(path) {
			return nil
		}
		if s.isIgnored(path, false) || s.matchesPattern(rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})

	slices.Sort(files)
	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// ScanFile checks if a single file should be analyzed. Directory
// exclusions do not apply to files named explicitly.
func (s *Scanner) ScanFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if s.matchesPattern(filepath.Base(path)) {
		return false, nil
	}
	return parser.IsSupported(path), nil
}

// GroupByLanguage groups files by their detected language.
func GroupByLanguage(files []string) map[parser.Language][]string {
	groups := make(map[parser.Language][]string)
	for _, f := range files {
		lang := parser.DetectLanguage(f)
		if lang != parser.LangUnknown {
			groups[lang] = append(groups[lang], f)
		}
	}
	return groups
}

// Package testutil builds TypeScript project fixtures for tests.
package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/parkrevil/firebat-sub000/internal/vcs"
)

// WriteFile writes content to a file, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// CreateFileTree creates multiple files from a map of slash path -> content.
func CreateFileTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(name)), content)
	}
}

// ProjectDir creates a temporary project with files and returns its
// absolute path with symlinks resolved, so it compares equal to scanned
// paths on systems where the temp dir is a symlink.
func ProjectDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("EvalSymlinks error: %v", err)
	}
	CreateFileTree(t, dir, files)
	return dir
}

// ErrNoRepository is returned by NoRepo.
var ErrNoRepository = errors.New("not a repository")

// NoRepo is a vcs.Opener that never finds a repository, so projects
// resolve to the analyzed path.
type NoRepo struct{}

func (NoRepo) PlainOpenWithDetect(string) (vcs.Repository, error) {
	return nil, ErrNoRepository
}

// CycleProject has a two-module import cycle (a <-> b), an interface-only
// module importing a, and a file with a syntax error.
func CycleProject() map[string]string {
	return map[string]string{
		"src/a.ts":   "import { b } from './b';\nexport const a = () => b();\n",
		"src/b.ts":   "import { a } from './a';\nexport const b = () => a();\n",
		"src/c.ts":   "import './a';\nexport interface Shape { area(): number }\n",
		"src/bad.ts": "export function broken( {\n",
	}
}

package scanner

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/parkrevil/firebat-sub000/internal/testutil"
	"github.com/parkrevil/firebat-sub000/pkg/config"
	"github.com/parkrevil/firebat-sub000/pkg/parser"
)

func TestNew(t *testing.T) {
	svc := New()
	if svc == nil || svc.config == nil || svc.opener == nil {
		t.Fatal("New() returned nil or has nil config/opener")
	}

	cfg := config.DefaultConfig()
	svc = New(WithConfig(cfg), WithOpener(testutil.NoRepo{}))
	if svc.config != cfg {
		t.Error("WithConfig did not set config")
	}
	if _, ok := svc.opener.(testutil.NoRepo); !ok {
		t.Error("WithOpener did not set opener")
	}

	if New(WithConfig(nil)).config == nil {
		t.Error("nil config should fall back to defaults")
	}
}

func TestScanPaths_InvalidPath(t *testing.T) {
	_, err := New().ScanPaths([]string{"/nonexistent/path/that/does/not/exist"})
	var pathErr *PathError
	if !errors.As(err, &pathErr) {
		t.Fatalf("expected PathError, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("PathError should unwrap to fs.ErrNotExist")
	}
}

func TestScanPaths_ValidDir(t *testing.T) {
	dir := testutil.ProjectDir(t, map[string]string{
		"src/a.ts":  "export {}\n",
		"src/b.js":  "export {}\n",
		"README.md": "# x\n",
	})

	result, err := New(WithOpener(testutil.NoRepo{})).ScanPaths([]string{dir})
	if err != nil {
		t.Fatalf("ScanPaths() error = %v", err)
	}
	want := []string{filepath.Join(dir, "src", "a.ts"), filepath.Join(dir, "src", "b.js")}
	if len(result.Files) != len(want) {
		t.Fatalf("Files = %v, want %v", result.Files, want)
	}
	for i := range want {
		if result.Files[i] != want[i] {
			t.Errorf("Files[%d] = %s, want %s", i, result.Files[i], want[i])
		}
	}
	if len(result.LanguageGroups[parser.LangTypeScript]) != 1 || len(result.LanguageGroups[parser.LangJavaScript]) != 1 {
		t.Errorf("LanguageGroups = %v", result.LanguageGroups)
	}
	if result.Project.Root != dir {
		t.Errorf("Project.Root = %s, want %s", result.Project.Root, dir)
	}
}

func TestScanPaths_FilesAndOverlap(t *testing.T) {
	dir := testutil.ProjectDir(t, map[string]string{
		"a.ts":     "export {}\n",
		"lib/b.ts": "export {}\n",
		"c.txt":    "x\n",
	})
	a := filepath.Join(dir, "a.ts")
	b := filepath.Join(dir, "lib", "b.ts")

	result, err := New(WithOpener(testutil.NoRepo{})).ScanPaths([]string{dir, a, filepath.Join(dir, "lib"), filepath.Join(dir, "c.txt")})
	if err != nil {
		t.Fatalf("ScanPaths() error = %v", err)
	}
	if len(result.Files) != 2 || result.Files[0] != a || result.Files[1] != b {
		t.Errorf("Files = %v, want [%s %s]", result.Files, a, b)
	}
}

func TestPathError(t *testing.T) {
	inner := errors.New("boom")
	err := &PathError{Path: "x", Err: inner}
	if err.Error() != "invalid path x: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("PathError should unwrap")
	}
}

func TestScanError(t *testing.T) {
	inner := errors.New("boom")
	err := &ScanError{Path: "x", Err: inner}
	if err.Error() != "failed to scan directory x: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("ScanError should unwrap")
	}
}

package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkrevil/firebat-sub000/pkg/parser"
)

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMapFilesKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	files := make([]string, 40)
	for i := range files {
		files[i] = createTestFile(t, dir, fmt.Sprintf("f%02d.ts", i), fmt.Sprintf("export const v%d = %d;\n", i, i))
	}

	var calls atomic.Int32
	results, errs := MapFiles(context.Background(), files, Options{MaxWorkers: 4, OnProgress: func() { calls.Add(1) }},
		func(p *parser.Parser, path string) (string, error) {
			f, err := p.ParseFile(context.Background(), path)
			if err != nil {
				return "", err
			}
			return filepath.Base(f.FilePath), nil
		})

	assert.Nil(t, errs)
	require.Len(t, results, len(files))
	for i, r := range results {
		assert.Equal(t, filepath.Base(files[i]), r)
	}
	assert.Equal(t, int32(len(files)), calls.Load())
}

func TestMapFilesCollectsErrors(t *testing.T) {
	dir := t.TempDir()
	good := createTestFile(t, dir, "good.ts", "export {}\n")
	files := []string{
		filepath.Join(dir, "missing-b.ts"),
		good,
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "missing-a.ts"),
	}
	createTestFile(t, dir, "notes.txt", "plain text\n")

	results, errs := MapFiles(context.Background(), files, Options{}, func(p *parser.Parser, path string) (string, error) {
		if _, err := p.ParseFile(context.Background(), path); err != nil {
			return "", err
		}
		return path, nil
	})

	assert.Equal(t, []string{good}, results)
	require.NotNil(t, errs)
	require.True(t, errs.HasErrors())
	require.Len(t, errs.Errors, 3)

	// errors are sorted by path
	assert.Equal(t, filepath.Join(dir, "missing-a.ts"), errs.Errors[0].Path)
	assert.Equal(t, filepath.Join(dir, "missing-b.ts"), errs.Errors[1].Path)
	assert.ErrorIs(t, errs, parser.ErrUnsupportedLanguage)
	assert.Contains(t, errs.Error(), "3 files failed to process")
}

func TestMapFilesEmpty(t *testing.T) {
	results, errs := MapFiles(context.Background(), nil, Options{}, func(*parser.Parser, string) (int, error) {
		return 0, nil
	})
	assert.Nil(t, results)
	assert.Nil(t, errs)
}

func TestMapFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := []string{"a.ts", "b.ts", "c.ts"}
	results, errs := MapFiles(ctx, files, Options{MaxWorkers: 1}, func(*parser.Parser, string) (int, error) {
		return 1, nil
	})

	assert.Empty(t, results)
	require.NotNil(t, errs)
	assert.Len(t, errs.Errors, len(files))
	assert.ErrorIs(t, errs, context.Canceled)
}

func TestForEachFile(t *testing.T) {
	files := []string{"c", "a", "b"}
	results, errs := ForEachFile(context.Background(), files, Options{MaxWorkers: 2}, func(path string) (string, error) {
		if path == "a" {
			return "", errors.New("boom")
		}
		return path + "!", nil
	})

	assert.Equal(t, []string{"c!", "b!"}, results)
	require.NotNil(t, errs)
	assert.Equal(t, "a: boom", errs.Error())
}

func TestReadAndParseSources(t *testing.T) {
	dir := t.TempDir()
	a := createTestFile(t, dir, "a.ts", "import { b } from './b';\nexport const a = b;\n")
	b := createTestFile(t, dir, "b.ts", "export const b = 1;\n")
	broken := createTestFile(t, dir, "broken.ts", "export const = ;\n")

	sources, errs := ReadFiles(context.Background(), []string{a, b, broken, filepath.Join(dir, "gone.ts")}, Options{})
	require.NotNil(t, errs)
	assert.Len(t, errs.Errors, 1)
	require.Len(t, sources, 3)
	assert.Equal(t, a, sources[0].Path)

	parsed, perrs := ParseSources(context.Background(), sources, Options{})
	assert.Nil(t, perrs)
	require.Len(t, parsed, 3)
	assert.True(t, parsed[0].Usable())
	assert.True(t, parsed[1].Usable())
	assert.False(t, parsed[2].Usable(), "syntax errors are reported on the file")
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	a := createTestFile(t, dir, "a.js", "export default function () {}\n")

	parsed, errs := ParseFiles(context.Background(), []string{a}, Options{})
	assert.Nil(t, errs)
	require.Len(t, parsed, 1)
	assert.Equal(t, a, parsed[0].FilePath)
}

func TestProcessingError(t *testing.T) {
	inner := errors.New("inner")
	err := ProcessingError{Path: "x.ts", Err: inner}
	assert.Equal(t, "x.ts: inner", err.Error())
	assert.ErrorIs(t, err, inner)

	var none *ProcessingErrors
	assert.False(t, none.HasErrors())
	assert.Equal(t, "no errors", (&ProcessingErrors{}).Error())
}

func TestOptionsWorkers(t *testing.T) {
	assert.Equal(t, 1, Options{}.workers(1))
	assert.Equal(t, 3, Options{MaxWorkers: 3}.workers(10))
	assert.Equal(t, 2, Options{MaxWorkers: 8}.workers(2))
	assert.GreaterOrEqual(t, Options{}.workers(1000), 1)
}

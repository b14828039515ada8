package fsutil

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalker_Scan_FindsMarkdownFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "a")
	writeFile(t, filepath.Join(dir, "b.txt"), "b")
	writeFile(t, filepath.Join(dir, "nested", "c.md"), "c")

	w := New()
	files, err := w.Scan(context.Background(), Scope{Path: dir})
	require.NoError(t, err)
	sort.Strings(files)

	assert.Len(t, files, 2)
	for _, f := range files {
		assert.True(t, filepath.Ext(f) == ".md")
	}
}

func TestWalker_Scan_RespectsExclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.md"), "x")
	writeFile(t, filepath.Join(dir, "vendor", "skip.md"), "y")

	w := New()
	files, err := w.Scan(context.Background(), Scope{
		Path:    dir,
		Include: []string{"**/*.md"},
		Exclude: []string{"**/vendor/**"},
	})
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Contains(t, files[0], "keep.md")
}

func TestWalker_Scan_MaxFilesLimitsResults(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		writeFile(t, filepath.Join(dir, string(rune('a'+i))+".md"), "x")
	}
	w := New()
	files, err := w.Scan(context.Background(), Scope{Path: dir, MaxFiles: 2})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(files), 2)
}

func TestWalker_Walk_RejectsMissingPath(t *testing.T) {
	w := New()
	_, err := w.Walk(context.Background(), Scope{Path: "/nonexistent/path/xyz"})
	assert.Error(t, err)
}

func TestWalker_Walk_RejectsNonDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.md")
	writeFile(t, file, "x")

	w := New()
	_, err := w.Walk(context.Background(), Scope{Path: file})
	assert.Error(t, err)
}

func TestExpandGlobs_LiteralPathPassthrough(t *testing.T) {
	out, err := ExpandGlobs([]string{"does-not-exist.md"})
	require.NoError(t, err)
	assert.Equal(t, []string{"does-not-exist.md"}, out)
}

func TestExpandGlobs_ExpandsMatchingGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one.md"), "x")
	writeFile(t, filepath.Join(dir, "two.md"), "x")

	out, err := ExpandGlobs([]string{filepath.Join(dir, "*.md")})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

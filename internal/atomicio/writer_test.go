package atomicio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_WriteFile_CreatesFileAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.md")

	w := New(DefaultConfig())
	require.NoError(t, w.WriteFile(path, "hello world"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	_, err = os.Stat(path + ".mdp.tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not survive a successful write")
}

func TestWriter_WriteFile_BacksUpExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.md")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	w := New(DefaultConfig())
	require.NoError(t, w.WriteFile(path, "updated"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	foundBackup := false
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".md" && e.Name() != "out.md" {
			foundBackup = true
		}
	}
	assert.True(t, foundBackup, "expected a .bak.<timestamp> file")
}

func TestWriter_WriteFile_NoBackupWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.md")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	cfg := DefaultConfig()
	cfg.BackupOriginal = false
	w := New(cfg)
	require.NoError(t, w.WriteFile(path, "updated"))

	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1)
}

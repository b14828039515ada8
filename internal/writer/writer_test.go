package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mdproof/mdp/internal/atomicio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDryRunWriter_TracksChangesWithoutWriting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	w := NewDryRunWriter()
	require.NoError(t, w.WriteFile(path, []byte("hello world"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Contains(t, w.Summary(), "Would modify 1 file(s)")
}

func TestDryRunWriter_NoChangesSummary(t *testing.T) {
	w := NewDryRunWriter()
	assert.Equal(t, "No changes would be made.", w.Summary())
}

func TestDiskWriter_WritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	w := NewDiskWriter(atomicio.DefaultConfig())
	defer w.Cleanup()
	require.NoError(t, w.WriteFile(path, []byte("new content"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new content", string(data))
	assert.Contains(t, w.Summary(), "Successfully wrote 1 file(s)")
}

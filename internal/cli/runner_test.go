package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mdproof/mdp/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunner_Run_NoFilesReturnsGenericFailure(t *testing.T) {
	r := New(config.DefaultConfig(), &config.RunFlags{Steps: []string{"mask"}})
	outcomes, code := r.Run(context.Background(), nil)
	assert.Empty(t, outcomes)
	assert.Equal(t, 1, code) // exitcode.GenericFailure
}

func TestRunner_Run_ProcessesFileWithoutOptionalStages(t *testing.T) {
	path := writeTempDoc(t, "Hello world. This is fine.\n")
	r := New(config.DefaultConfig(), &config.RunFlags{Steps: []string{"mask", "prepass-basic"}, DryRun: true})
	outcomes, code := r.Run(context.Background(), []string{path})
	require.Len(t, outcomes, 1)
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, 0, code)
	assert.Equal(t, path, outcomes[0].Path)
}

func TestRunner_Run_ReadErrorSurfacesAsGenericFailure(t *testing.T) {
	r := New(config.DefaultConfig(), &config.RunFlags{Steps: []string{"mask"}})
	outcomes, code := r.Run(context.Background(), []string{filepath.Join(t.TempDir(), "missing.md")})
	require.Len(t, outcomes, 1)
	assert.Error(t, outcomes[0].Err)
	assert.Equal(t, 1, code) // exitcode.GenericFailure
}

func TestRunner_Run_DryRunDoesNotWriteFile(t *testing.T) {
	path := writeTempDoc(t, "# Title\n\nSome   spaced text.\n")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	r := New(config.DefaultConfig(), &config.RunFlags{Steps: []string{"mask", "prepass-basic"}, DryRun: true})
	_, code := r.Run(context.Background(), []string{path})
	assert.Equal(t, 0, code)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

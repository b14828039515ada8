package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_HasSensibleDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "NFC", cfg.UnicodeForm)
	assert.Equal(t, 0.01, cfg.Apply.MaxFileGrowthRatio)
	assert.Equal(t, 16, cfg.Detector.JSONMaxItems)
	assert.True(t, cfg.Scrubber.Enabled)
	assert.False(t, cfg.Fixer.Enabled)
}

func TestLoadFile_MissingPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFile_NonexistentPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFile_OverlaysYAMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mdp.yaml")
	yamlContent := `
quotes_policy: curly
detector:
  model: custom-model
  json_max_items: 5
acronyms:
  - NASA
  - TTS
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "curly", cfg.QuotesPolicy)
	assert.Equal(t, "custom-model", cfg.Detector.Model)
	assert.Equal(t, 5, cfg.Detector.JSONMaxItems)
	assert.Equal(t, []string{"NASA", "TTS"}, cfg.Acronyms)
	// Fields untouched by the override file keep their defaults.
	assert.Equal(t, 8, cfg.Detector.TimeoutS)
}

func TestAcronymSet_BuildsLookup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Acronyms = []string{"NASA", "TTS"}
	set := cfg.AcronymSet()
	assert.True(t, set["NASA"])
	assert.True(t, set["TTS"])
	assert.False(t, set["XYZ"])
}

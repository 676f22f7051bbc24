package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{"1.0", "2.0"}, cfg.SpecVersions)
	assert.False(t, cfg.Orchestration.Enabled)
	assert.Equal(t, 3, cfg.Orchestration.MaxDepth)
	assert.Equal(t, 5, cfg.Orchestration.MaxFanout)
	assert.Equal(t, 25, cfg.Orchestration.MaxChildrenTotal)
}

func TestParsePartialYAMLFillsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("orchestration:\n  enabled: true\n  max_fanout: 10\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Orchestration.Enabled)
	assert.Equal(t, 10, cfg.Orchestration.MaxFanout)
	assert.Equal(t, 3, cfg.Orchestration.MaxDepth)
	assert.Equal(t, []string{"1.0", "2.0"}, cfg.SpecVersions)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("orchestration: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quilt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("spec_versions: [\"2.0\"]\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"2.0"}, cfg.SpecVersions)
	assert.False(t, cfg.SupportsVersion("1.0"))
	assert.True(t, cfg.SupportsVersion("2.0"))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFallbackPolicy(t *testing.T) {
	cfg, err := Parse([]byte("orchestration:\n  max_depth: 7\n"))
	require.NoError(t, err)
	snap := cfg.FallbackPolicy()
	assert.Equal(t, 7, snap.MaxDepth)
	assert.Equal(t, 5, snap.MaxFanout)
	assert.Equal(t, 25, snap.MaxChildrenTotal)
	assert.Nil(t, snap.AllowedScopes)
	assert.False(t, snap.EnforcePublishedOnly)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePathsWithHomeOverride(t *testing.T) {
	base := t.TempDir()
	t.Setenv("QUOTEBOT_HOME", base)

	p, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, base, p.Base)
	assert.Equal(t, filepath.Join(base, "config.yaml"), p.Config)
	assert.Equal(t, filepath.Join(base, "transcripts"), p.Transcripts)
	assert.Equal(t, filepath.Join(base, "logs"), p.Logs)
}

func TestResolvePathsDefaultsToHomeDir(t *testing.T) {
	t.Setenv("QUOTEBOT_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	p, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".quotebot"), p.Base)
}

func TestEnsureDirs(t *testing.T) {
	t.Setenv("QUOTEBOT_HOME", filepath.Join(t.TempDir(), "qb"))

	p, err := ResolvePaths()
	require.NoError(t, err)
	require.NoError(t, p.EnsureDirs())

	for _, dir := range []string{p.Base, p.Transcripts, p.Logs} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

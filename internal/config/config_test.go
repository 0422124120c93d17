package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hipdac-lab/ripples/internal/rrerrors"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsIndivisibleBlockSize(t *testing.T) {
	c := Default()
	c.MaskWords = 10
	c.BlockSize = 3
	require.ErrorIs(t, c.Validate(), rrerrors.ErrConfiguration)
}

func TestValidateRejectsNoWorkers(t *testing.T) {
	c := Default()
	c.CPUWorkers = 0
	c.GPUWorkers = 0
	require.ErrorIs(t, c.Validate(), rrerrors.ErrConfiguration)
}

func TestValidateRejectsBadActivationProb(t *testing.T) {
	c := Default()
	c.ActivationProb = 1.5
	require.ErrorIs(t, c.Validate(), rrerrors.ErrConfiguration)
}

func TestValidateRejectsOutOfRangeMaxEncodedBits(t *testing.T) {
	c := Default()
	c.MaxEncodedBits = 0
	require.ErrorIs(t, c.Validate(), rrerrors.ErrConfiguration)

	c.MaxEncodedBits = 200
	require.ErrorIs(t, c.Validate(), rrerrors.ErrConfiguration)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cpu_workers: 8\nactivation_prob: 0.25\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.CPUWorkers)
	require.Equal(t, 0.25, cfg.ActivationProb)
	require.Equal(t, Default().MaskWords, cfg.MaskWords)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cpu_workers: [this is not an int]\n"), 0o644))

	_, err := Load(path)
	require.ErrorIs(t, err, rrerrors.ErrConfiguration)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "snarkpack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ValidManifest(t *testing.T) {
	path := writeManifest(t, "seed: 42\nnum_proofs: 8\nsrs_path: srs.bin\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, int64(42), cfg.Seed)
	require.Equal(t, uint32(8), cfg.NumProofs)
	require.Equal(t, "srs.bin", cfg.SRSPath)
}

func TestLoad_RejectsNonPowerOfTwoNumProofs(t *testing.T) {
	path := writeManifest(t, "seed: 1\nnum_proofs: 3\nsrs_path: srs.bin\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_RejectsMissingSRSPath(t *testing.T) {
	path := writeManifest(t, "seed: 1\nnum_proofs: 4\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/snarkpack.yaml")
	require.Error(t, err)
}

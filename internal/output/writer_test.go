package output

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriter_Write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output", "kustomization.yaml")

	w := NewFileWriter(path)
	data := []byte("apiVersion: kustomize.config.k8s.io/v1beta1\nkind: Kustomization\n")
	require.NoError(t, w.Write(data))

	got, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, string(data), string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFileWriter_CreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contour-1.14.0", "crd", "000_CustomResourceDefinition_x.yaml")

	w := NewFileWriter(path)
	require.NoError(t, w.Write([]byte("test")))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestFileWriter_CustomPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")

	w := NewFileWriter(path, WithPermissions(0o600))
	require.NoError(t, w.Write([]byte("secret")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileWriter_OverwriteExistingLogsDiff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kind: ConfigMap\nname: old\n"), 0o644)) //nolint:gosec // test

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	w := NewFileWriter(path, WithLogger(logger))
	require.NoError(t, w.Write([]byte("kind: ConfigMap\nname: new\n")))

	got, err := os.ReadFile(path) //nolint:gosec // test
	require.NoError(t, err)
	assert.Equal(t, "kind: ConfigMap\nname: new\n", string(got))

	assert.Contains(t, logs.String(), "overwriting existing file")
	assert.Contains(t, logs.String(), "-name: old")
	assert.Contains(t, logs.String(), "+name: new")
}

func TestFileWriter_OverwriteUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "same.yaml")
	require.NoError(t, os.WriteFile(path, []byte("same\n"), 0o644)) //nolint:gosec // test

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	require.NoError(t, NewFileWriter(path, WithLogger(logger)).Write([]byte("same\n")))
	assert.Contains(t, logs.String(), "file unchanged")
	assert.NotContains(t, logs.String(), "overwriting")
}

func TestFileWriter_InvalidPath(t *testing.T) {
	w := NewFileWriter("/dev/null/impossible/path.yaml")
	err := w.Write([]byte("data"))
	assert.Error(t, err)
}

func TestUnifiedDiff(t *testing.T) {
	diff, err := UnifiedDiff("a.yaml", []byte("x: 1\ny: 2\n"), []byte("x: 1\ny: 3\n"))
	require.NoError(t, err)
	assert.Contains(t, diff, "--- a.yaml (existing)")
	assert.Contains(t, diff, "+++ a.yaml (generated)")
	assert.Contains(t, diff, "-y: 2")
	assert.Contains(t, diff, "+y: 3")
}

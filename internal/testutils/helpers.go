package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo creates a temporary directory, initializes a Loam repository in it and
// saves the given documents. It returns the absolute path and the repository.
// It fails the test immediately on error.
func SetupTestRepo(t *testing.T, docs ...core.Document) (string, core.Repository) {
	t.Helper()

	// Loam prefers absolute paths.
	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(absPath)
	require.NoError(t, err, "Failed to init loam repo")

	ctx := context.Background()
	for _, doc := range docs {
		require.NoError(t, repo.Save(ctx, doc), "Failed to save %s", doc.ID)
	}
	return absPath, repo
}

// WriteFile writes content to dir/name, creating parent directories, and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

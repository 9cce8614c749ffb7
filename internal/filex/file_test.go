package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir_CreatesNestedDirectory(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "data", "nested", "quzhan.db")

	require.NoError(t, EnsureParentDir(target))

	fi, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureParentDir_BareNameIsNoop(t *testing.T) {
	require.NoError(t, EnsureParentDir("quzhan.db"))
	require.NoError(t, EnsureParentDir(":memory:"))
}

func TestEnsureParentDir_FailsIfFileBlocksPath(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "data")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := EnsureParentDir(filepath.Join(blocker, "quzhan.db"))
	require.Error(t, err)
}

func TestReadUpload_SniffsContentType(t *testing.T) {
	tmp := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	path := filepath.Join(tmp, "avatar.png")
	require.NoError(t, os.WriteFile(path, png, 0o600))

	u, err := ReadUpload(path)
	require.NoError(t, err)
	require.Equal(t, "avatar.png", u.Name)
	require.Equal(t, "image/png", u.ContentType)
	require.Equal(t, png, u.Data)
}

func TestReadUpload_Errors(t *testing.T) {
	tmp := t.TempDir()

	_, err := ReadUpload(filepath.Join(tmp, "missing.png"))
	require.Error(t, err)

	_, err = ReadUpload(tmp)
	require.Error(t, err)
}

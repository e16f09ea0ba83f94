package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFolderAndFileExists(t *testing.T) {
	dir := t.TempDir()
	reports := filepath.Join(dir, "reports", "nested")
	require.NoError(t, CreateFolder(reports, ""))

	require.NoError(t, os.WriteFile(filepath.Join(reports, "b.png"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(reports, "a.png"), 0o755))

	assert.True(t, FileExists(filepath.Join(reports, "b.png")))
	assert.False(t, FileExists(filepath.Join(reports, "c.png")))
	assert.False(t, FileExists(filepath.Join(reports, "a.png")), "directories are not files")
}

func TestGetPersistentServerID(t *testing.T) {
	assert.Equal(t, "pi-greenhouse", GetPersistentServerID("pi-greenhouse", t.TempDir()))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".server_id"), []byte(" azplant-cafe \n"), 0o644))
	assert.Equal(t, "azplant-cafe", GetPersistentServerID("", dir))

	fresh := filepath.Join(t.TempDir(), "storages")
	id := GetPersistentServerID("", fresh)
	assert.True(t, strings.HasPrefix(id, "azplant-"), id)

	stored, err := os.ReadFile(filepath.Join(fresh, ".server_id"))
	require.NoError(t, err)
	assert.Equal(t, id, string(stored))
	assert.Equal(t, id, GetPersistentServerID("", fresh))
}

package storage

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFileLoadMissing(t *testing.T) {
	f := NewJSONFile(filepath.Join(t.TempDir(), "file.json"))
	_, err := f.Load()
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestJSONFileStoreAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "file.json")
	f := NewJSONFile(path)
	assert.Equal(t, path, f.Location())

	objects := map[string]json.RawMessage{
		"City.1": json.RawMessage(`{"__class__":"City","id":"1"}`),
		"User.2": json.RawMessage(`{"__class__":"User","id":"2"}`),
	}
	require.NoError(t, f.Store(objects))

	got, err := f.Load()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"__class__":"City","id":"1"}`, string(got["City.1"]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"City.1":{"__class__":"City","id":"1"},"User.2":{"__class__":"User","id":"2"}}`, string(data))
}

func TestJSONFileStoreReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")
	f := NewJSONFile(path)

	require.NoError(t, f.Store(map[string]json.RawMessage{"City.1": json.RawMessage(`{}`)}))
	require.NoError(t, f.Store(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestJSONFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f := NewJSONFile(filepath.Join(dir, "file.json"))
	require.NoError(t, f.Store(map[string]json.RawMessage{"BaseModel.1": json.RawMessage(`{"id":"1"}`)}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "file.json", entries[0].Name())
}

func TestJSONFileLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")
	require.NoError(t, os.WriteFile(path, []byte("[1, 2]"), 0o644))

	_, err := NewJSONFile(path).Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, fs.ErrNotExist)
}

package storage

import (
	"encoding/json"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

func TestSQLiteFileLoadMissing(t *testing.T) {
	s := NewSQLiteFile(filepath.Join(t.TempDir(), "file.db"))
	_, err := s.Load()
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSQLiteFileStoreAndLoad(t *testing.T) {
	s := NewSQLiteFile(filepath.Join(t.TempDir(), "file.db"))

	first := map[string]json.RawMessage{
		"City.1":  json.RawMessage(`{"__class__":"City","id":"1","name":"Reno"}`),
		"State.2": json.RawMessage(`{"__class__":"State","id":"2"}`),
	}
	require.NoError(t, s.Store(first))

	got, err := s.Load()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, string(first["City.1"]), string(got["City.1"]))

	// A second store replaces the whole table.
	second := map[string]json.RawMessage{
		"User.3": json.RawMessage(`{"__class__":"User","id":"3"}`),
	}
	require.NoError(t, s.Store(second))

	got, err = s.Load()
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "User.3")
}

func TestEngineOnSQLite(t *testing.T) {
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}

	e, err := Open(cfg)
	require.NoError(t, err)
	r, err := e.Create(types.KindPlace)
	require.NoError(t, err)
	require.NoError(t, e.Update(types.KindPlace, r.Base().ID, "name", "Tiny house"))

	reopened, err := Open(cfg)
	require.NoError(t, err)
	got, err := reopened.Get(types.KindPlace, r.Base().ID)
	require.NoError(t, err)
	assert.Equal(t, "Tiny house", got.(*types.Place).Name)
	assert.Equal(t, types.ToDocument(r), types.ToDocument(got))
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend(types.Config{Backend: types.BackendJSON, DataDir: "/data"})
	require.NoError(t, err)
	assert.IsType(t, &JSONFile{}, b)
	assert.Equal(t, filepath.Join("/data", types.DefaultJSONFile), b.Location())

	b, err = NewBackend(types.Config{Backend: types.BackendSQLite, DataDir: "/data"})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteFile{}, b)

	_, err = NewBackend(types.Config{})
	assert.ErrorIs(t, err, types.ErrBackendEmpty)
}

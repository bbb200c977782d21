package storage

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

var errDiskFull = errors.New("disk full")

// failingBackend wraps a backend and fails every Store while fail is set.
type failingBackend struct {
	Backend
	fail bool
}

func (b *failingBackend) Store(objects map[string]json.RawMessage) error {
	if b.fail {
		return errDiskFull
	}
	return b.Backend.Store(objects)
}

func newFailingEngine(t *testing.T) (*Engine, *failingBackend) {
	t.Helper()
	backend := &failingBackend{Backend: NewJSONFile(filepath.Join(t.TempDir(), types.DefaultJSONFile))}
	return NewEngine(backend), backend
}

func TestCreateRollsBackOnSaveFailure(t *testing.T) {
	e, backend := newFailingEngine(t)
	backend.fail = true

	_, err := e.Create(types.KindCity)
	assert.ErrorIs(t, err, errDiskFull)
	assert.Empty(t, e.All())
}

func TestDeleteRollsBackOnSaveFailure(t *testing.T) {
	e, backend := newFailingEngine(t)
	r, err := e.Create(types.KindUser)
	require.NoError(t, err)
	backend.fail = true

	assert.ErrorIs(t, e.Delete(types.KindUser, r.Base().ID), errDiskFull)
	got, err := e.Get(types.KindUser, r.Base().ID)
	require.NoError(t, err)
	assert.Same(t, r, got)
}

func TestUpdateRollsBackOnSaveFailure(t *testing.T) {
	e, backend := newFailingEngine(t)
	r, err := e.Create(types.KindPlace)
	require.NoError(t, err)
	require.NoError(t, e.Update(types.KindPlace, r.Base().ID, "name", "Loft"))
	r.Base().Extra = map[string]any{"rating": json.Number("4.5")}
	before := types.ToDocument(r)
	backend.fail = true

	tests := []struct {
		name  string
		attr  string
		value string
	}{
		{"declared attribute", "name", "Barn"},
		{"new extra attribute", "nickname", "barn"},
		{"existing non-string extra", "rating", "five"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, e.Update(types.KindPlace, r.Base().ID, tt.attr, tt.value), errDiskFull)
			assert.Equal(t, before, types.ToDocument(r))
		})
	}
}

// Package storage implements the HBNB storage engine: the in-memory registry
// of records keyed by "<Kind>.<id>" and the whole-file backends it persists
// through.
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// Backend persists the complete set of serialized records in one file.
// Every Store replaces the previous content; Load returns it. When the file
// does not exist Load returns an error wrapping fs.ErrNotExist.
type Backend interface {
	// Load reads every stored document keyed by composite key.
	Load() (map[string]json.RawMessage, error)

	// Store replaces the stored content with objects.
	Store(objects map[string]json.RawMessage) error

	// Location describes where the backend keeps its file.
	Location() string
}

// NewBackend returns the backend selected by cfg.
func NewBackend(cfg types.Config) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case types.BackendJSON:
		return NewJSONFile(cfg.Path()), nil
	case types.BackendSQLite:
		return NewSQLiteFile(cfg.Path()), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}
}

package types

import (
	"errors"
	"path/filepath"
)

// Config holds backend selection and the location of the store file.
type Config struct {
	Backend  string `json:"backend" yaml:"backend"`
	DataDir  string `json:"data_dir" yaml:"data_dir"`
	FileName string `json:"file_name" yaml:"file_name"`
}

// Supported backend names.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Default store file names per backend.
const (
	DefaultJSONFile   = "file.json"
	DefaultSQLiteFile = "file.db"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendJSON:   true,
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// Path returns the store file location. An empty DataDir means the working
// directory; an empty FileName selects the backend default.
func (c Config) Path() string {
	name := c.FileName
	if name == "" {
		name = DefaultJSONFile
		if c.Backend == BackendSQLite {
			name = DefaultSQLiteFile
		}
	}
	dir := c.DataDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name)
}

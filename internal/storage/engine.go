package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// Engine owns the registry of live records and persists it through a
// Backend. It is not safe for concurrent use; one console session drives it.
type Engine struct {
	objects map[string]types.Record
	backend Backend
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures an Engine.
type Option func(e *Engine)

// WithLogger sets the logger used for persistence events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock replaces time.Now as the source of record timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine returns an empty engine persisting through backend.
func NewEngine(backend Backend, opts ...Option) *Engine {
	e := &Engine{
		objects: make(map[string]types.Record),
		backend: backend,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open builds the backend described by cfg, creates an engine on it and
// reloads the persisted records.
func Open(cfg types.Config, opts ...Option) (*Engine, error) {
	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, err
	}
	e := NewEngine(backend, opts...)
	if err := e.Reload(); err != nil {
		return nil, err
	}
	return e, nil
}

// All returns the live registry. Callers may mutate the records in place; the
// map is not copied.
func (e *Engine) All() map[string]types.Record {
	return e.objects
}

// Now returns the engine clock reading.
func (e *Engine) Now() time.Time {
	return e.now()
}

// New registers r under "<Kind>.<id>". Registering the same record twice is a
// no-op; a different record under an occupied key returns ErrDuplicateKey.
func (e *Engine) New(r types.Record) error {
	key := types.Key(r)
	if existing, ok := e.objects[key]; ok {
		if existing == r {
			return nil
		}
		return fmt.Errorf("%w: %s", types.ErrDuplicateKey, key)
	}
	e.objects[key] = r
	return nil
}

// Save serializes every registered record and replaces the backend content.
func (e *Engine) Save() error {
	objects := make(map[string]json.RawMessage, len(e.objects))
	for key, r := range e.objects {
		data, err := json.Marshal(types.ToDocument(r))
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		objects[key] = data
	}
	if err := e.backend.Store(objects); err != nil {
		return fmt.Errorf("save %s: %w", e.backend.Location(), err)
	}
	e.logger.Debug("registry saved", "location", e.backend.Location(), "records", len(objects))
	return nil
}

// Reload reads the backend content and inserts every record under the key it
// was stored with, replacing entries with the same key. A missing file is not
// an error and leaves the registry untouched.
func (e *Engine) Reload() error {
	objects, err := e.backend.Load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e.logger.Debug("no stored registry", "location", e.backend.Location())
			return nil
		}
		return fmt.Errorf("reload: %w", err)
	}

	loaded := make(map[string]types.Record, len(objects))
	for key, raw := range objects {
		r, err := e.decodeRecord(raw)
		if err != nil {
			return fmt.Errorf("reload %s: %w", key, err)
		}
		if types.Key(r) != key {
			e.logger.Warn("stored key does not match record", "key", key, "record", types.Key(r))
		}
		loaded[key] = r
	}
	for key, r := range loaded {
		e.objects[key] = r
	}
	e.logger.Debug("registry reloaded", "location", e.backend.Location(), "records", len(loaded))
	return nil
}

// decodeRecord parses one stored document and rebuilds its record from the
// __class__ tag. Numbers are kept as json.Number so they round-trip
// unchanged. Missing timestamps are read from the engine clock.
func (e *Engine) decodeRecord(raw json.RawMessage) (types.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc types.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document is null", types.ErrInvalidAttribute)
	}

	kind := doc.Kind()
	if kind == "" {
		return nil, fmt.Errorf("%w: missing %s", types.ErrUnknownKind, types.AttrClass)
	}
	delete(doc, types.AttrClass)
	return types.FromAttributesAt(kind, doc, e.now())
}

// Get returns the record registered under "<kind>.<id>".
// Returns ErrNotFound if no such key exists.
func (e *Engine) Get(kind, id string) (types.Record, error) {
	key := types.KeyOf(kind, id)
	r, ok := e.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, key)
	}
	return r, nil
}

// Create constructs a fresh record of kind, registers it and saves. The
// record is unregistered again if the save fails.
func (e *Engine) Create(kind string) (types.Record, error) {
	r, err := types.NewFresh(kind, e)
	if err != nil {
		return nil, err
	}
	if err := types.Save(r, e); err != nil {
		delete(e.objects, types.Key(r))
		return nil, err
	}
	return r, nil
}

// Delete removes "<kind>.<id>" from the registry and saves. The record is
// put back if the save fails.
// Returns ErrNotFound if no such key exists.
func (e *Engine) Delete(kind, id string) error {
	key := types.KeyOf(kind, id)
	r, ok := e.objects[key]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrNotFound, key)
	}
	delete(e.objects, key)
	if err := e.Save(); err != nil {
		e.objects[key] = r
		return err
	}
	return nil
}

// Update sets one attribute of "<kind>.<id>" and saves the record. The
// attribute and updated_at are restored if the save fails.
func (e *Engine) Update(kind, id, name, value string) error {
	r, err := e.Get(kind, id)
	if err != nil {
		return err
	}
	prev, had := types.Attribute(r, name)
	updatedAt := r.Base().UpdatedAt
	if err := types.SetAttribute(r, name, value); err != nil {
		return err
	}
	if err := types.Save(r, e); err != nil {
		restoreAttribute(r, name, prev, had)
		r.Base().UpdatedAt = updatedAt
		return err
	}
	return nil
}

// restoreAttribute undoes a SetAttribute given the value Attribute reported
// before it. Only extra attributes can be absent or hold non-strings.
func restoreAttribute(r types.Record, name string, prev any, had bool) {
	b := r.Base()
	if !had {
		delete(b.Extra, name)
		return
	}
	if s, ok := prev.(string); ok {
		_ = types.SetAttribute(r, name, s)
		return
	}
	b.Extra[name] = prev
}

// Keys returns the registered keys in sorted order.
func (e *Engine) Keys() []string {
	keys := make([]string, 0, len(e.objects))
	for key := range e.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Filter returns, sorted by key, the records whose key contains substr. An
// empty substr matches every record.
func (e *Engine) Filter(substr string) []types.Record {
	var out []types.Record
	for _, key := range e.Keys() {
		if strings.Contains(key, substr) {
			out = append(out, e.objects[key])
		}
	}
	return out
}

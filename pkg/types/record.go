package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reserved attribute names present on every record document.
const (
	AttrID        = "id"
	AttrCreatedAt = "created_at"
	AttrUpdatedAt = "updated_at"
	AttrClass     = "__class__"
)

// TimeLayout is the fixed timestamp format used in documents: ISO 8601 with
// exactly six fractional digits and no zone.
const TimeLayout = "2006-01-02T15:04:05.000000"

// Record is implemented by every concrete kind. The kind name is derived from
// the Go type and never stored as a field.
type Record interface {
	// Kind returns the concrete kind name, e.g. "City".
	Kind() string

	// Base returns the identity and timestamps shared by all kinds.
	Base() *BaseModel

	// attributes returns the declared attributes of the kind, in
	// declaration order, as pointers into the record.
	attributes() []attribute
}

// Storage is the part of the storage engine that records call into.
type Storage interface {
	// New registers a freshly constructed record.
	New(r Record) error

	// Save persists every registered record.
	Save() error

	// Now returns the current time used for timestamps.
	Now() time.Time
}

// attribute names a declared string field of a kind.
type attribute struct {
	name  string
	value *string
}

// BaseModel carries identity, timestamps and any undeclared attributes. It is
// also the generic kind and is embedded by every other kind.
type BaseModel struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Extra holds attributes the kind does not declare. Values keep the type
	// they were decoded or set with.
	Extra map[string]any
}

// Kind returns KindBaseModel.
func (b *BaseModel) Kind() string { return KindBaseModel }

// Base returns b.
func (b *BaseModel) Base() *BaseModel { return b }

func (b *BaseModel) attributes() []attribute { return nil }

// Key returns the composite registry key "<Kind>.<id>".
func Key(r Record) string {
	return KeyOf(r.Kind(), r.Base().ID)
}

// KeyOf builds a composite key from a kind name and an id.
func KeyOf(kind, id string) string {
	return kind + "." + id
}

// NewFresh constructs a record of the given kind with a new id and both
// timestamps set to the storage clock, then registers it with s.
func NewFresh(kind string, s Storage) (Record, error) {
	r, err := NewRecord(kind)
	if err != nil {
		return nil, err
	}
	now := stamp(s.Now())
	b := r.Base()
	b.ID = generateID()
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := s.New(r); err != nil {
		return nil, fmt.Errorf("register %s: %w", Key(r), err)
	}
	return r, nil
}

// FromAttributes rebuilds a record of the given kind from previously
// persisted attribute values. The id and timestamps are adopted verbatim;
// missing ones fall back to a new id and the current time. The record is not
// registered with any storage.
func FromAttributes(kind string, attrs map[string]any) (Record, error) {
	return FromAttributesAt(kind, attrs, time.Now())
}

// FromAttributesAt is FromAttributes with missing timestamps taken from now.
func FromAttributesAt(kind string, attrs map[string]any, now time.Time) (Record, error) {
	r, err := NewRecord(kind)
	if err != nil {
		return nil, err
	}
	now = stamp(now)
	b := r.Base()
	b.ID = generateID()
	b.CreatedAt = now
	b.UpdatedAt = now

	declared := declaredAttributes(r)
	for name, v := range attrs {
		switch name {
		case AttrClass:
			continue
		case AttrCreatedAt, AttrUpdatedAt:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s is %T, want string", ErrParse, name, v)
			}
			t, err := ParseTime(s)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			if name == AttrCreatedAt {
				b.CreatedAt = t
			} else {
				b.UpdatedAt = t
			}
		case AttrID:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: id is %T, want string", ErrInvalidAttribute, v)
			}
			b.ID = s
		default:
			if p, ok := declared[name]; ok {
				s, ok := v.(string)
				if !ok {
					return nil, fmt.Errorf("%w: %s.%s is %T, want string", ErrInvalidAttribute, kind, name, v)
				}
				*p = s
				continue
			}
			if b.Extra == nil {
				b.Extra = make(map[string]any)
			}
			b.Extra[name] = v
		}
	}
	return r, nil
}

// Touch moves updated_at to now. The new value is always strictly after the
// previous one; when the clock has not advanced it is bumped by one
// microsecond.
func Touch(r Record, now time.Time) {
	b := r.Base()
	now = stamp(now)
	if !now.After(b.UpdatedAt) {
		now = b.UpdatedAt.Add(time.Microsecond)
	}
	b.UpdatedAt = now
}

// Save refreshes updated_at and persists the whole storage.
func Save(r Record, s Storage) error {
	Touch(r, s.Now())
	return s.Save()
}

// SetAttribute assigns a string value to a named attribute. Declared
// attributes set the struct field; reserved names are rejected; any other
// name is kept as an extra attribute.
func SetAttribute(r Record, name, value string) error {
	switch name {
	case AttrID, AttrCreatedAt, AttrUpdatedAt, AttrClass:
		return fmt.Errorf("%w: %s", ErrReadOnlyAttribute, name)
	case "":
		return fmt.Errorf("%w: empty attribute name", ErrInvalidAttribute)
	}
	if p, ok := declaredAttributes(r)[name]; ok {
		*p = value
		return nil
	}
	b := r.Base()
	if b.Extra == nil {
		b.Extra = make(map[string]any)
	}
	b.Extra[name] = value
	return nil
}

// Attribute returns the value of a named attribute and whether it is set.
// Timestamps are returned in their document form.
func Attribute(r Record, name string) (any, bool) {
	b := r.Base()
	switch name {
	case AttrID:
		return b.ID, true
	case AttrCreatedAt:
		return FormatTime(b.CreatedAt), true
	case AttrUpdatedAt:
		return FormatTime(b.UpdatedAt), true
	case AttrClass:
		return r.Kind(), true
	}
	if p, ok := declaredAttributes(r)[name]; ok {
		return *p, true
	}
	v, ok := b.Extra[name]
	return v, ok
}

// FormatTime renders t with TimeLayout in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a TimeLayout string as UTC. Failures wrap ErrParse.
func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrParse, s, err)
	}
	return t, nil
}

// stamp normalizes a clock reading to the precision kept in documents.
func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// generateID generates a new UUID v7 for record ids.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

func declaredAttributes(r Record) map[string]*string {
	attrs := r.attributes()
	m := make(map[string]*string, len(attrs))
	for _, a := range attrs {
		m[a.name] = a.value
	}
	return m
}

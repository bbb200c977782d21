package types

import "errors"

// Record model errors.
var (
	ErrUnknownKind       = errors.New("unknown kind")
	ErrParse             = errors.New("malformed timestamp")
	ErrInvalidAttribute  = errors.New("invalid attribute value")
	ErrReadOnlyAttribute = errors.New("attribute is read-only")
)

// Registry errors.
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("key already registered")
)

// Package types defines the record model of the HBNB console: the Record
// interface shared by every kind, the concrete kinds and their attribute
// shapes, the kind registry, the document form used for persistence,
// configuration and the standard error values.
package types

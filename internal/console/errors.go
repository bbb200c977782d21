package console

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/hbnb/pkg/types"
)

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("missing argument")

var errUnknownCommand = errors.New("unknown command")

// ValidationError reports a required command argument that was not given.
type ValidationError struct {
	Arg string
}

func (e *ValidationError) Error() string {
	return e.Arg + " missing"
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Required command arguments.
var (
	errKindMissing  = &ValidationError{Arg: "class name"}
	errIDMissing    = &ValidationError{Arg: "instance id"}
	errAttrMissing  = &ValidationError{Arg: "attribute name"}
	errValueMissing = &ValidationError{Arg: "value"}
)

// Message formats err as the one-line message shown to the user.
func Message(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return fmt.Sprintf("** %s **", verr.Error())
	case errors.Is(err, types.ErrUnknownKind):
		return "** class doesn't exist **"
	case errors.Is(err, types.ErrNotFound):
		return "** no instance found **"
	default:
		return fmt.Sprintf("** %s **", err)
	}
}

package schema

import (
	"errors"
	"fmt"
)

// ErrInvalid is the sentinel all schema-validation failures wrap, so
// callers can test with errors.Is(err, schema.ErrInvalid) without
// caring which specific rule tripped.
var ErrInvalid = errors.New("schema: invalid")

// Specific validation rules, all wrapped under ErrInvalid.
var (
	ErrDuplicateName       = fmt.Errorf("%w: duplicate field or group name", ErrInvalid)
	ErrUnknownReference    = fmt.Errorf("%w: unknown field or group reference", ErrInvalid)
	ErrInvalidWidth        = fmt.Errorf("%w: bit width must be in [1, 64]", ErrInvalid)
	ErrGroupTooNarrow      = fmt.Errorf("%w: group has no bits", ErrInvalid)
	ErrRootNotGroup        = fmt.Errorf("%w: root must be a group", ErrInvalid)
	ErrNestedStruct        = fmt.Errorf("%w: struct cannot contain another struct", ErrInvalid)
	ErrStructAtNonTopLevel = fmt.Errorf("%w: struct is only valid as a top-level layout op", ErrInvalid)
	ErrRecordNotByteAligned = fmt.Errorf("%w: record width is not a multiple of 8", ErrInvalid)
)

func invalidf(base error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", base, fmt.Sprintf(format, args...))
}

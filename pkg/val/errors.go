package val

import "errors"

// Errors returned by the val package. Callers match them with errors.Is;
// the wrapped message names the offending cell or type.
var (
	// ErrParse is returned when cell text cannot be read as the target type.
	ErrParse = errors.New("value parse failure")

	// ErrInvalidDataType is returned when a declared type name is not in the
	// decode table.
	ErrInvalidDataType = errors.New("invalid data type")

	// ErrIncompatibleType is returned by the As* extractors when the active
	// variant is not the requested one.
	ErrIncompatibleType = errors.New("incompatible type conversion")

	// ErrUnhashable is returned when hashing a variant other than String or Usize.
	ErrUnhashable = errors.New("value is not hashable")
)

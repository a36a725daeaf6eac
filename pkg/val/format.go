package val

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DisplayMode selects how String values are rendered.
type DisplayMode int

const (
	// DisplayRaw renders strings as-is. Frames built by inference use it.
	DisplayRaw DisplayMode = iota
	// DisplayQuoted renders strings Go-quoted. Frames built from a declared
	// schema use it.
	DisplayQuoted
)

// String returns the string representation of a DisplayMode.
func (m DisplayMode) String() string {
	switch m {
	case DisplayRaw:
		return "raw"
	case DisplayQuoted:
		return "quoted"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseDisplayMode maps "raw" or "quoted" to a DisplayMode.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch s {
	case "", "raw":
		return DisplayRaw, nil
	case "quoted":
		return DisplayQuoted, nil
	default:
		return DisplayRaw, fmt.Errorf("unknown display mode %q", s)
	}
}

// Format renders v in its natural textual form.
func (v Value) Format(mode DisplayMode) string {
	switch v.kind {
	case KindString:
		if mode == DisplayQuoted {
			return strconv.Quote(v.s)
		}
		return v.s
	case KindFloat64:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindFloat32:
		return strconv.FormatFloat(v.f, 'f', -1, 32)
	case KindInt128:
		return v.i128.BigInt().String()
	case KindUInt128:
		return v.u128.String()
	}
	if v.kind.IsSigned() {
		return strconv.FormatInt(v.i, 10)
	}
	return strconv.FormatUint(v.u, 10)
}

// String renders v raw.
func (v Value) String() string {
	return v.Format(DisplayRaw)
}

// GoString implements fmt.GoStringer, e.g. Float64(66.66).
func (v Value) GoString() string {
	return v.kind.String() + "(" + v.Format(DisplayQuoted) + ")"
}

// MarshalJSON encodes v as its natural JSON scalar. 128-bit integers are
// encoded as strings so no precision is lost.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

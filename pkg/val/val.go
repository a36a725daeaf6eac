package val

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"lukechampine.com/uint128"
)

// Kind identifies the active variant of a Value.
type Kind uint8

const (
	KindString Kind = iota
	KindIsize
	KindUsize
	KindInt128
	KindUInt128
	KindInt64
	KindUInt64
	KindInt32
	KindUInt32
	KindInt16
	KindUInt16
	KindInt8
	KindUInt8
	KindFloat64
	KindFloat32
)

// String returns the variant name of a Kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindIsize:
		return "Isize"
	case KindUsize:
		return "Usize"
	case KindInt128:
		return "Int128"
	case KindUInt128:
		return "UInt128"
	case KindInt64:
		return "Int64"
	case KindUInt64:
		return "UInt64"
	case KindInt32:
		return "Int32"
	case KindUInt32:
		return "UInt32"
	case KindInt16:
		return "Int16"
	case KindUInt16:
		return "UInt16"
	case KindInt8:
		return "Int8"
	case KindUInt8:
		return "UInt8"
	case KindFloat64:
		return "Float64"
	case KindFloat32:
		return "Float32"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// ParseKind returns the Kind whose String form is name.
func ParseKind(name string) (Kind, bool) {
	for k := KindString; k <= KindFloat32; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// IsSigned reports whether k is a signed integer variant.
func (k Kind) IsSigned() bool {
	switch k {
	case KindIsize, KindInt128, KindInt64, KindInt32, KindInt16, KindInt8:
		return true
	}
	return false
}

// IsUnsigned reports whether k is an unsigned integer variant.
func (k Kind) IsUnsigned() bool {
	switch k {
	case KindUsize, KindUInt128, KindUInt64, KindUInt32, KindUInt16, KindUInt8:
		return true
	}
	return false
}

// IsFloat reports whether k is a floating-point variant.
func (k Kind) IsFloat() bool {
	return k == KindFloat64 || k == KindFloat32
}

// Int128 is a signed 128-bit integer.
type Int128 = decimal128.Num

// Uint128 is an unsigned 128-bit integer.
type Uint128 = uint128.Uint128

// NewInt128 builds an Int128 from its two's complement halves.
func NewInt128(hi int64, lo uint64) Int128 { return decimal128.New(hi, lo) }

// NewUint128 builds a Uint128 from its low and high words.
func NewUint128(lo, hi uint64) Uint128 { return uint128.New(lo, hi) }

// Value is a single table cell. Exactly one variant is active; only the
// payload field matching kind is meaningful, the rest stay zero.
//
// The zero Value is an empty String.
type Value struct {
	kind Kind

	s    string  // KindString
	i    int64   // signed widths up to 64 bits
	u    uint64  // unsigned widths up to 64 bits
	f    float64 // KindFloat64, KindFloat32
	i128 Int128  // KindInt128
	u128 Uint128 // KindUInt128
}

// Kind returns the active variant.
func (v Value) Kind() Kind { return v.kind }

func FromString(s string) Value { return Value{kind: KindString, s: s} }

func FromIsize(n int) Value { return Value{kind: KindIsize, i: int64(n)} }

func FromUsize(n uint) Value { return Value{kind: KindUsize, u: uint64(n)} }

func FromInt128(n Int128) Value { return Value{kind: KindInt128, i128: n} }

func FromUint128(n Uint128) Value { return Value{kind: KindUInt128, u128: n} }

func FromInt64(n int64) Value { return Value{kind: KindInt64, i: n} }

func FromUint64(n uint64) Value { return Value{kind: KindUInt64, u: n} }

func FromInt32(n int32) Value { return Value{kind: KindInt32, i: int64(n)} }

func FromUint32(n uint32) Value { return Value{kind: KindUInt32, u: uint64(n)} }

func FromInt16(n int16) Value { return Value{kind: KindInt16, i: int64(n)} }

func FromUint16(n uint16) Value { return Value{kind: KindUInt16, u: uint64(n)} }

func FromInt8(n int8) Value { return Value{kind: KindInt8, i: int64(n)} }

func FromUint8(n uint8) Value { return Value{kind: KindUInt8, u: uint64(n)} }

func FromFloat64(f float64) Value { return Value{kind: KindFloat64, f: f} }

func FromFloat32(f float32) Value { return Value{kind: KindFloat32, f: float64(f)} }

// IsString reports whether v holds a String.
func (v Value) IsString() bool { return v.kind == KindString }

// IsInt reports whether v holds an Int64, the variant produced by inference.
func (v Value) IsInt() bool { return v.kind == KindInt64 }

// IsFloat reports whether v holds a Float64.
func (v Value) IsFloat() bool { return v.kind == KindFloat64 }

// IsUsize reports whether v holds a Usize.
func (v Value) IsUsize() bool { return v.kind == KindUsize }

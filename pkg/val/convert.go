package val

import "fmt"

func incompatible(v Value, want Kind) error {
	return fmt.Errorf("%w: %s is not %s", ErrIncompatibleType, v.kind, want)
}

// AsString returns the String payload.
func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", incompatible(v, KindString)
	}
	return v.s, nil
}

// AsUsize returns the Usize payload.
func (v Value) AsUsize() (uint, error) {
	if v.kind != KindUsize {
		return 0, incompatible(v, KindUsize)
	}
	return uint(v.u), nil
}

// AsIsize returns the Isize payload.
func (v Value) AsIsize() (int, error) {
	if v.kind != KindIsize {
		return 0, incompatible(v, KindIsize)
	}
	return int(v.i), nil
}

// AsInt64 returns the Int64 payload.
func (v Value) AsInt64() (int64, error) {
	if v.kind != KindInt64 {
		return 0, incompatible(v, KindInt64)
	}
	return v.i, nil
}

// AsUint64 returns the UInt64 payload.
func (v Value) AsUint64() (uint64, error) {
	if v.kind != KindUInt64 {
		return 0, incompatible(v, KindUInt64)
	}
	return v.u, nil
}

// AsFloat64 returns the Float64 payload.
func (v Value) AsFloat64() (float64, error) {
	if v.kind != KindFloat64 {
		return 0, incompatible(v, KindFloat64)
	}
	return v.f, nil
}

// AsFloat32 returns the Float32 payload.
func (v Value) AsFloat32() (float32, error) {
	if v.kind != KindFloat32 {
		return 0, incompatible(v, KindFloat32)
	}
	return float32(v.f), nil
}

// AsInt128 returns the Int128 payload.
func (v Value) AsInt128() (Int128, error) {
	if v.kind != KindInt128 {
		return Int128{}, incompatible(v, KindInt128)
	}
	return v.i128, nil
}

// AsUint128 returns the UInt128 payload.
func (v Value) AsUint128() (Uint128, error) {
	if v.kind != KindUInt128 {
		return Uint128{}, incompatible(v, KindUInt128)
	}
	return v.u128, nil
}

// Int returns any signed payload up to 64 bits widened to int64.
func (v Value) Int() (int64, error) {
	if !v.kind.IsSigned() || v.kind == KindInt128 {
		return 0, incompatible(v, KindInt64)
	}
	return v.i, nil
}

// Uint returns any unsigned payload up to 64 bits widened to uint64.
func (v Value) Uint() (uint64, error) {
	if !v.kind.IsUnsigned() || v.kind == KindUInt128 {
		return 0, incompatible(v, KindUInt64)
	}
	return v.u, nil
}

// Float returns either float payload widened to float64.
func (v Value) Float() (float64, error) {
	if !v.kind.IsFloat() {
		return 0, incompatible(v, KindFloat64)
	}
	return v.f, nil
}

// Any returns the payload as its natural Go type. 128-bit integers are
// returned as their decimal string.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindIsize:
		return int(v.i)
	case KindUsize:
		return uint(v.u)
	case KindInt128, KindUInt128:
		return v.String()
	case KindInt64:
		return v.i
	case KindUInt64:
		return v.u
	case KindInt32:
		return int32(v.i)
	case KindUInt32:
		return uint32(v.u)
	case KindInt16:
		return int16(v.i)
	case KindUInt16:
		return uint16(v.u)
	case KindInt8:
		return int8(v.i)
	case KindUInt8:
		return uint8(v.u)
	case KindFloat64:
		return v.f
	case KindFloat32:
		return float32(v.f)
	default:
		return nil
	}
}

// FromAny wraps a Go value of one of the types Any returns, plus
// Int128 and Uint128, as a Value.
func FromAny(x any) (Value, error) {
	switch n := x.(type) {
	case string:
		return FromString(n), nil
	case int:
		return FromIsize(n), nil
	case uint:
		return FromUsize(n), nil
	case Int128:
		return FromInt128(n), nil
	case Uint128:
		return FromUint128(n), nil
	case int64:
		return FromInt64(n), nil
	case uint64:
		return FromUint64(n), nil
	case int32:
		return FromInt32(n), nil
	case uint32:
		return FromUint32(n), nil
	case int16:
		return FromInt16(n), nil
	case uint16:
		return FromUint16(n), nil
	case int8:
		return FromInt8(n), nil
	case uint8:
		return FromUint8(n), nil
	case float64:
		return FromFloat64(n), nil
	case float32:
		return FromFloat32(n), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrInvalidDataType, x)
	}
}

package val

import "cmp"

// Compare orders v against o. ok is false when the variants differ;
// values of different variants are never coerced. Floats use a total
// order in which NaN sorts before every other value.
func (v Value) Compare(o Value) (c int, ok bool) {
	if v.kind != o.kind {
		return 0, false
	}
	switch v.kind {
	case KindString:
		return cmp.Compare(v.s, o.s), true
	case KindFloat64, KindFloat32:
		return cmp.Compare(v.f, o.f), true
	case KindInt128:
		if c := cmp.Compare(v.i128.HighBits(), o.i128.HighBits()); c != 0 {
			return c, true
		}
		return cmp.Compare(v.i128.LowBits(), o.i128.LowBits()), true
	case KindUInt128:
		return v.u128.Cmp(o.u128), true
	}
	if v.kind.IsSigned() {
		return cmp.Compare(v.i, o.i), true
	}
	return cmp.Compare(v.u, o.u), true
}

// Equal reports whether v and o hold the same variant and compare equal.
func (v Value) Equal(o Value) bool {
	c, ok := v.Compare(o)
	return ok && c == 0
}

// Less reports whether v orders before o. Values of different variants are
// never less than each other.
func (v Value) Less(o Value) bool {
	c, ok := v.Compare(o)
	return ok && c < 0
}

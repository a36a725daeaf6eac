package val

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Hashable reports whether v can be used as an index key.
func (v Value) Hashable() bool {
	return v.kind == KindString || v.kind == KindUsize
}

// Hash returns a 64-bit key for v. Only String and Usize values hash;
// every other variant fails with ErrUnhashable.
func (v Value) Hash() (uint64, error) {
	d := xxhash.New()
	switch v.kind {
	case KindString:
		_, _ = d.Write([]byte{byte(KindString)})
		_, _ = d.WriteString(v.s)
	case KindUsize:
		var buf [9]byte
		buf[0] = byte(KindUsize)
		binary.LittleEndian.PutUint64(buf[1:], v.u)
		_, _ = d.Write(buf[:])
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnhashable, v.kind)
	}
	return d.Sum64(), nil
}

// MustHash is like Hash but panics on unhashable variants.
func (v Value) MustHash() uint64 {
	h, err := v.Hash()
	if err != nil {
		panic(err)
	}
	return h
}

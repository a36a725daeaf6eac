package val

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"lukechampine.com/uint128"
)

// Infer reads a cell with no declared type: int64 first, then float64,
// and anything else is kept as a String. It never fails.
func Infer(cell string) Value {
	if i, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return FromInt64(i)
	}
	if f, err := parseFloat(cell, 64); err == nil {
		return FromFloat64(f)
	}
	return FromString(cell)
}

// parseFloat reads decimal float text. Hex mantissas are refused and a
// magnitude beyond the bit size saturates to ±Inf instead of failing.
func parseFloat(s string, bitSize int) (float64, error) {
	if d := strings.TrimLeft(s, "+-"); strings.HasPrefix(d, "0x") || strings.HasPrefix(d, "0X") {
		return 0, strconv.ErrSyntax
	}
	f, err := strconv.ParseFloat(s, bitSize)
	if errors.Is(err, strconv.ErrRange) {
		return f, nil
	}
	return f, err
}

// trimPlus drops a single leading '+', which unsigned cells may carry.
func trimPlus(s string) string {
	if len(s) > 1 && s[0] == '+' && s[1] != '-' && s[1] != '+' {
		return s[1:]
	}
	return s
}

// declared lists every Go type name a schema field may use, mapped to the
// variant it decodes into under ParseExact.
var declared = map[string]Kind{
	"string":      KindString,
	"int":         KindIsize,
	"uint":        KindUsize,
	"int8":        KindInt8,
	"int16":       KindInt16,
	"int32":       KindInt32,
	"rune":        KindInt32,
	"int64":       KindInt64,
	"uint8":       KindUInt8,
	"byte":        KindUInt8,
	"uint16":      KindUInt16,
	"uint32":      KindUInt32,
	"uint64":      KindUInt64,
	"float32":     KindFloat32,
	"float64":     KindFloat64,
	"Int128":      KindInt128,
	"Uint128":     KindUInt128,
	"val.Int128":  KindInt128,
	"val.Uint128": KindUInt128,
}

// DeclaredKind returns the variant typeName decodes into under ParseExact.
func DeclaredKind(typeName string) (Kind, bool) {
	k, ok := declared[typeName]
	return k, ok
}

// NormalizedKind returns the variant typeName decodes into under
// ParseDeclared: String and Float64 keep their variant, every other
// recognized type narrows to Usize.
func NormalizedKind(typeName string) (Kind, bool) {
	k, ok := declared[typeName]
	if !ok {
		return 0, false
	}
	switch k {
	case KindString, KindFloat64:
		return k, true
	default:
		return KindUsize, true
	}
}

// ParseDeclared reads cell as the declared Go type typeName using the
// normalizing table: string and float64 decode to their own variants and
// all other integer and float32 names decode to Usize. Sign and width are
// not preserved; use ParseExact for that.
func ParseDeclared(cell, typeName string) (Value, error) {
	k, ok := NormalizedKind(typeName)
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrInvalidDataType, typeName)
	}
	return parseKind(cell, typeName, k)
}

// ParseExact reads cell as the declared Go type typeName into the variant
// of matching width and sign.
func ParseExact(cell, typeName string) (Value, error) {
	k, ok := declared[typeName]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrInvalidDataType, typeName)
	}
	return parseKind(cell, typeName, k)
}

// Parse reads cell into the variant k.
func Parse(cell string, k Kind) (Value, error) {
	return parseKind(cell, k.String(), k)
}

func parseKind(cell, typeName string, k Kind) (Value, error) {
	switch k {
	case KindString:
		return FromString(cell), nil
	case KindFloat64:
		f, err := parseFloat(cell, 64)
		if err != nil {
			return Value{}, parseError(cell, typeName, err)
		}
		return FromFloat64(f), nil
	case KindFloat32:
		f, err := parseFloat(cell, 32)
		if err != nil {
			return Value{}, parseError(cell, typeName, err)
		}
		return FromFloat32(float32(f)), nil
	case KindInt128:
		n, err := parseInt128(cell)
		if err != nil {
			return Value{}, parseError(cell, typeName, err)
		}
		return FromInt128(n), nil
	case KindUInt128:
		n, err := uint128.FromString(trimPlus(cell))
		if err != nil {
			return Value{}, parseError(cell, typeName, err)
		}
		return FromUint128(n), nil
	}

	if k.IsSigned() {
		n, err := strconv.ParseInt(cell, 10, intBits(k))
		if err != nil {
			return Value{}, parseError(cell, typeName, err)
		}
		return Value{kind: k, i: n}, nil
	}
	if k.IsUnsigned() {
		n, err := strconv.ParseUint(trimPlus(cell), 10, intBits(k))
		if err != nil {
			return Value{}, parseError(cell, typeName, err)
		}
		return Value{kind: k, u: n}, nil
	}
	return Value{}, fmt.Errorf("%w: %s", ErrInvalidDataType, typeName)
}

// intBits is the strconv bit size for an integer kind; 0 means the
// platform int size.
func intBits(k Kind) int {
	switch k {
	case KindInt8, KindUInt8:
		return 8
	case KindInt16, KindUInt16:
		return 16
	case KindInt32, KindUInt32:
		return 32
	case KindInt64, KindUInt64:
		return 64
	default:
		return 0
	}
}

func parseError(cell, typeName string, err error) error {
	return fmt.Errorf("%w: %q as %s: %w", ErrParse, cell, typeName, err)
}

var (
	two128    = new(big.Int).Lsh(big.NewInt(1), 128)
	maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	mask64    = new(big.Int).SetUint64(^uint64(0))
)

func parseInt128(s string) (Int128, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int128{}, strconv.ErrSyntax
	}
	if b.Cmp(maxInt128) > 0 || b.Cmp(minInt128) < 0 {
		return Int128{}, strconv.ErrRange
	}
	return int128FromBig(b), nil
}

// int128FromBig packs b, already range checked, as two's complement.
func int128FromBig(b *big.Int) Int128 {
	u := new(big.Int).Set(b)
	if u.Sign() < 0 {
		u.Add(u, two128)
	}
	lo := new(big.Int).And(u, mask64).Uint64()
	hi := new(big.Int).Rsh(u, 64).Uint64()
	return decimal128.New(int64(hi), lo)
}

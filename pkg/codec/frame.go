package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/klauspost/compress/zstd"

	"github.com/ssargent/tabula/pkg/dataframe"
	"github.com/ssargent/tabula/pkg/val"
)

// HeaderSize is the fixed size of a snapshot header in bytes.
const HeaderSize = 18

// FlagCompressed marks a zstd-compressed payload.
const FlagCompressed byte = 1 << 0

var (
	// ErrShortFrame is returned when data ends before the declared sizes.
	ErrShortFrame = errors.New("data too short for frame")

	// ErrChecksum is returned when the stored CRC32 does not match.
	ErrChecksum = errors.New("CRC32 mismatch")

	// ErrCorrupt is returned for a payload that does not decode.
	ErrCorrupt = errors.New("corrupt frame payload")
)

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// Header is the fixed-size prefix of an encoded snapshot.
type Header struct {
	CRC32       uint32
	Flags       byte
	Mode        val.DisplayMode
	Width       uint32
	Height      uint32
	PayloadSize uint32
}

// Compressed reports whether the payload is zstd-compressed.
func (h *Header) Compressed() bool {
	return h.Flags&FlagCompressed != 0
}

// Size returns the total encoded size of the snapshot.
func (h *Header) Size() int {
	return HeaderSize + int(h.PayloadSize)
}

// ReadHeader parses the snapshot header without validating the payload.
func ReadHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, got %d", ErrShortFrame, HeaderSize, len(data))
	}
	return &Header{
		CRC32:       binary.LittleEndian.Uint32(data[0:4]),
		Flags:       data[4],
		Mode:        val.DisplayMode(data[5]),
		Width:       binary.LittleEndian.Uint32(data[6:10]),
		Height:      binary.LittleEndian.Uint32(data[10:14]),
		PayloadSize: binary.LittleEndian.Uint32(data[14:18]),
	}, nil
}

// Validate checks the snapshot's declared size and CRC32.
func Validate(data []byte) error {
	h, err := ReadHeader(data)
	if err != nil {
		return err
	}
	if len(data) < h.Size() {
		return fmt.Errorf("%w: %d < %d", ErrShortFrame, len(data), h.Size())
	}
	if sum := crc32.ChecksumIEEE(data[4:h.Size()]); sum != h.CRC32 {
		return fmt.Errorf("%w: %d != %d", ErrChecksum, h.CRC32, sum)
	}
	return nil
}

// FrameCodec handles serialization and deserialization of frame snapshots
type FrameCodec struct {
	compress bool
}

// Option configures a FrameCodec.
type Option func(*FrameCodec)

// WithCompression zstd-compresses snapshot payloads on encode.
func WithCompression() Option {
	return func(c *FrameCodec) { c.compress = true }
}

// NewFrameCodec creates a new frame codec instance
func NewFrameCodec(opts ...Option) *FrameCodec {
	c := &FrameCodec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode serializes df into a snapshot.
func (c *FrameCodec) Encode(df *dataframe.DataFrame) ([]byte, error) {
	var payload []byte
	for _, h := range df.Headers() {
		payload = appendString(payload, h)
	}
	for r := 0; r < df.Height(); r++ {
		row, _ := df.RowValues(r)
		for _, v := range row {
			payload = appendValue(payload, v)
		}
	}

	var flags byte
	if c.compress {
		payload = encoder.EncodeAll(payload, nil)
		flags |= FlagCompressed
	}
	if len(payload) > math.MaxUint32 {
		return nil, fmt.Errorf("payload too large: %d bytes", len(payload))
	}

	buf := make([]byte, HeaderSize, HeaderSize+len(payload))
	buf[4] = flags
	buf[5] = byte(df.DisplayMode())
	binary.LittleEndian.PutUint32(buf[6:], uint32(df.Width()))
	binary.LittleEndian.PutUint32(buf[10:], uint32(df.Height()))
	binary.LittleEndian.PutUint32(buf[14:], uint32(len(payload)))
	buf = append(buf, payload...)
	binary.LittleEndian.PutUint32(buf[0:], crc32.ChecksumIEEE(buf[4:]))

	return buf, nil
}

// Decode validates data and rebuilds the DataFrame it holds. Compressed
// payloads are recognized from the header flags, so any FrameCodec can
// decode any snapshot.
func (c *FrameCodec) Decode(data []byte) (*dataframe.DataFrame, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	h, _ := ReadHeader(data)
	payload := data[HeaderSize:h.Size()]

	if h.Compressed() {
		var err error
		if payload, err = decoder.DecodeAll(payload, nil); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
	}

	width, height := uint64(h.Width), uint64(h.Height)
	// Every header and cell takes at least one byte.
	if width+width*height > uint64(len(payload)) {
		return nil, fmt.Errorf("%w: %dx%d cells in %d bytes", ErrCorrupt, width, height, len(payload))
	}

	r := &reader{buf: payload}
	headers := make([]string, width)
	for i := range headers {
		headers[i] = r.str()
	}
	values := make([]val.Value, width*height)
	for i := range values {
		values[i] = r.value()
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.pos != len(payload) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(payload)-r.pos)
	}

	df, err := dataframe.New(headers, values, int(width), int(height))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	df.SetDisplayMode(h.Mode)
	return df, nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendValue(buf []byte, v val.Value) []byte {
	k := v.Kind()
	buf = append(buf, byte(k))
	switch {
	case k == val.KindString:
		s, _ := v.AsString()
		return appendString(buf, s)
	case k == val.KindInt128:
		n, _ := v.AsInt128()
		buf = binary.LittleEndian.AppendUint64(buf, uint64(n.HighBits()))
		return binary.LittleEndian.AppendUint64(buf, n.LowBits())
	case k == val.KindUInt128:
		n, _ := v.AsUint128()
		buf = binary.LittleEndian.AppendUint64(buf, n.Hi)
		return binary.LittleEndian.AppendUint64(buf, n.Lo)
	case k.IsSigned():
		n, _ := v.Int()
		return binary.AppendVarint(buf, n)
	case k.IsUnsigned():
		n, _ := v.Uint()
		return binary.AppendUvarint(buf, n)
	case k == val.KindFloat32:
		f, _ := v.AsFloat32()
		return binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	default:
		f, _ := v.AsFloat64()
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
	}
}

// reader decodes a payload, keeping the first error.
type reader struct {
	buf []byte
	pos int
	err error
}

func (r *reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
	}
}

func (r *reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > len(r.buf)-r.pos {
		r.fail("need %d bytes at offset %d", n, r.pos)
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	n, size := binary.Uvarint(r.buf[r.pos:])
	if size <= 0 {
		r.fail("bad uvarint at offset %d", r.pos)
		return 0
	}
	r.pos += size
	return n
}

func (r *reader) varint() int64 {
	if r.err != nil {
		return 0
	}
	n, size := binary.Varint(r.buf[r.pos:])
	if size <= 0 {
		r.fail("bad varint at offset %d", r.pos)
		return 0
	}
	r.pos += size
	return n
}

func (r *reader) fixed64() uint64 {
	b := r.next(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) str() string {
	n := r.uvarint()
	if n > uint64(len(r.buf)) {
		r.fail("string length %d exceeds payload", n)
		return ""
	}
	return string(r.next(int(n)))
}

func (r *reader) value() val.Value {
	tag := r.next(1)
	if tag == nil {
		return val.Value{}
	}
	k := val.Kind(tag[0])
	switch k {
	case val.KindString:
		return val.FromString(r.str())
	case val.KindIsize:
		return val.FromIsize(int(r.varint()))
	case val.KindInt64:
		return val.FromInt64(r.varint())
	case val.KindInt32:
		return val.FromInt32(int32(r.varint()))
	case val.KindInt16:
		return val.FromInt16(int16(r.varint()))
	case val.KindInt8:
		return val.FromInt8(int8(r.varint()))
	case val.KindUsize:
		return val.FromUsize(uint(r.uvarint()))
	case val.KindUInt64:
		return val.FromUint64(r.uvarint())
	case val.KindUInt32:
		return val.FromUint32(uint32(r.uvarint()))
	case val.KindUInt16:
		return val.FromUint16(uint16(r.uvarint()))
	case val.KindUInt8:
		return val.FromUint8(uint8(r.uvarint()))
	case val.KindFloat64:
		return val.FromFloat64(math.Float64frombits(r.fixed64()))
	case val.KindFloat32:
		b := r.next(4)
		if b == nil {
			return val.Value{}
		}
		return val.FromFloat32(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case val.KindInt128:
		hi, lo := r.fixed64(), r.fixed64()
		return val.FromInt128(val.NewInt128(int64(hi), lo))
	case val.KindUInt128:
		hi, lo := r.fixed64(), r.fixed64()
		return val.FromUint128(val.NewUint128(lo, hi))
	default:
		r.fail("unknown value kind %d", tag[0])
		return val.Value{}
	}
}

// Package codec provides frame snapshot serialization for tabula.
//
// The codec package implements a binary format for persisting a DataFrame
// with its typed cells, so a frame decoded once from CSV can be stored in
// the catalog and reloaded without re-parsing.
//
// # Snapshot Format
//
// Snapshots are serialized with the following structure:
//
//	[CRC32(4)][Flags(1)][Mode(1)][Width(4)][Height(4)][PayloadSize(4)][Payload]
//
// Fields:
//   - CRC32: checksum over every byte after the CRC32 field (little-endian)
//   - Flags: bit 0 set when the payload is zstd-compressed
//   - Mode: the frame's display mode
//   - Width: number of columns (little-endian)
//   - Height: number of rows (little-endian)
//   - PayloadSize: stored payload length in bytes (little-endian)
//   - Payload: headers then cells, possibly compressed
//
// The payload holds Width headers, each a uvarint length followed by the
// name bytes, then Width*Height cells in row-major order. Every cell starts
// with its one-byte variant tag:
//   - String: uvarint length and bytes
//   - signed integers up to 64 bits: zig-zag varint
//   - unsigned integers up to 64 bits: uvarint
//   - Float64: 8 bytes of IEEE 754 bits; Float32: 4 bytes
//   - Int128 and UInt128: high then low 64-bit words, 16 bytes
//
// Decoding checks the checksum before touching the payload, so a
// corrupted snapshot is rejected with ErrChecksum rather than decoded into
// wrong values.
//
// # Usage
//
//	c := codec.NewFrameCodec(codec.WithCompression())
//
//	data, err := c.Encode(df)
//	if err != nil {
//	    return err
//	}
//
//	df, err = c.Decode(data)
//	if err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// FrameCodec instances are safe for concurrent use.
package codec

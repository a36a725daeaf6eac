package codec

import (
	"encoding/binary"
	"hash/crc32"
)

// reseal rewrites the checksum of an edited snapshot.
func reseal(data []byte) {
	binary.LittleEndian.PutUint32(data[0:], crc32.ChecksumIEEE(data[4:]))
}

package codec

import "hash/crc32"

// crc32cTable is pre-computed for CRC32-Castagnoli polynomial.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// Checksum returns the CRC-32C of data. Uses hardware acceleration when
// available.
func Checksum(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

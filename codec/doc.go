// Package codec encodes bitmaps and filters into a versioned binary format.
//
// # Format (V1)
//
// All integers are little-endian. A bitmap section is a 48-byte header followed
// by its payload:
//
//	0:4   magic "SBM1"
//	4     version (1)
//	5     kind (1 dense, 2 compressed)
//	6     compression (0 none, 1 lz4, 2 zstd)
//	7     reserved
//	8:16  capacity in bits
//	16:24 block-map words (0 for dense)
//	24:32 block-store words (dense words for dense)
//	32:40 payload length in bytes, as stored
//	40:44 CRC-32C of the stored payload
//	44:48 reserved
//
// The uncompressed payload is the block map followed by the block store, or
// the dense words. Compressed payloads are a single lz4 or zstd block.
//
// A filter file is a filter envelope followed by one compressed-kind section:
//
//	0:4   magic "SBF1"
//	4     version (1)
//	5     hasher name length n
//	6:8   reserved
//	8:16  m
//	16:20 k
//	20:24 reserved
//	24:32 inserted count
//	32:40 hasher seed
//	40:   hasher name, zero-padded to a multiple of 8 bytes
//
// Every section therefore starts 8-byte aligned, which lets Map adopt the
// words of an uncompressed file in place.
//
// Decoders check magic, version, kind, word counts, checksum and the bitmap's
// structural invariants before returning anything.
package codec

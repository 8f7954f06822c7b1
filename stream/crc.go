package stream

import "hash/crc32"

// crcTable is the IEEE CRC-32 table.
var crcTable = crc32.MakeTable(crc32.IEEE)

// checksum computes CRC-32 IEEE of the stored payload bytes. The
// checksum covers the bytes as written (post-compression), so
// corruption is caught before any decompression work.
func checksum(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

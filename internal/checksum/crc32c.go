// Package checksum computes the CRC-32C (Castagnoli) checksum used to guard
// every metadata block: polynomial 0x1EDC6F41 reflected, initial value
// 0xFFFFFFFF, final XOR 0xFFFFFFFF.
package checksum

import "hash/crc32"

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C returns the CRC-32C checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

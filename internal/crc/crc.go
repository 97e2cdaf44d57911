// Package crc computes the CRC32 checksum carried by every legacy Kafka
// message. The legacy format uses plain IEEE CRC32 (polynomial 0xEDB88320,
// reflected), not the Castagnoli variant the v2 record batch format moved
// to, so this wraps hash/crc32's IEEE table specifically rather than the
// generic crc32.Checksum entry point.
package crc

import "hash/crc32"

// IEEE returns the CRC32 of data using the IEEE polynomial, over the byte
// range a legacy message's Crc field is expected to cover (Magic through
// the end of Value). Callers pass that slice directly; this package does
// not know about message layout.
func IEEE(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

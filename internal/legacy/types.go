// Package legacy implements the legacy (magic 0 and 1) Kafka message-set
// codec: a single-use Builder that appends records into a well-formed
// message set, and a Reader that validates and iterates one.
//
// Layout is grounded in internal/record/encoding.go's
// compute-size/write-header/backpatch-CRC shape and
// internal/message/record_batch.go's strict-length/verify-CRC-then-parse
// reader shape, generalized from the teacher's single v2 varint layout to
// the two fixed-width legacy layouts below.
package legacy

import "legacykafka/internal/compress"

// Magic fixes the on-wire message layout: 0 (no timestamp) or 1
// (Timestamp field present).
type Magic int8

const (
	Magic0 Magic = 0
	Magic1 Magic = 1
)

// CompressionType is shared with the compress package: the attributes
// byte's low 3 bits name the same codec kind whether you're asking the
// registry to run it or describing which one a message carries.
type CompressionType = compress.Kind

const (
	CompressionNone   = compress.None
	CompressionGZIP   = compress.GZIP
	CompressionSnappy = compress.Snappy
	CompressionLZ4    = compress.LZ4
)

// TimestampType distinguishes a producer-assigned timestamp from one the
// broker overwrote at append time. Only meaningful for magic=1.
type TimestampType int8

const (
	CreateTime    TimestampType = 0
	LogAppendTime TimestampType = 1
)

const (
	// TimestampTypeMask is bit 3 of the attributes byte.
	TimestampTypeMask uint8 = 0x08
	// CodecMask is the low 3 bits of the attributes byte.
	CodecMask uint8 = 0x07

	// offsetFieldSize and messageSizeFieldSize together are the 12 bytes of
	// framing that precede every message body on the wire, independent of
	// magic.
	offsetFieldSize      = 8
	messageSizeFieldSize = 4
	crcFieldSize         = 4
	magicFieldSize       = 1
	attributesFieldSize  = 1
	keyLengthFieldSize   = 4
	valueLengthFieldSize = 4
	timestampFieldSize   = 8

	nullLength int32 = -1
)

// RecordOverhead is the per-record byte cost excluding the 12 bytes of
// Offset+MessageSize framing and the variable key/value bytes: 14 for
// magic 0, 22 for magic 1. This is a literal public constant per message
// magic, not a derivation, so a future field reshuffle can't silently
// change callers' pre-flight budgeting (spec §4.4, §6, §9).
func RecordOverhead(magic Magic) int32 {
	if magic == Magic1 {
		return 22
	}
	return 14
}

// SizeInBytes returns the exact number of bytes Append will add for this
// record when compression is disabled. offset and timestamp take part in
// the public signature to match the size-equality law's contract (spec
// §8: size is a function of offset, timestamp, key, and value) but don't
// affect the result: both are fixed-width fields already folded into
// RecordOverhead, so their concrete values never change a record's size.
func SizeInBytes(magic Magic, offset, timestamp int64, key, value []byte) int32 {
	return RecordOverhead(magic) + offsetFieldSize + messageSizeFieldSize + int32(len(key)) + int32(len(value))
}

// Metadata is returned by a successful Append.
type Metadata struct {
	Offset    int64
	Timestamp int64 // -1 for magic=0, the resolved timestamp for magic=1
	CRC       uint32
	Size      int32
}

// Message is one decoded record, yielded by a Reader's iterator.
type Message struct {
	Offset        int64
	Timestamp     int64 // only meaningful when HasTimestamp is true
	HasTimestamp  bool  // false for magic=0, where timestamp is null on the wire
	TimestampType TimestampType
	Key           []byte
	Value         []byte
	Checksum      uint32
}

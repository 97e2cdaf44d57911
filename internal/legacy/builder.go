package legacy

import (
	"errors"
	"time"

	"legacykafka/internal/compress"
	"legacykafka/internal/crc"
	"legacykafka/internal/legacyerr"
	"legacykafka/pkg/bytecursor"
)

// ErrBuilderSpent is returned by Append or Build once Build has already run
// once. The spec documents this as undefined-behavior territory for a
// single-use builder; this module chooses to fail loudly instead of
// silently corrupting a second buffer.
var ErrBuilderSpent = errors.New("legacy: builder already built")

// Builder incrementally appends (offset, timestamp, key, value) records
// into a single legacy message set, then optionally wraps the whole thing
// in one compressed outer message on Build. A Builder is single-use and
// non-shareable: concurrent Append calls on one instance are undefined
// behavior, same as spec §5 requires.
type Builder struct {
	magic       Magic
	compression CompressionType
	registry    *compress.Registry
	batchSize   int32

	buf          *bytecursor.Cursor
	count        int
	lastOffset   int64
	maxTimestamp int64
	spent        bool
}

// NewBuilder validates magic and compression_type up front (the two things
// that can never become valid later) but defers the "is this codec's
// backing library actually available" check to Append/Build, matching
// spec §4.4/§7: UnsupportedCodec is raised symmetrically from append and
// build, not from construction.
func NewBuilder(magic Magic, compression CompressionType, batchSize int32, registry *compress.Registry) (*Builder, error) {
	if magic != Magic0 && magic != Magic1 {
		return nil, legacyerr.TypeErrorf("invalid magic %d, want 0 or 1", magic)
	}
	switch compression {
	case compress.None, compress.GZIP, compress.Snappy, compress.LZ4:
	default:
		return nil, legacyerr.UnsupportedCodecf("unknown compression type %d", compression)
	}
	if compression == compress.LZ4 && magic == Magic0 {
		return nil, legacyerr.UnsupportedCodecf("lz4 is not supported for magic 0 message sets")
	}
	if registry == nil {
		registry = compress.NewRegistry()
	}
	return &Builder{
		magic:        magic,
		compression:  compression,
		registry:     registry,
		batchSize:    batchSize,
		buf:          bytecursor.NewWriter(0),
		maxTimestamp: -1,
	}, nil
}

// Size returns the number of bytes appended to the builder's internal
// plain message set so far (before any compression Build would apply).
func (b *Builder) Size() int32 { return int32(b.buf.Len()) }

// Append writes one record if it fits within batchSize, or returns
// (nil, nil) as the "batch full" signal. The very first record is always
// admitted regardless of batchSize, so a single oversized message is never
// silently dropped (spec §4.4, §8 size-limit exemption).
func (b *Builder) Append(offset int64, timestamp *int64, key, value []byte) (*Metadata, error) {
	if b.spent {
		return nil, ErrBuilderSpent
	}
	if err := b.checkCompressionAllowed(); err != nil {
		return nil, err
	}

	resolvedTimestamp := int64(-1)
	if b.magic == Magic1 {
		if timestamp != nil {
			resolvedTimestamp = *timestamp
		} else {
			resolvedTimestamp = time.Now().UnixMilli()
		}
	}

	needed := SizeInBytes(b.magic, offset, resolvedTimestamp, key, value)
	if b.count > 0 && int32(b.buf.Len())+needed > b.batchSize {
		return nil, nil
	}

	preLen := b.buf.Len()
	checksum, err := encodeMessage(b.buf, b.magic, offset, resolvedTimestamp, 0, key, value)
	if err != nil {
		b.buf.Truncate(preLen)
		return nil, err
	}

	b.count++
	b.lastOffset = offset
	if b.magic == Magic1 && resolvedTimestamp > b.maxTimestamp {
		b.maxTimestamp = resolvedTimestamp
	}

	return &Metadata{Offset: offset, Timestamp: resolvedTimestamp, CRC: checksum, Size: needed}, nil
}

// Build finalizes the message set. With compression disabled this just
// returns the internal buffer; otherwise it compresses the already-
// assembled plain inner message set into a single outer message whose
// Value is the compressed blob and whose Offset is the last appended
// inner offset (a broker is expected to overwrite that with the real
// assigned offset). For magic 1 the outer Timestamp is the maximum of the
// inner messages' resolved timestamps. After Build, the builder is spent.
func (b *Builder) Build() ([]byte, error) {
	if b.spent {
		return nil, ErrBuilderSpent
	}
	if err := b.checkCompressionAllowed(); err != nil {
		return nil, err
	}
	b.spent = true

	if b.compression == compress.None {
		return b.buf.Bytes(), nil
	}

	compressed, err := b.registry.Compress(b.compression, b.buf.Bytes())
	if err != nil {
		return nil, err
	}

	out := bytecursor.NewWriter(0)
	attributes := uint8(b.compression) & CodecMask
	outerTimestamp := int64(-1)
	if b.magic == Magic1 {
		outerTimestamp = b.maxTimestamp
	}
	if _, err := encodeMessage(out, b.magic, b.lastOffset, outerTimestamp, attributes, nil, compressed); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (b *Builder) checkCompressionAllowed() error {
	if b.compression == compress.None {
		return nil
	}
	if !b.registry.Available(b.compression) {
		return legacyerr.UnsupportedCodecf("Libraries for %s compression codec not found", b.compression)
	}
	return nil
}

// encodeMessage writes one plain message (v0 or v1 layout) to cur and
// returns its CRC32. It backpatches both the MessageSize and Crc fields
// after the rest of the message is known, per spec §4.1/§4.4.
func encodeMessage(cur *bytecursor.Cursor, magic Magic, offset, timestamp int64, attributes uint8, key, value []byte) (uint32, error) {
	cur.WriteInt64(offset)

	messageSizeOffset := cur.Pos()
	cur.WriteInt32(0) // patched below

	crcOffset := cur.Pos()
	cur.WriteUint32(0) // patched below

	coveredStart := cur.Pos()
	cur.WriteInt8(int8(magic))
	cur.WriteInt8(int8(attributes))

	if magic == Magic1 {
		cur.WriteInt64(timestamp)
	}

	writeLengthPrefixed(cur, key)
	writeLengthPrefixed(cur, value)

	coveredEnd := cur.Pos()

	if err := cur.PatchUint32(messageSizeOffset, uint32(coveredEnd-crcOffset)); err != nil {
		return 0, err
	}

	covered, err := cur.View(coveredStart, coveredEnd)
	if err != nil {
		return 0, err
	}
	checksum := crc.IEEE(covered)
	if err := cur.PatchUint32(crcOffset, checksum); err != nil {
		return 0, err
	}
	return checksum, nil
}

func writeLengthPrefixed(cur *bytecursor.Cursor, p []byte) {
	if p == nil {
		cur.WriteInt32(nullLength)
		return
	}
	cur.WriteInt32(int32(len(p)))
	cur.WriteBytes(p)
}

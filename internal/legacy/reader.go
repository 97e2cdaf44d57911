package legacy

import (
	"io"

	"legacykafka/internal/compress"
	"legacykafka/internal/crc"
	"legacykafka/internal/legacyerr"
	"legacykafka/pkg/bytecursor"
)

// Reader validates and iterates a buffer built by Builder. It holds the
// buffer by reference and does not eagerly parse it, matching
// internal/message/record_batch.go's DecodeBatch-on-demand shape but
// deferring even the header parse to the first accessor call.
type Reader struct {
	buf      []byte
	magic    Magic
	registry *compress.Registry
}

// NewReader wraps buf for reading as a magic-versioned legacy message set.
// registry may be nil to use the default codec set.
func NewReader(buf []byte, magic Magic, registry *compress.Registry) *Reader {
	if registry == nil {
		registry = compress.NewRegistry()
	}
	return &Reader{buf: buf, magic: magic, registry: registry}
}

// IsControlBatch is always false: control batches are a v2 record-batch
// concept with no legacy equivalent.
func (r *Reader) IsControlBatch() bool { return false }

// IsTransactional is always false: transactions did not exist in the
// legacy message format.
func (r *Reader) IsTransactional() bool { return false }

// ProducerID is always nil: idempotent/transactional producer IDs are a
// v2 record-batch concept.
func (r *Reader) ProducerID() *int64 { return nil }

// NextOffset returns the first (outer) message's Offset + 1, read at the
// fixed offset-0 position. For a buffer holding exactly one top-level
// message (always true of a compressed batch, and true of an
// uncompressed batch built from a single Append) this is the batch's
// true next offset. A multi-record uncompressed buffer instead reports
// the first record's offset + 1, the same constant-time-accessor
// trade-off spec §4.5 documents.
func (r *Reader) NextOffset() (int64, error) {
	cur := bytecursor.New(r.buf)
	offset, err := cur.ReadInt64()
	if err != nil {
		return 0, legacyerr.CorruptRecordf("reading outer offset: %v", err)
	}
	return offset + 1, nil
}

// ValidateCRC recomputes the CRC32 of the first (outer) message's covered
// region and compares it to the stored value. It does not recurse into
// inner messages of a compressed batch; those are checked individually
// during iteration.
func (r *Reader) ValidateCRC() (bool, error) {
	cur := bytecursor.New(r.buf)
	msg, err := parseMessageRaw(cur, r.magic)
	if err != nil {
		return false, err
	}
	return msg.checksum == msg.storedCRC, nil
}

// Iterate returns a one-shot, forward-only iterator over the batch's
// messages. For an uncompressed top-level message it is yielded directly;
// for a compressed one, the outer Value is decompressed and parsed as a
// nested legacy message set of the same magic, and each inner message is
// yielded in turn.
func (r *Reader) Iterate() *Iterator {
	return &Iterator{r: r, top: bytecursor.New(r.buf)}
}

// Iterator is not safe to share across goroutines and cannot be restarted.
type Iterator struct {
	r     *Reader
	top   *bytecursor.Cursor
	inner *bytecursor.Cursor

	innerTimestamp     int64
	innerTimestampType TimestampType
	innerOverride      bool
}

// Next returns the next message, or io.EOF once the batch is exhausted.
func (it *Iterator) Next() (*Message, error) {
	for {
		if it.inner != nil {
			msg, err := it.nextInner()
			if err == io.EOF {
				it.inner = nil
				continue
			}
			return msg, err
		}
		if it.top.ReadPos() >= it.top.Len() {
			return nil, io.EOF
		}
		return it.nextTop()
	}
}

func (it *Iterator) nextTop() (*Message, error) {
	raw, err := parseMessageRaw(it.top, it.r.magic)
	if err != nil {
		return nil, err
	}

	kind := compress.Kind(raw.attributes & CodecMask)
	if kind == compress.None {
		if raw.checksum != raw.storedCRC {
			return nil, legacyerr.CorruptRecordf("crc mismatch: stored %d, computed %d", raw.storedCRC, raw.checksum)
		}
		return rawToMessage(raw), nil
	}

	// A compressed wrapper's Offset/Timestamp are routinely overwritten by
	// a broker without recomputing the CRC, so its own checksum is not
	// verified here; use Reader.ValidateCRC to check it against the bytes
	// as originally produced. Inner messages are still checked below.

	if raw.valueIsNull {
		return nil, legacyerr.CorruptRecordf("Value of compressed message is None")
	}

	plain, err := it.r.registry.Decompress(kind, raw.value)
	if err != nil {
		return nil, err
	}

	it.inner = bytecursor.New(plain)
	it.innerTimestampType = CreateTime
	it.innerOverride = false
	if it.r.magic == Magic1 && raw.attributes&TimestampTypeMask != 0 {
		it.innerTimestampType = LogAppendTime
		it.innerTimestamp = raw.timestamp
		it.innerOverride = true
	}
	return it.Next()
}

func (it *Iterator) nextInner() (*Message, error) {
	if it.inner.ReadPos() >= it.inner.Len() {
		return nil, io.EOF
	}
	raw, err := parseMessageRaw(it.inner, it.r.magic)
	if err != nil {
		return nil, err
	}
	if raw.checksum != raw.storedCRC {
		return nil, legacyerr.CorruptRecordf("crc mismatch: stored %d, computed %d", raw.storedCRC, raw.checksum)
	}
	if raw.valueIsNull {
		return nil, legacyerr.CorruptRecordf("Value of compressed message is None")
	}

	msg := rawToMessage(raw)
	if it.innerOverride {
		msg.Timestamp = it.innerTimestamp
		msg.TimestampType = it.innerTimestampType
		msg.HasTimestamp = true
	}
	return msg, nil
}

func rawToMessage(raw parsedMessage) *Message {
	return &Message{
		Offset:        raw.offset,
		Timestamp:     raw.timestamp,
		HasTimestamp:  raw.hasTimestamp,
		TimestampType: CreateTime,
		Key:           raw.key,
		Value:         raw.value,
		Checksum:      raw.checksum,
	}
}

// parsedMessage is the result of parsing one on-wire message header plus
// its key/value, without yet deciding whether it's corrupt. Callers
// compare checksum to storedCRC themselves so ValidateCRC can report a
// bool instead of raising.
type parsedMessage struct {
	offset       int64
	storedCRC    uint32
	attributes   uint8
	timestamp    int64
	hasTimestamp bool
	key          []byte
	value        []byte
	valueIsNull  bool
	checksum     uint32
}

func parseMessageRaw(cur *bytecursor.Cursor, magic Magic) (parsedMessage, error) {
	var out parsedMessage

	offset, err := cur.ReadInt64()
	if err != nil {
		return out, legacyerr.CorruptRecordf("reading offset: %v", err)
	}
	out.offset = offset

	messageSize, err := cur.ReadInt32()
	if err != nil {
		return out, legacyerr.CorruptRecordf("reading message size: %v", err)
	}
	if messageSize < 0 {
		return out, legacyerr.CorruptRecordf("negative message size %d", messageSize)
	}
	messageStart := cur.ReadPos()
	messageEnd := messageStart + int(messageSize)

	storedCRC, err := cur.ReadUint32()
	if err != nil {
		return out, legacyerr.CorruptRecordf("reading crc: %v", err)
	}
	out.storedCRC = storedCRC

	coveredStart := cur.ReadPos()

	magicByte, err := cur.ReadInt8()
	if err != nil {
		return out, legacyerr.CorruptRecordf("reading magic: %v", err)
	}
	if Magic(magicByte) != magic {
		return out, legacyerr.CorruptRecordf("magic mismatch: buffer has %d, reader expects %d", magicByte, magic)
	}

	attributes, err := cur.ReadInt8()
	if err != nil {
		return out, legacyerr.CorruptRecordf("reading attributes: %v", err)
	}
	out.attributes = uint8(attributes)

	if magic == Magic1 {
		ts, err := cur.ReadInt64()
		if err != nil {
			return out, legacyerr.CorruptRecordf("reading timestamp: %v", err)
		}
		out.timestamp = ts
		out.hasTimestamp = true
	}

	keyLen, err := cur.ReadInt32()
	if err != nil {
		return out, legacyerr.CorruptRecordf("reading key length: %v", err)
	}
	if keyLen < -1 {
		return out, legacyerr.CorruptRecordf("invalid key length %d", keyLen)
	}
	if keyLen != -1 {
		key, err := cur.ReadSlice(int(keyLen))
		if err != nil {
			return out, legacyerr.CorruptRecordf("reading key: %v", err)
		}
		out.key = key
	}

	valueLen, err := cur.ReadInt32()
	if err != nil {
		return out, legacyerr.CorruptRecordf("reading value length: %v", err)
	}
	if valueLen < -1 {
		return out, legacyerr.CorruptRecordf("invalid value length %d", valueLen)
	}
	if valueLen == -1 {
		out.valueIsNull = true
	} else {
		value, err := cur.ReadSlice(int(valueLen))
		if err != nil {
			return out, legacyerr.CorruptRecordf("reading value: %v", err)
		}
		out.value = value
	}

	coveredEnd := cur.ReadPos()
	if coveredEnd != messageEnd {
		return out, legacyerr.CorruptRecordf("message size %d does not match parsed length %d", messageSize, coveredEnd-messageStart)
	}

	covered, err := cur.View(coveredStart, coveredEnd)
	if err != nil {
		return out, legacyerr.CorruptRecordf("viewing covered region: %v", err)
	}
	out.checksum = crc.IEEE(covered)

	return out, nil
}

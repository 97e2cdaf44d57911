package legacy

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"legacykafka/internal/compress"
	"legacykafka/internal/legacyerr"
)

func mustBuild(t *testing.T, magic Magic, compression CompressionType) *Builder {
	t.Helper()
	b, err := NewBuilder(magic, compression, 1<<20, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return b
}

func collect(t *testing.T, it *Iterator) []*Message {
	t.Helper()
	var out []*Message
	for {
		msg, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, msg)
	}
	return out
}

func TestRoundTripUncompressedSingleMessage(t *testing.T) {
	for _, magic := range []Magic{Magic0, Magic1} {
		b := mustBuild(t, magic, compress.None)
		if _, err := b.Append(0, nil, []byte("test"), []byte("Super")); err != nil {
			t.Fatalf("Append: %v", err)
		}
		buf, err := b.Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}

		want := SizeInBytes(magic, 0, 0, []byte("test"), []byte("Super"))
		if int32(len(buf)) != want {
			t.Errorf("magic=%d len(buf) = %d, want %d", magic, len(buf), want)
		}

		r := NewReader(buf, magic, nil)
		ok, err := r.ValidateCRC()
		if err != nil || !ok {
			t.Fatalf("ValidateCRC() = %v, %v; want true, nil", ok, err)
		}

		msgs := collect(t, r.Iterate())
		if len(msgs) != 1 {
			t.Fatalf("got %d messages, want 1", len(msgs))
		}
		if !bytes.Equal(msgs[0].Key, []byte("test")) || !bytes.Equal(msgs[0].Value, []byte("Super")) {
			t.Errorf("msg = %+v, want key=test value=Super", msgs[0])
		}
	}
}

// Exact CRC fixtures shared with sarama's message_test.go and aiokafka's
// test_legacy.py: the same (offset=0, key="test", value="Super") record,
// with timestamp 9999999 for magic 1, must checksum identically regardless
// of which Kafka client encoded it.
func TestCRCFixturesMatchKnownImplementations(t *testing.T) {
	b0 := mustBuild(t, Magic0, compress.None)
	meta0, err := b0.Append(0, nil, []byte("test"), []byte("Super"))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if meta0.CRC != 278251978 {
		t.Errorf("magic0 CRC = %d, want 278251978", meta0.CRC)
	}

	ts := int64(9999999)
	b1 := mustBuild(t, Magic1, compress.None)
	meta1, err := b1.Append(0, &ts, []byte("test"), []byte("Super"))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if meta1.CRC != 2199891077 {
		t.Errorf("magic1 CRC = %d, want 2199891077", meta1.CRC)
	}
}

func TestCorruptionDetectedOnBitFlip(t *testing.T) {
	b := mustBuild(t, Magic0, compress.None)
	if _, err := b.Append(0, nil, []byte("k"), []byte("v")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	buf, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	buf[len(buf)-1] ^= 0xFF

	r := NewReader(buf, Magic0, nil)
	ok, err := r.ValidateCRC()
	if err != nil {
		t.Fatalf("ValidateCRC: %v", err)
	}
	if ok {
		t.Error("ValidateCRC() = true after bit flip, want false")
	}

	it := r.Iterate()
	if _, err := it.Next(); !errors.Is(err, legacyerr.CorruptRecord) {
		t.Errorf("Iterate after bit flip: err = %v, want CorruptRecord", err)
	}
}

func TestRecordOverheadConstants(t *testing.T) {
	if got := RecordOverhead(Magic0); got != 14 {
		t.Errorf("RecordOverhead(Magic0) = %d, want 14", got)
	}
	if got := RecordOverhead(Magic1); got != 22 {
		t.Errorf("RecordOverhead(Magic1) = %d, want 22", got)
	}
}

func TestAppendMultipleMessagesUncompressed(t *testing.T) {
	for _, magic := range []Magic{Magic0, Magic1} {
		b := mustBuild(t, magic, compress.None)
		offsets := []int64{0, 1, 2}
		for _, off := range offsets {
			if _, err := b.Append(off, nil, []byte("k"), []byte("value-bytes")); err != nil {
				t.Fatalf("Append(%d): %v", off, err)
			}
		}
		buf, err := b.Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}

		wantLen := 3 * SizeInBytes(magic, 0, 0, []byte("k"), []byte("value-bytes"))
		if int32(len(buf)) != wantLen {
			t.Errorf("magic=%d len(buf) = %d, want %d", magic, len(buf), wantLen)
		}

		msgs := collect(t, NewReader(buf, magic, nil).Iterate())
		if len(msgs) != 3 {
			t.Fatalf("got %d messages, want 3", len(msgs))
		}
		for i, off := range offsets {
			if msgs[i].Offset != off {
				t.Errorf("msgs[%d].Offset = %d, want %d", i, msgs[i].Offset, off)
			}
		}
	}
}

func TestSizeLimitExemptsFirstRecord(t *testing.T) {
	b, err := NewBuilder(Magic0, compress.None, 1024, nil)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}

	big := bytes.Repeat([]byte("x"), 2000)
	if _, err := b.Append(0, nil, nil, big); err != nil {
		t.Fatalf("first oversized Append: %v", err)
	}

	small := bytes.Repeat([]byte("y"), 700)
	meta, err := b.Append(1, nil, nil, small)
	if err != nil {
		t.Fatalf("second Append: %v", err)
	}
	if meta != nil {
		t.Errorf("second Append = %+v, want nil (batch full signal)", meta)
	}
}

func TestCompressedRoundTripAndNextOffset(t *testing.T) {
	for _, kind := range []CompressionType{compress.GZIP, compress.Snappy} {
		b := mustBuild(t, Magic1, kind)
		var offsets []int64
		for i := int64(0); i < 10; i++ {
			ts := i * 1000
			if _, err := b.Append(i, &ts, []byte("k"), []byte("payload")); err != nil {
				t.Fatalf("Append(%d): %v", i, err)
			}
			offsets = append(offsets, i)
		}
		buf, err := b.Build()
		if err != nil {
			t.Fatalf("Build(%s): %v", kind, err)
		}

		msgs := collect(t, NewReader(buf, Magic1, nil).Iterate())
		if len(msgs) != 10 {
			t.Fatalf("%s: got %d messages, want 10", kind, len(msgs))
		}
		for i, msg := range msgs {
			if msg.Offset != offsets[i] {
				t.Errorf("%s: msgs[%d].Offset = %d, want %d", kind, i, msg.Offset, offsets[i])
			}
			if !bytes.Equal(msg.Value, []byte("payload")) {
				t.Errorf("%s: msgs[%d].Value = %q, want payload", kind, i, msg.Value)
			}
		}

		r := NewReader(buf, Magic1, nil)
		next, err := r.NextOffset()
		if err != nil {
			t.Fatalf("NextOffset(%s): %v", kind, err)
		}
		if next != 9+1 {
			t.Errorf("%s: NextOffset() = %d, want 10", kind, next)
		}
	}
}

// TestWrapperKeyIsIgnoredDuringIteration mirrors aiokafka's
// test_reader_corrupt_record_v0_v1: a compressed wrapper's own Key field is
// attacker/broker-controllable junk that iteration must never look at, since
// the wrapper's Value (once decompressed) is the only thing that carries the
// inner messages.
func TestWrapperKeyIsIgnoredDuringIteration(t *testing.T) {
	for _, magic := range []Magic{Magic0, Magic1} {
		b := mustBuild(t, magic, compress.GZIP)
		for i := int64(0); i < 10; i++ {
			var ts *int64
			if magic == Magic1 {
				v := int64(9999999)
				ts = &v
			}
			if _, err := b.Append(i, ts, []byte("test"), []byte("Super")); err != nil {
				t.Fatalf("magic=%d Append(%d): %v", magic, i, err)
			}
		}
		buf, err := b.Build()
		if err != nil {
			t.Fatalf("magic=%d Build: %v", magic, err)
		}

		// Outer wrapper header up to KeyLength: Offset(8) + MessageSize(4) +
		// Crc(4) + Magic(1) + Attributes(1) [+ Timestamp(8) for magic=1].
		keyOffset := 18
		if magic == Magic1 {
			keyOffset = 26
		}

		// Splice a non-null key ("123") into the wrapper's KeyLength/Key
		// fields, replacing the original 4-byte -1 (null) KeyLength.
		patched := make([]byte, 0, len(buf)+3)
		patched = append(patched, buf[:keyOffset]...)
		patched = append(patched, 0, 0, 0, 3, '1', '2', '3')
		patched = append(patched, buf[keyOffset+4:]...)

		const messageSizeOffset = 8
		binary.BigEndian.PutUint32(patched[messageSizeOffset:messageSizeOffset+4], uint32(len(patched)-12))

		msgs := collect(t, NewReader(patched, magic, nil).Iterate())
		if len(msgs) != 10 {
			t.Fatalf("magic=%d: got %d messages, want 10", magic, len(msgs))
		}
		for i, msg := range msgs {
			if msg.Offset != int64(i) {
				t.Errorf("magic=%d: msgs[%d].Offset = %d, want %d", magic, i, msg.Offset, i)
			}
			if !bytes.Equal(msg.Key, []byte("test")) {
				t.Errorf("magic=%d: msgs[%d].Key = %q, want test", magic, i, msg.Key)
			}
			if !bytes.Equal(msg.Value, []byte("Super")) {
				t.Errorf("magic=%d: msgs[%d].Value = %q, want Super", magic, i, msg.Value)
			}
		}
	}
}

func TestLogAppendTimeOverridesInnerTimestamps(t *testing.T) {
	b := mustBuild(t, Magic1, compress.GZIP)
	for i := int64(0); i < 3; i++ {
		ts := i * 111
		if _, err := b.Append(i, &ts, nil, []byte("v")); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	buf, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Flip on the broker-assigned LogAppendTime bit on the outer wrapper and
	// force a known append time into its Timestamp field, simulating what a
	// broker does to a compressed batch at append time.
	const overrideTimestamp = int64(555000)
	outerAttrPos := 8 + 4 + 4 + 1 // Offset + MessageSize + Crc + Magic
	buf[outerAttrPos] |= TimestampTypeMask
	cur := outerAttrPos + 1
	for i := 7; i >= 0; i-- {
		buf[cur+i] = byte(overrideTimestamp >> (8 * uint(7-i)))
	}

	msgs := collect(t, NewReader(buf, Magic1, nil).Iterate())
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	for _, msg := range msgs {
		if msg.TimestampType != LogAppendTime {
			t.Errorf("msg.TimestampType = %v, want LogAppendTime", msg.TimestampType)
		}
		if msg.Timestamp != overrideTimestamp {
			t.Errorf("msg.Timestamp = %d, want %d", msg.Timestamp, overrideTimestamp)
		}
	}
}

func TestCompressedNullValueIsCorrupt(t *testing.T) {
	b := mustBuild(t, Magic1, compress.GZIP)
	ts := int64(0)
	if _, err := b.Append(0, &ts, nil, []byte("v")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	buf, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Overwrite the outer ValueLength field with -1, simulating a
	// compressed wrapper whose Value was stripped in flight. The outer
	// message's header up to ValueLength is a fixed 30 bytes: Offset(8) +
	// MessageSize(4) + Crc(4) + Magic(1) + Attributes(1) + Timestamp(8) +
	// KeyLength(4, always -1 for a compressed wrapper).
	const valueLengthPos = 8 + 4 + 4 + 1 + 1 + 8 + 4
	buf[valueLengthPos] = 0xFF
	buf[valueLengthPos+1] = 0xFF
	buf[valueLengthPos+2] = 0xFF
	buf[valueLengthPos+3] = 0xFF

	it := NewReader(buf, Magic1, nil).Iterate()
	_, err = it.Next()
	if !errors.Is(err, legacyerr.CorruptRecord) {
		t.Fatalf("err = %v, want CorruptRecord", err)
	}
}

func TestUnsupportedCodecOnUnavailableLibrary(t *testing.T) {
	reg := compress.NewRegistry()
	reg.Override(compress.GZIP, false)

	b, err := NewBuilder(Magic1, compress.GZIP, 1<<20, reg)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	ts := int64(0)
	if _, err := b.Append(0, &ts, nil, []byte("v")); !errors.Is(err, legacyerr.UnsupportedCodec) {
		t.Errorf("Append: err = %v, want UnsupportedCodec", err)
	}
}

func TestLZ4RejectedForMagic0(t *testing.T) {
	if _, err := NewBuilder(Magic0, compress.LZ4, 1<<20, nil); !errors.Is(err, legacyerr.UnsupportedCodec) {
		t.Errorf("NewBuilder(Magic0, LZ4): err = %v, want UnsupportedCodec", err)
	}
}

func TestBuildIsSingleUse(t *testing.T) {
	b := mustBuild(t, Magic0, compress.None)
	if _, err := b.Append(0, nil, nil, []byte("v")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrBuilderSpent) {
		t.Errorf("second Build: err = %v, want ErrBuilderSpent", err)
	}
	if _, err := b.Append(1, nil, nil, []byte("v")); !errors.Is(err, ErrBuilderSpent) {
		t.Errorf("Append after Build: err = %v, want ErrBuilderSpent", err)
	}
}

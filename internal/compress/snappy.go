package compress

import (
	"encoding/binary"

	"github.com/golang/snappy"

	"legacykafka/internal/legacyerr"
)

// xerialMagic is the 8-byte header Kafka's xerial-framed snappy payloads
// start with, per spec §4.3 and the Stars1233-sarama message test fixtures
// (130, 83, 78, 65, 80, 80, 89, 0 == "\x82SNAPPY\x00").
var xerialMagic = [8]byte{0x82, 'S', 'N', 'A', 'P', 'P', 'Y', 0x00}

const (
	xerialDefaultVersion = 1
	// xerialMaxBlockSize bounds a single framed block; Kafka brokers cap it
	// at 2MB uncompressed, matching the producer-side default chunk size.
	xerialMaxBlockSize = 2 * 1024 * 1024
)

// snappyCodec writes the xerial block framing on compress, and accepts
// either xerial-framed or raw snappy payloads on decompress (spec §4.3).
type snappyCodec struct{}

func (snappyCodec) Compress(plain []byte) ([]byte, error) {
	out := make([]byte, 0, len(xerialMagic)+8+len(plain))
	out = append(out, xerialMagic[:]...)
	out = binary.BigEndian.AppendUint32(out, xerialDefaultVersion)
	out = binary.BigEndian.AppendUint32(out, xerialDefaultVersion)

	for off := 0; off < len(plain) || (off == 0 && len(plain) == 0); {
		end := off + xerialMaxBlockSize
		if end > len(plain) {
			end = len(plain)
		}
		block := snappy.Encode(nil, plain[off:end])
		out = binary.BigEndian.AppendUint32(out, uint32(len(block)))
		out = append(out, block...)
		if end == off {
			break
		}
		off = end
	}
	return out, nil
}

func (snappyCodec) Decompress(compressed []byte) ([]byte, error) {
	if !isXerialFramed(compressed) {
		out, err := snappy.Decode(nil, compressed)
		if err != nil {
			return nil, legacyerr.CorruptRecordf("snappy decompress: %v", err)
		}
		return out, nil
	}

	pos := len(xerialMagic) + 8 // magic + two version fields
	var out []byte
	for pos < len(compressed) {
		if pos+4 > len(compressed) {
			return nil, legacyerr.CorruptRecordf("snappy decompress: truncated block length")
		}
		blockLen := int(binary.BigEndian.Uint32(compressed[pos : pos+4]))
		pos += 4
		if blockLen < 0 || pos+blockLen > len(compressed) {
			return nil, legacyerr.CorruptRecordf("snappy decompress: block length %d exceeds buffer", blockLen)
		}
		block, err := snappy.Decode(nil, compressed[pos:pos+blockLen])
		if err != nil {
			return nil, legacyerr.CorruptRecordf("snappy decompress: %v", err)
		}
		out = append(out, block...)
		pos += blockLen
	}
	return out, nil
}

func isXerialFramed(b []byte) bool {
	if len(b) < len(xerialMagic) {
		return false
	}
	for i, m := range xerialMagic {
		if b[i] != m {
			return false
		}
	}
	return true
}

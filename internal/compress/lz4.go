package compress

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"

	"legacykafka/internal/legacyerr"
)

// lz4Codec uses pierrec/lz4/v4's frame reader/writer, the standard LZ4
// frame format Kafka's LZ4 codec wraps a message set in (spec §4.3). This
// module does not emulate the broker's known CRC-header workaround for
// magic=1 batches (spec §9 Open Question). Round-trip is only guaranteed
// against this module's own writer/reader pair, same as other corpus
// adaptations of pierrec/lz4 (e.g. the Cassandra native-protocol codec)
// that leave protocol-specific quirks to their own layer.
type lz4Codec struct{}

func (lz4Codec) Compress(plain []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(plain); err != nil {
		return nil, legacyerr.CorruptRecordf("lz4 compress: %v", err)
	}
	if err := w.Close(); err != nil {
		return nil, legacyerr.CorruptRecordf("lz4 compress: %v", err)
	}
	return buf.Bytes(), nil
}

func (lz4Codec) Decompress(compressed []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(compressed))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, legacyerr.CorruptRecordf("lz4 decompress: %v", err)
	}
	return out, nil
}

package compress

import (
	"bytes"
	"compress/gzip"
	"io"

	"legacykafka/internal/legacyerr"
)

// gzipCodec compresses a whole message set in one shot, same shape as the
// corpus's ninibe-netlog message package (gzip.NewWriter into a
// bytes.Buffer, Close, take Bytes).
type gzipCodec struct{}

func (gzipCodec) Compress(plain []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(plain); err != nil {
		return nil, legacyerr.CorruptRecordf("gzip compress: %v", err)
	}
	if err := w.Close(); err != nil {
		return nil, legacyerr.CorruptRecordf("gzip compress: %v", err)
	}
	return buf.Bytes(), nil
}

func (gzipCodec) Decompress(compressed []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, legacyerr.CorruptRecordf("gzip decompress: %v", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, legacyerr.CorruptRecordf("gzip decompress: %v", err)
	}
	return out, nil
}

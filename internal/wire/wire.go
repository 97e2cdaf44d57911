// Package wire frames a request/response body the way the legacy Kafka
// protocol does on a TCP connection: a 4-byte big-endian size prefix
// followed by a fixed-width header and the body bytes.
//
// Grounded in internal/protocol/request.go and response.go's framing, but
// with the net.Conn-oriented, sync.Pool-backed buffer reuse stripped
// down to plain io.Reader/io.Writer so a caller can frame a Produce
// request body (a legacy message set from internal/legacy) over any
// stream (a bytes.Buffer in a test and in the demo binary)
// without a broker actually listening on the other end. Networking
// itself is out of scope for this module.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	maxFrameSize = 100 * 1024 * 1024

	sizeFieldSize          = 4
	apiKeyFieldSize        = 2
	apiVersionFieldSize    = 2
	correlationIDFieldSize = 4

	fixedRequestHeaderSize = apiKeyFieldSize + apiVersionFieldSize + correlationIDFieldSize
)

// API keys this module's demo binary frames requests for. Legacy-format
// topics only ever see Produce and Fetch.
const (
	APIKeyProduce int16 = 0
	APIKeyFetch   int16 = 1
)

var (
	ErrFrameTooLarge = errors.New("wire: frame exceeds maximum size")
	ErrFrameTooSmall = errors.New("wire: frame too short to hold a header")
)

// RequestHeader is RequestHeader v1: api key, api version, correlation
// ID, and an optional client ID.
type RequestHeader struct {
	APIKey        int16
	APIVersion    int16
	CorrelationID int32
	ClientID      string
}

// EncodeRequestHeader writes h in RequestHeader v1 wire layout: ClientID
// is length-prefixed with a null length of -1 standing in for no client
// ID, matching the legacy message format's own null-length convention.
func EncodeRequestHeader(h RequestHeader) []byte {
	clientIDLen := int16(-1)
	if h.ClientID != "" {
		clientIDLen = int16(len(h.ClientID))
	}

	buf := make([]byte, fixedRequestHeaderSize+2+len(h.ClientID))
	offset := 0
	binary.BigEndian.PutUint16(buf[offset:], uint16(h.APIKey))
	offset += apiKeyFieldSize
	binary.BigEndian.PutUint16(buf[offset:], uint16(h.APIVersion))
	offset += apiVersionFieldSize
	binary.BigEndian.PutUint32(buf[offset:], uint32(h.CorrelationID))
	offset += correlationIDFieldSize
	binary.BigEndian.PutUint16(buf[offset:], uint16(clientIDLen))
	offset += 2
	if clientIDLen >= 0 {
		copy(buf[offset:], h.ClientID)
	}
	return buf
}

// DecodeRequestHeader parses a RequestHeader v1 from the front of buf,
// returning the header and the number of bytes consumed.
func DecodeRequestHeader(buf []byte) (RequestHeader, int, error) {
	const clientIDLenSize = 2
	if len(buf) < fixedRequestHeaderSize+clientIDLenSize {
		return RequestHeader{}, 0, ErrFrameTooSmall
	}

	offset := 0
	apiKey := int16(binary.BigEndian.Uint16(buf[offset:]))
	offset += apiKeyFieldSize
	apiVersion := int16(binary.BigEndian.Uint16(buf[offset:]))
	offset += apiVersionFieldSize
	correlationID := int32(binary.BigEndian.Uint32(buf[offset:]))
	offset += correlationIDFieldSize
	clientIDLen := int16(binary.BigEndian.Uint16(buf[offset:]))
	offset += clientIDLenSize

	var clientID string
	if clientIDLen >= 0 {
		if len(buf) < offset+int(clientIDLen) {
			return RequestHeader{}, 0, ErrFrameTooSmall
		}
		clientID = string(buf[offset : offset+int(clientIDLen)])
		offset += int(clientIDLen)
	}

	return RequestHeader{
		APIKey:        apiKey,
		APIVersion:    apiVersion,
		CorrelationID: correlationID,
		ClientID:      clientID,
	}, offset, nil
}

// WriteSizePrefixed writes a 4-byte big-endian length prefix followed by
// payload in a single call, so a caller never sends a bare body without
// the frame a reader on the other end expects.
func WriteSizePrefixed(w io.Writer, payload []byte) error {
	if len(payload) > maxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}
	var sizeBuf [sizeFieldSize]byte
	binary.BigEndian.PutUint32(sizeBuf[:], uint32(len(payload)))
	if _, err := w.Write(sizeBuf[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// ReadSizePrefixed reads a 4-byte big-endian length prefix and then
// exactly that many bytes.
func ReadSizePrefixed(r io.Reader) ([]byte, error) {
	var sizeBuf [sizeFieldSize]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return nil, err
	}
	size := int32(binary.BigEndian.Uint32(sizeBuf[:]))
	if size < 0 || size > maxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}
	if size == 0 {
		return nil, nil
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

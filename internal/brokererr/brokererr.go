// Package brokererr names the broker error codes a produce or fetch
// request against a legacy-format topic can come back with. It is not a
// client (there is no broker on the other end of this codec), but the
// codes are part of the wire contract a caller framing a request with
// internal/wire needs to interpret a response against.
//
// Scoped down from the full Kafka error-code table to the handful that
// are actually about the legacy message format: a full client would need
// all ~90, this one only needs the ones this codec's own failure modes
// can trigger.
package brokererr

// Error is a Kafka broker error code, grounded in
// srenatus-franz-go/kerr/kerr.go's shape.
type Error struct {
	Message     string
	Code        int16
	Retriable   bool
	Description string
}

func (e *Error) Error() string { return e.Message }

var (
	UnknownServerError = &Error{"UNKNOWN_SERVER_ERROR", -1, false,
		"The server experienced an unexpected error when processing the request."}
	CorruptMessage = &Error{"CORRUPT_MESSAGE", 2, true,
		"This message has failed its CRC checksum, exceeds the valid size, has a null key for a compacted topic, or is otherwise corrupt."}
	MessageTooLarge = &Error{"MESSAGE_TOO_LARGE", 10, false,
		"The request included a message larger than the max message size the server will accept."}
	RecordListTooLarge = &Error{"RECORD_LIST_TOO_LARGE", 18, false,
		"The request included message batch larger than the configured segment size on the server."}
	InvalidTimestamp = &Error{"INVALID_TIMESTAMP", 32, false,
		"The timestamp of the message is out of acceptable range."}
	UnsupportedForMessageFormat = &Error{"UNSUPPORTED_FOR_MESSAGE_FORMAT", 43, false,
		"The message format version on the broker does not support the request."}
	UnsupportedCompressionType = &Error{"UNSUPPORTED_COMPRESSION_TYPE", 76, false,
		"The requesting client does not support the compression type of given partition."}
)

var code2err = map[int16]*Error{
	2:  CorruptMessage,
	10: MessageTooLarge,
	18: RecordListTooLarge,
	32: InvalidTimestamp,
	43: UnsupportedForMessageFormat,
	76: UnsupportedCompressionType,
}

// ForCode returns the error registered for code, or UnknownServerError if
// code isn't one of the ones this package tracks.
func ForCode(code int16) *Error {
	if err, ok := code2err[code]; ok {
		return err
	}
	return UnknownServerError
}

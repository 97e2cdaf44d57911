// Package legacyerr holds the codec's error taxonomy: three sentinel kinds
// wrapped with errors.New, following the teacher's internal/segment/errors.go
// and internal/protocol/errors.go convention of small package-level sentinel
// vars rather than a custom error-code enum or a walked exception hierarchy.
package legacyerr

import (
	"errors"
	"fmt"
)

// CorruptRecord is raised by the reader on CRC mismatch, framing
// violations, or semantically impossible field values. It is terminal for
// the batch being read.
var CorruptRecord = errors.New("corrupt record")

// UnsupportedCodec is raised when a compression codec is unknown or its
// backing library is unavailable, symmetrically from builder and reader.
var UnsupportedCodec = errors.New("unsupported compression codec")

// TypeError is raised by the builder before any buffer mutation when an
// argument has the wrong shape.
var TypeError = errors.New("invalid argument type")

// CorruptRecordf wraps CorruptRecord with a formatted message, preserving
// errors.Is(err, CorruptRecord).
func CorruptRecordf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{CorruptRecord}, args...)...)
}

// UnsupportedCodecf wraps UnsupportedCodec with a formatted message.
func UnsupportedCodecf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{UnsupportedCodec}, args...)...)
}

// TypeErrorf wraps TypeError with a formatted message.
func TypeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{TypeError}, args...)...)
}

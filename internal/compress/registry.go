// Package compress implements the three compression codecs the legacy
// message format can carry in a batch's outer wrapper: gzip, Kafka's
// xerial-framed snappy, and Kafka's LZ4 frame format.
//
// Availability is modeled as an injectable capability object
// (Registry) rather than the source's monkey-patchable module-level
// booleans. Tests construct their own Registry and can force any codec's
// Available() to false without touching global state.
package compress

import "legacykafka/internal/legacyerr"

// Kind identifies a compression codec. Values match the legacy message
// attributes byte's low 3 bits (spec §3, §6: CODEC_MASK = 0x07).
type Kind uint8

const (
	None   Kind = 0
	GZIP   Kind = 1
	Snappy Kind = 2
	LZ4    Kind = 3
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case GZIP:
		return "gzip"
	case Snappy:
		return "snappy"
	case LZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// Codec compresses and decompresses a single payload in one shot. Legacy
// message sets are never streamed, they are built in full before the outer
// message is framed.
type Codec interface {
	Compress(plain []byte) ([]byte, error)
	Decompress(compressed []byte) ([]byte, error)
}

// Registry is the capability object builders and readers are given. A
// Registry from NewRegistry reports every codec available, since their
// backing libraries are compiled in; a test can call Override on one to
// simulate a missing library.
type Registry struct {
	codecs    map[Kind]Codec
	available map[Kind]bool
}

// NewRegistry wires up the three real codecs against their actual backing
// libraries. All three report Available() == true since their libraries are
// compiled in; Override exists for tests that need to simulate the opposite.
func NewRegistry() *Registry {
	r := &Registry{
		codecs:    map[Kind]Codec{GZIP: gzipCodec{}, Snappy: snappyCodec{}, LZ4: lz4Codec{}},
		available: map[Kind]bool{GZIP: true, Snappy: true, LZ4: true},
	}
	return r
}

// Override forces the availability reported for kind, for tests exercising
// the "backing library not found" failure path (spec §8 scenario 6).
func (r *Registry) Override(kind Kind, available bool) {
	r.available[kind] = available
}

// Available reports whether kind has a usable backing implementation.
// Unknown kinds are never available.
func (r *Registry) Available(kind Kind) bool {
	if kind == None {
		return true
	}
	return r.available[kind]
}

func (r *Registry) lookup(kind Kind) (Codec, error) {
	if !r.Available(kind) {
		return nil, legacyerr.UnsupportedCodecf("Libraries for %s compression codec not found", kind)
	}
	c, ok := r.codecs[kind]
	if !ok {
		return nil, legacyerr.UnsupportedCodecf("unknown compression codec %d", kind)
	}
	return c, nil
}

// Compress encodes plain using kind's codec.
func (r *Registry) Compress(kind Kind, plain []byte) ([]byte, error) {
	if kind == None {
		return plain, nil
	}
	c, err := r.lookup(kind)
	if err != nil {
		return nil, err
	}
	return c.Compress(plain)
}

// Decompress decodes compressed using kind's codec. Framing errors surface
// as CorruptRecord rather than UnsupportedCodec.
func (r *Registry) Decompress(kind Kind, compressed []byte) ([]byte, error) {
	if kind == None {
		return compressed, nil
	}
	c, err := r.lookup(kind)
	if err != nil {
		return nil, err
	}
	return c.Decompress(compressed)
}

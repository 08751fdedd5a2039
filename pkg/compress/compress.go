// Package compress is the opaque blob codec used for large auxiliary
// payloads (notice bodies, layer annotations, diffs). Callers treat the
// output as an opaque byte blob; the wire format is zstd.
package compress

import (
	"github.com/klauspost/compress/zstd"
)

var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	// Stateless EncodeAll/DecodeAll use; safe for concurrent callers.
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
}

// Compress returns the compressed form of b.
func Compress(b []byte) []byte {
	return encoder.EncodeAll(b, make([]byte, 0, len(b)/2))
}

// Decompress reverses Compress. It fails on blobs that were not produced
// by this codec.
func Decompress(b []byte) ([]byte, error) {
	return decoder.DecodeAll(b, nil)
}

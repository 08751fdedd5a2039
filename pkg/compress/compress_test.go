package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte(`{"label": ["107"], "text": "Applicability"} `), 200)

	blob := Compress(payload)
	assert.Less(t, len(blob), len(payload), "repetitive payloads should shrink")

	out, err := Decompress(blob)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestDecompressRejectsGarbage(t *testing.T) {
	_, err := Decompress([]byte("not a compressed blob"))
	require.Error(t, err)
}

func TestCompressEmpty(t *testing.T) {
	out, err := Decompress(Compress(nil))
	require.NoError(t, err)
	assert.Empty(t, out)
}

package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func respWithEncoding(enc string) *fasthttp.Response {
	resp := fasthttp.AcquireResponse()
	if enc != "" {
		resp.Header.Set("Content-Encoding", enc)
	}
	return resp
}

func compress(t *testing.T, encoding string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch encoding {
	case "gzip":
		w := gzip.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case "br":
		w := brotli.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case "zstd":
		w, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case "zlib":
		w := zlib.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case "flate":
		w, err := flate.NewWriter(&buf, flate.DefaultCompression)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	default:
		t.Fatalf("unknown test encoding %q", encoding)
	}
	return buf.Bytes()
}

func TestDecodeChain_NoEncoding(t *testing.T) {
	plain := []byte("raw image bytes")

	decoded, changed, err := DecodeChain(respWithEncoding(""), plain)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, plain, decoded)
}

func TestDecodeChain_SingleEncodings(t *testing.T) {
	plain := []byte("compressed payload")

	tests := []struct {
		header   string
		encoding string
	}{
		{"gzip", "gzip"},
		{"br", "br"},
		{"zstd", "zstd"},
		{"deflate", "zlib"},
		{"deflate", "flate"}, // raw DEFLATE without the zlib wrapper
	}

	for _, tt := range tests {
		t.Run(tt.header+"/"+tt.encoding, func(t *testing.T) {
			body := compress(t, tt.encoding, plain)

			decoded, changed, err := DecodeChain(respWithEncoding(tt.header), body)

			require.NoError(t, err)
			assert.True(t, changed)
			assert.Equal(t, plain, decoded)
		})
	}
}

func TestDecodeChain_ChainedEncodings(t *testing.T) {
	plain := []byte("chained payload")
	body := compress(t, "br", compress(t, "gzip", plain))

	decoded, changed, err := DecodeChain(respWithEncoding("gzip, br"), body)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, plain, decoded)
}

func TestDecodeChain_IdentityIsNoOp(t *testing.T) {
	plain := []byte("identity payload")

	decoded, changed, err := DecodeChain(respWithEncoding("identity, compress"), plain)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, plain, decoded)
}

func TestDecodeChain_CaseAndWhitespace(t *testing.T) {
	plain := []byte("case payload")
	body := compress(t, "gzip", plain)

	decoded, changed, err := DecodeChain(respWithEncoding("  GZip  "), body)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, plain, decoded)
}

func TestDecodeChain_UnknownEncoding(t *testing.T) {
	_, _, err := DecodeChain(respWithEncoding("snappy"), []byte("abc"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content-encoding")
}

func TestDecodeChain_CorruptGzip(t *testing.T) {
	_, _, err := DecodeChain(respWithEncoding("gzip"), []byte("not gzip at all"))

	require.Error(t, err)
}

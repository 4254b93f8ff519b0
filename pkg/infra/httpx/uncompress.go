package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fasthttp"
)

// DecodeChain decodes a response body according to its Content-Encoding
// header so downstream consumers always see raw bytes. Image hosts in
// particular like to serve gzip or brotli regardless of Accept-Encoding.
// Chained encodings ("gzip, br") are undone right to left. Supported:
// br, gzip, zstd, deflate (both zlib-wrapped and raw).
func DecodeChain(resp *fasthttp.Response, body []byte) ([]byte, bool, error) {
	ce := string(resp.Header.Peek("Content-Encoding"))
	if ce == "" {
		return body, false, nil
	}

	encodings := strings.Split(ce, ",")
	changed := false
	for i := len(encodings) - 1; i >= 0; i-- {
		enc := strings.TrimSpace(strings.ToLower(encodings[i]))
		switch enc {
		case "", "identity", "compress":
			continue
		case "br", "gzip", "zstd", "deflate":
			out, err := decode(enc, body)
			if err != nil {
				return nil, false, fmt.Errorf("decoding %s body: %w", enc, err)
			}
			body = out
			changed = true
		default:
			return nil, false, fmt.Errorf("unsupported content-encoding: %q", enc)
		}
	}
	return body, changed, nil
}

func decode(encoding string, body []byte) ([]byte, error) {
	switch encoding {
	case "br":
		return io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
	case "gzip":
		gr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		out, err := io.ReadAll(gr)
		if cerr := gr.Close(); err == nil {
			err = cerr
		}
		return out, err
	case "zstd":
		dec, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return io.ReadAll(dec)
	case "deflate":
		// zlib-wrapped per RFC 9110; some servers send raw DEFLATE
		if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
			out, err := io.ReadAll(zr)
			if cerr := zr.Close(); err == nil {
				err = cerr
			}
			return out, err
		}
		fr := flate.NewReader(bytes.NewReader(body))
		out, err := io.ReadAll(fr)
		if cerr := fr.Close(); err == nil {
			err = cerr
		}
		return out, err
	}
	return nil, fmt.Errorf("unknown encoding %q", encoding)
}

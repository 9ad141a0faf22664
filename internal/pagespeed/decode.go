package pagespeed

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
)

// decodeBody undoes the Content-Encoding chain, last-applied first.
// Unknown encodings are returned untouched.
func decodeBody(contentEncoding string, raw []byte, limit int64) ([]byte, error) {
	encodings := strings.Split(contentEncoding, ",")
	body := raw

	for i := len(encodings) - 1; i >= 0; i-- {
		enc := strings.ToLower(strings.TrimSpace(encodings[i]))

		var r io.Reader
		switch enc {
		case "", "identity":
			continue
		case "br":
			r = brotli.NewReader(bytes.NewReader(body))
		case "gzip", "x-gzip":
			zr, err := gzip.NewReader(bytes.NewReader(body))
			if err != nil {
				return nil, fmt.Errorf("gzip: %w", err)
			}
			defer func() { _ = zr.Close() }()
			r = zr
		case "deflate":
			// Servers send both zlib-wrapped and raw deflate under this name.
			if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
				defer func() { _ = zr.Close() }()
				r = zr
			} else {
				r = flate.NewReader(bytes.NewReader(body))
			}
		default:
			return body, nil
		}

		decoded, err := io.ReadAll(io.LimitReader(r, limit))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", enc, err)
		}
		body = decoded
	}

	return body, nil
}

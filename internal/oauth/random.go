package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// base64url is RFC 4648 §5 without padding. Strict rejects non-canonical trailing bits.
var base64url = base64.RawURLEncoding.Strict()

// RandomBytes reads n bytes from r, or from crypto/rand when r is nil.
// A short read is an entropy failure; it is never retried.
func RandomBytes(r io.Reader, n int) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEntropy, err)
	}
	return b, nil
}

// EncodeBase64URL encodes b as unpadded base64url.
func EncodeBase64URL(b []byte) string {
	return base64url.EncodeToString(b)
}

// DecodeBase64URL decodes unpadded base64url. Padding characters and anything outside
// the URL-safe alphabet are rejected.
func DecodeBase64URL(s string) ([]byte, error) {
	b, err := base64url.DecodeString(s)
	if err != nil {
		return nil, malformedEncoding(err)
	}
	return b, nil
}

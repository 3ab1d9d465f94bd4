package oauth

import (
	"crypto/subtle"
	"fmt"
	"io"
)

// csrfEntropy is the number of random bytes in a generated state (256 bits).
const csrfEntropy = 32

// minCSRFEntropy is the smallest decoded state accepted on restore (128 bits).
const minCSRFEntropy = 16

// CSRFState is the opaque anti-forgery value round-tripped through the authorization redirect.
type CSRFState string

// GenerateCSRFState draws 32 random bytes from r and encodes them as base64url.
func GenerateCSRFState(r io.Reader) (CSRFState, error) {
	b, err := RandomBytes(r, csrfEntropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return CSRFState(EncodeBase64URL(b)), nil
}

// VerifyCSRFState compares expected and received in constant time. An empty expected
// value never matches.
func VerifyCSRFState(expected, received CSRFState) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1
}

// validate checks that a persisted state decodes and carries enough entropy.
func (s CSRFState) validate() error {
	b, err := DecodeBase64URL(string(s))
	if err != nil {
		return err
	}
	if len(b) < minCSRFEntropy {
		return fmt.Errorf("%w: state carries %d bytes, need at least %d", ErrMalformedEncoding, len(b), minCSRFEntropy)
	}
	return nil
}

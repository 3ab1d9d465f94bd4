package oauth

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"io"

	"golang.org/x/oauth2"

	"github.com/airbytehq/oauthflow/internal/secret"
)

// Method is the PKCE code challenge method (RFC 7636 §4.2).
type Method string

const (
	MethodS256  Method = "S256"
	MethodPlain Method = "plain"
)

const (
	// verifierEntropy is the number of random bytes behind a default verifier (43 chars).
	verifierEntropy = 32

	MinVerifierLength = 43
	MaxVerifierLength = 128
)

// unreserved = ALPHA / DIGIT / "-" / "." / "_" / "~"
const unreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

// ParseMethod accepts "S256", "plain" or "" (which means S256).
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "", MethodS256:
		return MethodS256, nil
	case MethodPlain:
		return MethodPlain, nil
	}
	return "", fmt.Errorf("%w: unsupported pkce method %q", ErrInvalidConfig, s)
}

func (m Method) normalize() Method {
	if m == "" {
		return MethodS256
	}
	return m
}

// PKCEPair binds a verifier to the challenge derived from it. There is no way to build
// one with a mismatching challenge.
type PKCEPair struct {
	verifier  *secret.Value
	challenge string
	method    Method
}

// GeneratePKCE draws 32 random bytes and encodes them as a 43 character verifier.
func GeneratePKCE(r io.Reader, m Method) (*PKCEPair, error) {
	b, err := RandomBytes(r, verifierEntropy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PKCE verifier: %w", err)
	}
	defer clear(b)

	return newPKCEPair(EncodeBase64URL(b), m)
}

// GeneratePKCEWithLength draws a verifier of n unreserved characters, n clamped to [43, 128].
func GeneratePKCEWithLength(r io.Reader, m Method, n int) (*PKCEPair, error) {
	n = max(MinVerifierLength, min(n, MaxVerifierLength))

	// Rejection sampling over 0..255 keeps the distribution uniform across the 66 symbols.
	const limit = 256 - 256%len(unreserved)

	out := make([]byte, 0, n)
	defer clear(out)
	for len(out) < n {
		b, err := RandomBytes(r, n)
		if err != nil {
			return nil, fmt.Errorf("failed to generate PKCE verifier: %w", err)
		}
		for _, c := range b {
			if int(c) >= limit || len(out) == n {
				continue
			}
			out = append(out, unreserved[int(c)%len(unreserved)])
		}
		clear(b)
	}

	return newPKCEPair(string(out), m)
}

func newPKCEPair(verifier string, m Method) (*PKCEPair, error) {
	challenge, err := DeriveChallenge(verifier, m)
	if err != nil {
		return nil, err
	}
	return &PKCEPair{
		verifier:  secret.New(verifier),
		challenge: challenge,
		method:    m.normalize(),
	}, nil
}

// restorePKCEPair rebuilds a pair from persisted parts and refuses any mismatch.
func restorePKCEPair(verifier, challenge string, m Method) (*PKCEPair, error) {
	if err := ValidateVerifier(verifier); err != nil {
		return nil, err
	}
	p, err := newPKCEPair(verifier, m)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(p.challenge), []byte(challenge)) != 1 {
		p.Discard()
		return nil, ErrPKCEMismatch
	}
	return p, nil
}

// DeriveChallenge computes the challenge for verifier under m.
func DeriveChallenge(verifier string, m Method) (string, error) {
	switch m.normalize() {
	case MethodS256:
		return oauth2.S256ChallengeFromVerifier(verifier), nil
	case MethodPlain:
		return verifier, nil
	}
	return "", fmt.Errorf("%w: unsupported pkce method %q", ErrInvalidConfig, m)
}

// ValidateVerifier checks the RFC 7636 §4.1 length and character set.
func ValidateVerifier(v string) error {
	if len(v) < MinVerifierLength || len(v) > MaxVerifierLength {
		return fmt.Errorf("%w: pkce verifier length %d outside [%d, %d]", ErrMalformedEncoding, len(v), MinVerifierLength, MaxVerifierLength)
	}
	for i := 0; i < len(v); i++ {
		if !isUnreserved(v[i]) {
			return fmt.Errorf("%w: invalid byte 0x%x in pkce verifier", ErrMalformedEncoding, v[i])
		}
	}
	return nil
}

func isUnreserved(c byte) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

// Verifier returns the secret verifier.
func (p *PKCEPair) Verifier() *secret.Value { return p.verifier }

// Challenge returns the derived challenge.
func (p *PKCEPair) Challenge() string { return p.challenge }

// Method returns the challenge method.
func (p *PKCEPair) Method() Method { return p.method }

// Discard zeroes the verifier. The challenge is not secret and stays readable.
func (p *PKCEPair) Discard() {
	if p == nil {
		return
	}
	p.verifier.Discard()
}

// VerifyPKCE recomputes the challenge from candidate with the pair's method and compares
// it to the stored challenge in constant time.
func VerifyPKCE(p *PKCEPair, candidate string) bool {
	if p == nil {
		return false
	}

	var got []byte
	switch p.method {
	case MethodS256:
		sum := sha256.Sum256([]byte(candidate))
		got = []byte(EncodeBase64URL(sum[:]))
	case MethodPlain:
		got = []byte(candidate)
	default:
		return false
	}

	return subtle.ConstantTimeCompare(got, []byte(p.challenge)) == 1
}

package oauth

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 7636 Appendix B.
var (
	rfcVerifierOctets = []byte{
		116, 24, 223, 180, 151, 153, 224, 37, 79, 250, 96, 125, 216, 173,
		187, 186, 22, 212, 37, 77, 105, 214, 191, 240, 91, 88, 5, 88, 83,
		132, 141, 121,
	}
	rfcVerifier  = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	rfcChallenge = "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"
)

func TestDeriveChallenge(t *testing.T) {
	tests := []struct {
		name     string
		verifier string
		method   Method
		want     string
	}{
		{
			name:     "rfc 7636 test vector",
			verifier: rfcVerifier,
			method:   MethodS256,
			want:     rfcChallenge,
		},
		{
			name:     "zero method means S256",
			verifier: rfcVerifier,
			method:   "",
			want:     rfcChallenge,
		},
		{
			name:     "plain",
			verifier: rfcVerifier,
			method:   MethodPlain,
			want:     rfcVerifier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveChallenge(tt.verifier, tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DeriveChallenge(rfcVerifier, "S512")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGeneratePKCE_TestVector(t *testing.T) {
	p, err := GeneratePKCE(bytes.NewReader(rfcVerifierOctets), MethodS256)
	require.NoError(t, err)

	assert.Equal(t, rfcVerifier, p.Verifier().Reveal())
	assert.Equal(t, rfcChallenge, p.Challenge())
	assert.Equal(t, MethodS256, p.Method())
}

func TestGeneratePKCE(t *testing.T) {
	for _, m := range []Method{MethodS256, MethodPlain} {
		t.Run(string(m), func(t *testing.T) {
			p, err := GeneratePKCE(nil, m)
			require.NoError(t, err)

			assert.Len(t, p.Verifier().Reveal(), 43)
			assert.NoError(t, ValidateVerifier(p.Verifier().Reveal()))
			assert.True(t, VerifyPKCE(p, p.Verifier().Reveal()))
			assert.False(t, VerifyPKCE(p, p.Verifier().Reveal()+"x"))
			assert.False(t, VerifyPKCE(p, strings.Repeat("a", 43)))
		})
	}
}

func TestGeneratePKCE_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		p, err := GeneratePKCE(nil, MethodS256)
		require.NoError(t, err)
		assert.False(t, seen[p.Verifier().Reveal()], "generated duplicate verifier")
		seen[p.Verifier().Reveal()] = true
	}
}

func TestGeneratePKCE_EntropyFailure(t *testing.T) {
	_, err := GeneratePKCE(iotest.ErrReader(errors.New("no entropy")), MethodS256)
	assert.ErrorIs(t, err, ErrEntropy)

	_, err = GeneratePKCE(bytes.NewReader(make([]byte, 8)), MethodS256)
	assert.ErrorIs(t, err, ErrEntropy)
}

func TestGeneratePKCEWithLength(t *testing.T) {
	tests := []struct {
		name   string
		length int
		want   int
	}{
		{name: "below minimum", length: 10, want: 43},
		{name: "minimum", length: 43, want: 43},
		{name: "middle", length: 96, want: 96},
		{name: "maximum", length: 128, want: 128},
		{name: "above maximum", length: 500, want: 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := GeneratePKCEWithLength(&countingReader{}, MethodS256, tt.length)
			require.NoError(t, err)

			v := p.Verifier().Reveal()
			assert.Len(t, v, tt.want)
			assert.NoError(t, ValidateVerifier(v))
			assert.True(t, VerifyPKCE(p, v))
		})
	}
}

func TestValidateVerifier(t *testing.T) {
	tests := []struct {
		name      string
		verifier  string
		expectErr bool
	}{
		{name: "rfc vector", verifier: rfcVerifier},
		{name: "all unreserved", verifier: strings.Repeat("aZ0-._~", 7)},
		{name: "too short", verifier: strings.Repeat("a", 42), expectErr: true},
		{name: "too long", verifier: strings.Repeat("a", 129), expectErr: true},
		{name: "reserved char", verifier: strings.Repeat("a", 42) + "+", expectErr: true},
		{name: "non ascii", verifier: strings.Repeat("a", 42) + "é", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVerifier(tt.verifier)
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrMalformedEncoding)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		input     string
		want      Method
		expectErr bool
	}{
		{input: "", want: MethodS256},
		{input: "S256", want: MethodS256},
		{input: "plain", want: MethodPlain},
		{input: "s256", expectErr: true},
		{input: "none", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMethod(tt.input)
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRestorePKCEPair(t *testing.T) {
	p, err := restorePKCEPair(rfcVerifier, rfcChallenge, MethodS256)
	require.NoError(t, err)
	assert.Equal(t, rfcChallenge, p.Challenge())

	_, err = restorePKCEPair(rfcVerifier, rfcVerifier, MethodS256)
	assert.ErrorIs(t, err, ErrPKCEMismatch)

	_, err = restorePKCEPair("short", "short", MethodPlain)
	assert.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestPKCEPair_Discard(t *testing.T) {
	p, err := GeneratePKCE(nil, MethodS256)
	require.NoError(t, err)
	challenge := p.Challenge()

	p.Discard()

	assert.True(t, p.Verifier().IsEmpty())
	assert.Equal(t, challenge, p.Challenge())
	assert.False(t, VerifyPKCE(nil, "anything"))
}

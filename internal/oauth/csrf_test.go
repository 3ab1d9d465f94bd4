package oauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCSRFState(t *testing.T) {
	a, err := GenerateCSRFState(nil)
	require.NoError(t, err)
	b, err := GenerateCSRFState(nil)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, string(a), 43)

	raw, err := DecodeBase64URL(string(a))
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.NoError(t, a.validate())
}

func TestVerifyCSRFState(t *testing.T) {
	tests := []struct {
		name     string
		expected CSRFState
		received CSRFState
		want     bool
	}{
		{name: "equal", expected: "abc", received: "abc", want: true},
		{name: "different", expected: "abc", received: "abd", want: false},
		{name: "prefix", expected: "abc", received: "ab", want: false},
		{name: "empty received", expected: "abc", received: "", want: false},
		{name: "both empty", expected: "", received: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyCSRFState(tt.expected, tt.received))
		})
	}
}

func TestCSRFState_Validate(t *testing.T) {
	assert.ErrorIs(t, CSRFState("not+base64").validate(), ErrMalformedEncoding)
	assert.ErrorIs(t, CSRFState(EncodeBase64URL(make([]byte, 8))).validate(), ErrMalformedEncoding)
	assert.NoError(t, CSRFState(EncodeBase64URL(make([]byte, 16))).validate())
}

// Package secret holds sensitive values (verifiers, client secrets, tokens) so they
// are never printed by accident and their backing memory can be cleared.
//
// Go has no deterministic destructors. A Value zeroes its bytes when Discard is
// called and, as a fallback, when the garbage collector finalizes it. Strings
// returned by Reveal are copies the runtime may keep around; callers that need the
// stronger guarantee should use WithBytes and avoid converting to string.
package secret

import (
	"crypto/subtle"
	"encoding/json"
	"runtime"
)

// Redacted is what a Value prints as.
const Redacted = "[REDACTED]"

// Value is a secret byte string. The zero value and nil are both empty.
type Value struct {
	b []byte
}

// New copies s into a new Value.
func New(s string) *Value {
	return FromBytes([]byte(s))
}

// FromBytes copies b into a new Value. The caller keeps ownership of b.
func FromBytes(b []byte) *Value {
	v := &Value{b: make([]byte, len(b))}
	copy(v.b, b)
	runtime.SetFinalizer(v, (*Value).Discard)
	return v
}

// Reveal returns the secret as a string.
func (v *Value) Reveal() string {
	if v == nil {
		return ""
	}
	return string(v.b)
}

// WithBytes calls fn with the backing bytes. fn must not retain the slice.
func (v *Value) WithBytes(fn func([]byte)) {
	if v == nil {
		fn(nil)
		return
	}
	fn(v.b)
}

// Len returns the length of the secret in bytes.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	return len(v.b)
}

// IsEmpty reports whether the secret is nil, empty or discarded.
func (v *Value) IsEmpty() bool {
	return v.Len() == 0
}

// Clone returns an independent copy.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	return FromBytes(v.b)
}

// Equal compares two secrets in constant time with respect to their contents.
func (v *Value) Equal(o *Value) bool {
	var a, b []byte
	if v != nil {
		a = v.b
	}
	if o != nil {
		b = o.b
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Discard overwrites the backing memory and empties the value. Safe to call more than once.
func (v *Value) Discard() {
	if v == nil {
		return
	}
	clear(v.b)
	v.b = nil
}

// String implements fmt.Stringer.
func (v *Value) String() string {
	return Redacted
}

// GoString implements fmt.GoStringer so %#v does not leak the bytes either.
func (v *Value) GoString() string {
	return Redacted
}

// MarshalJSON renders the value redacted. Serializers that need the cleartext must
// call Reveal explicitly.
func (v *Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(Redacted)
}

// MarshalYAML renders the value redacted.
func (v *Value) MarshalYAML() (interface{}, error) {
	return Redacted, nil
}

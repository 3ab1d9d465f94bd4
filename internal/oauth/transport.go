package oauth

import (
	"context"
	"mime"
	"net/http"
	"net/url"
)

//go:generate go tool mockgen --build_flags=--mod=mod -destination mock_transport_test.go -package oauth . Transport

// Request describes an HTTP request the caller must perform. Body may hold secrets; call
// Discard once it has been sent.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header
	Body   []byte
}

// Discard zeroes the body.
func (r *Request) Discard() {
	if r == nil {
		return
	}
	clear(r.Body)
	r.Body = nil
	r.Header.Del("Authorization")
}

// Response is what the transport observed. The core only reads it.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// mediaType returns the lower-cased media type of the response, or "" when absent or invalid.
func (r *Response) mediaType() string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mt
}

// Transport performs requests on behalf of a flow. Failures are returned to the flow's
// caller wrapped in a TransportError and never retried.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

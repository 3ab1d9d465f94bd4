package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/airbytehq/oauthflow/internal/build"
	"github.com/airbytehq/oauthflow/internal/oauth"
	"github.com/airbytehq/oauthflow/internal/trace"
)

// MaxResponseBytes caps how much of a response body is read.
const MaxResponseBytes = 1 << 20

// Transport sends flow requests through an HTTPDoer.
type Transport struct {
	doer HTTPDoer
}

var _ oauth.Transport = (*Transport)(nil)

// NewTransport returns a Transport backed by doer, or DefaultClient when doer is nil.
func NewTransport(doer HTTPDoer) *Transport {
	if doer == nil {
		doer = DefaultClient
	}
	return &Transport{doer: doer}
}

// Send performs req. Any failure to obtain a complete response is returned as is; the flow
// wraps it in a TransportError.
func (t *Transport) Send(ctx context.Context, req *oauth.Request) (*oauth.Response, error) {
	if req == nil || req.URL == nil {
		return nil, fmt.Errorf("no request to send")
	}

	ctx, span := trace.NewSpan(ctx, "oauth.send",
		attribute.String("http.method", req.Method),
		attribute.String("server.address", req.URL.Host),
	)
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), bytes.NewReader(req.Body))
	if err != nil {
		return nil, trace.SpanError(span, fmt.Errorf("failed to create request: %w", err))
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("User-Agent", build.UserAgent())

	resp, err := t.doer.Do(httpReq)
	if err != nil {
		return nil, trace.SpanError(span, fmt.Errorf("failed to execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	// one extra byte tells a truncated body from one that fits exactly
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, trace.SpanError(span, fmt.Errorf("failed to read response: %w", err))
	}
	if len(body) > MaxResponseBytes {
		return nil, trace.SpanError(span, fmt.Errorf("response body exceeds %d bytes", MaxResponseBytes))
	}

	return &oauth.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

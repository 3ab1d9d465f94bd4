package oauth

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package matches exactly one of these with errors.Is.
var (
	// ErrMissingParameter signals a required field absent from a callback or response.
	ErrMissingParameter = errors.New("oauth: missing parameter")
	// ErrMalformedEncoding signals invalid base64url input.
	ErrMalformedEncoding = errors.New("oauth: malformed encoding")
	// ErrMalformedResponse signals a structurally invalid callback or token response.
	ErrMalformedResponse = errors.New("oauth: malformed response")
	// ErrInvalidState signals a CSRF state mismatch between request and callback.
	ErrInvalidState = errors.New("oauth: invalid state")
	// ErrPKCEMismatch signals a verifier that does not reproduce the stored challenge.
	ErrPKCEMismatch = errors.New("oauth: pkce verifier mismatch")
	// ErrAuthorizationDenied signals an error returned on the authorization redirect.
	ErrAuthorizationDenied = errors.New("oauth: authorization denied")
	// ErrOAuth signals an RFC 6749 §5.2 error object from the token endpoint.
	ErrOAuth = errors.New("oauth: token endpoint error")
	// ErrTransport signals a failure reported by the transport collaborator.
	ErrTransport = errors.New("oauth: transport failure")
	// ErrInvalidUsage signals a caller violating the flow contract.
	ErrInvalidUsage = errors.New("oauth: invalid usage")
	// ErrEntropy signals that the random source could not supply bytes.
	ErrEntropy = errors.New("oauth: entropy source failure")
	// ErrAbandoned is the failure recorded when the caller abandons a flow.
	ErrAbandoned = errors.New("oauth: flow abandoned")
	// ErrInvalidConfig signals a ClientConfig that cannot drive a flow.
	ErrInvalidConfig = errors.New("oauth: invalid client config")
)

// ErrorCode is an RFC 6749 error code. Codes outside the registered vocabulary are
// kept verbatim.
type ErrorCode string

// Authorization endpoint codes (RFC 6749 §4.1.2.1) and token endpoint codes (§5.2).
const (
	ErrorInvalidRequest          ErrorCode = "invalid_request"
	ErrorUnauthorizedClient      ErrorCode = "unauthorized_client"
	ErrorAccessDenied            ErrorCode = "access_denied"
	ErrorUnsupportedResponseType ErrorCode = "unsupported_response_type"
	ErrorInvalidScope            ErrorCode = "invalid_scope"
	ErrorServerError             ErrorCode = "server_error"
	ErrorTemporarilyUnavailable  ErrorCode = "temporarily_unavailable"
	ErrorInvalidClient           ErrorCode = "invalid_client"
	ErrorInvalidGrant            ErrorCode = "invalid_grant"
	ErrorUnsupportedGrantType    ErrorCode = "unsupported_grant_type"
)

var registeredCodes = map[ErrorCode]struct{}{
	ErrorInvalidRequest:          {},
	ErrorUnauthorizedClient:      {},
	ErrorAccessDenied:            {},
	ErrorUnsupportedResponseType: {},
	ErrorInvalidScope:            {},
	ErrorServerError:             {},
	ErrorTemporarilyUnavailable:  {},
	ErrorInvalidClient:           {},
	ErrorInvalidGrant:            {},
	ErrorUnsupportedGrantType:    {},
}

// Registered reports whether the code belongs to the RFC 6749 vocabulary.
func (c ErrorCode) Registered() bool {
	_, ok := registeredCodes[c]
	return ok
}

// ErrorBody is the error object shared by the authorization redirect and the token endpoint.
type ErrorBody struct {
	Code        ErrorCode `json:"error"`
	Description string    `json:"error_description,omitempty"`
	URI         string    `json:"error_uri,omitempty"`
}

// MissingParameterError names the absent parameter.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingParameter, e.Name)
}

func (e *MissingParameterError) Is(target error) bool {
	return target == ErrMissingParameter
}

// MalformedResponseError carries the raw status and body for diagnostics. The body is
// never part of Error() since a 2xx body may contain tokens.
type MalformedResponseError struct {
	StatusCode int
	Body       []byte
	Reason     string
	Err        error
}

func (e *MalformedResponseError) Error() string {
	msg := ErrMalformedResponse.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// AuthorizationDeniedError is the authorization server's denial on the redirect.
type AuthorizationDeniedError struct {
	ErrorBody
}

func (e *AuthorizationDeniedError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s: %s", ErrAuthorizationDenied, e.Code, e.Description)
	}
	return fmt.Sprintf("%s: %s", ErrAuthorizationDenied, e.Code)
}

func (e *AuthorizationDeniedError) Is(target error) bool {
	return target == ErrAuthorizationDenied
}

// OAuthError is the token endpoint's error object.
type OAuthError struct {
	ErrorBody
	StatusCode int
}

func (e *OAuthError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s: %s", ErrOAuth, e.Code, e.Description)
	}
	return fmt.Sprintf("%s: %s", ErrOAuth, e.Code)
}

func (e *OAuthError) Is(target error) bool {
	return target == ErrOAuth
}

// TransportError wraps whatever the transport collaborator returned. The core does not
// inspect it.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransport, e.Err)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UsageError reports an operation invoked in a state that does not accept it.
type UsageError struct {
	Op    string
	State State
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s not allowed in state %s", ErrInvalidUsage, e.Op, e.State)
}

func (e *UsageError) Is(target error) bool {
	return target == ErrInvalidUsage
}

// malformedEncoding wraps a decoding failure so it matches ErrMalformedEncoding.
func malformedEncoding(err error) error {
	return fmt.Errorf("%w: %w", ErrMalformedEncoding, err)
}

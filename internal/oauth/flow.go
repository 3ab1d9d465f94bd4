package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/google/uuid"
	"github.com/pterm/pterm"

	"github.com/airbytehq/oauthflow/internal/secret"
)

// State is the position of a flow in the authorization code exchange.
type State int

const (
	StateStart State = iota
	StateAwaitingRedirect
	StateAwaitingAuthorizationResult
	StateAwaitingTokenResponse
	StateSucceeded
	StateFailed
)

var stateNames = map[State]string{
	StateStart:                       "start",
	StateAwaitingRedirect:            "awaiting_redirect",
	StateAwaitingAuthorizationResult: "awaiting_authorization_result",
	StateAwaitingTokenResponse:       "awaiting_token_response",
	StateSucceeded:                   "succeeded",
	StateFailed:                      "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	name, ok := stateNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown flow state %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	for k, v := range stateNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown flow state %q", string(b))
}

// Option configures a Flow.
type Option func(*Flow)

// WithRandom replaces crypto/rand as the entropy source. Intended for tests.
func WithRandom(r io.Reader) Option {
	return func(f *Flow) {
		f.rand = r
	}
}

// WithVerifierLength draws a PKCE verifier of n characters instead of the default 43.
func WithVerifierLength(n int) Option {
	return func(f *Flow) {
		f.verifierLength = n
	}
}

// WithID sets the flow identifier instead of a random UUID.
func WithID(id string) Option {
	return func(f *Flow) {
		f.id = id
	}
}

// Flow drives one authorization code exchange. It performs no I/O of its own: each step
// returns the request the caller must perform, and the caller resumes the flow with the
// result. A Flow is single-use and not safe for concurrent use.
type Flow struct {
	id             string
	cfg            ClientConfig
	rand           io.Reader
	verifierLength int

	state State
	err   error

	pkce     *PKCEPair
	csrf     CSRFState
	authReq  *AuthorizationRequest
	tokenReq *TokenRequest
}

// NewFlow returns a flow in StateStart. The flow keeps its own copy of cfg.
func NewFlow(cfg ClientConfig, opts ...Option) (*Flow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := &Flow{
		cfg:   cfg.clone(),
		state: StateStart,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.id == "" {
		f.id = uuid.NewString()
	}

	return f, nil
}

// ID returns the flow identifier.
func (f *Flow) ID() string { return f.id }

// State returns the current state.
func (f *Flow) State() State { return f.state }

// Err returns the error that moved the flow to StateFailed, or nil.
func (f *Flow) Err() error { return f.err }

// Config returns the client config the flow was built from.
func (f *Flow) Config() ClientConfig { return f.cfg }

// AuthorizationRequest returns the request yielded by Begin, or nil before Begin and
// after the authorization result has been consumed.
func (f *Flow) AuthorizationRequest() *AuthorizationRequest {
	if f.state != StateAwaitingRedirect && f.state != StateAwaitingAuthorizationResult {
		return nil
	}
	return f.authReq
}

// TokenRequest returns the pending token request while in StateAwaitingTokenResponse.
func (f *Flow) TokenRequest() *TokenRequest {
	if f.state != StateAwaitingTokenResponse {
		return nil
	}
	return f.tokenReq
}

// Begin generates the PKCE pair and the state and returns the authorization request the
// user-agent must be sent to.
func (f *Flow) Begin() (*AuthorizationRequest, error) {
	const op = "begin"
	if f.state != StateStart {
		return nil, f.usage(op)
	}

	var (
		p   *PKCEPair
		err error
	)
	if f.verifierLength > 0 {
		p, err = GeneratePKCEWithLength(f.rand, f.cfg.PKCEMethod, f.verifierLength)
	} else {
		p, err = GeneratePKCE(f.rand, f.cfg.PKCEMethod)
	}
	if err != nil {
		return nil, f.fail(err)
	}
	f.pkce = p

	s, err := GenerateCSRFState(f.rand)
	if err != nil {
		return nil, f.fail(err)
	}
	f.csrf = s

	f.authReq = BuildAuthorizationRequest(f.cfg, f.pkce, f.csrf)
	f.transition(StateAwaitingRedirect)
	return f.authReq, nil
}

// RedirectDispatched records that the user-agent has been sent to the authorization request.
func (f *Flow) RedirectDispatched() error {
	const op = "redirect dispatched"
	if f.state != StateAwaitingRedirect {
		return f.usage(op)
	}
	f.transition(StateAwaitingAuthorizationResult)
	return nil
}

// ResumeAuthorization consumes the redirect callback parameters and returns the token
// request to perform.
func (f *Flow) ResumeAuthorization(q url.Values) (*TokenRequest, error) {
	const op = "resume authorization"
	if f.state != StateAwaitingAuthorizationResult {
		return nil, f.usage(op)
	}

	resp, err := ParseAuthorizationResponse(q)
	if err != nil {
		return nil, f.fail(err)
	}

	if resp.Denied() {
		// a denial must echo our state like any other redirect
		if !VerifyCSRFState(f.csrf, resp.State) {
			return nil, f.fail(ErrInvalidState)
		}
		return nil, f.fail(&AuthorizationDeniedError{ErrorBody: *resp.Err})
	}

	if !VerifyCSRFState(f.csrf, resp.State) {
		return nil, f.fail(ErrInvalidState)
	}

	var intact bool
	f.pkce.Verifier().WithBytes(func(b []byte) {
		intact = VerifyPKCE(f.pkce, string(b))
	})
	if !intact {
		return nil, f.fail(ErrPKCEMismatch)
	}

	f.tokenReq = buildTokenRequest(f.cfg, secret.New(resp.Code), f.pkce.Verifier().Clone())
	f.transition(StateAwaitingTokenResponse)
	return f.tokenReq, nil
}

// ResumeToken consumes the token endpoint response and finishes the flow.
func (f *Flow) ResumeToken(resp *Response) (*TokenResponse, error) {
	const op = "resume token"
	if f.state != StateAwaitingTokenResponse {
		return nil, f.usage(op)
	}
	if resp == nil {
		return nil, f.usage(op + " without response")
	}

	tok, err := parseTokenHTTPResponse(resp)
	if err != nil {
		return nil, f.fail(err)
	}

	f.discard()
	f.transition(StateSucceeded)
	return tok, nil
}

// Exchange sends the pending token request through t and resumes with the result. A
// transport failure is returned as a *TransportError and leaves the flow in
// StateAwaitingTokenResponse so the caller can try again or Abandon.
func (f *Flow) Exchange(ctx context.Context, t Transport) (*TokenResponse, error) {
	const op = "exchange"
	if f.state != StateAwaitingTokenResponse {
		return nil, f.usage(op)
	}

	req, err := f.tokenReq.HTTPRequest()
	if err != nil {
		return nil, f.fail(err)
	}
	defer req.Discard()

	resp, err := t.Send(ctx, req)
	if err != nil {
		pterm.Debug.Printfln("flow %s: token request failed: %v", f.id, err)
		return nil, &TransportError{Err: err}
	}
	if resp == nil {
		return nil, &TransportError{Err: errors.New("transport returned no response")}
	}

	return f.ResumeToken(resp)
}

// Abandon discards the flow's secrets and moves it to StateFailed. It has no effect on a
// terminal flow.
func (f *Flow) Abandon() {
	if f.state.Terminal() {
		return
	}
	_ = f.fail(ErrAbandoned)
}

// usage reports an out-of-order call. A non-terminal flow fails; a terminal one is left as is.
func (f *Flow) usage(op string) error {
	err := &UsageError{Op: op, State: f.state}
	if !f.state.Terminal() {
		return f.fail(err)
	}
	return err
}

func (f *Flow) fail(err error) error {
	f.discard()
	f.err = err
	f.transition(StateFailed)
	return err
}

func (f *Flow) transition(to State) {
	pterm.Debug.Printfln("flow %s: %s -> %s", f.id, f.state, to)
	f.state = to
}

// discard zeroes every secret the flow holds.
func (f *Flow) discard() {
	f.pkce.Discard()
	f.tokenReq.Discard()
	f.cfg.discard()
}

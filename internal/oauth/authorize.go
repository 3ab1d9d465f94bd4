package oauth

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
)

const responseTypeCode = "code"

// AuthorizationRequest is what the user-agent must be sent to. It is derived entirely from
// the client config, the PKCE pair and the state, and is never mutated after construction.
type AuthorizationRequest struct {
	Endpoint            string
	ResponseType        string
	ClientID            string
	RedirectURI         string
	Scope               string
	State               CSRFState
	CodeChallenge       string
	CodeChallengeMethod Method
	Extra               map[string]string
}

// BuildAuthorizationRequest assembles the authorization request. It draws no randomness
// and performs no I/O.
func BuildAuthorizationRequest(cfg ClientConfig, p *PKCEPair, s CSRFState) *AuthorizationRequest {
	req := &AuthorizationRequest{
		Endpoint:            cfg.Endpoint.AuthURL,
		ResponseType:        responseTypeCode,
		ClientID:            cfg.ClientID,
		RedirectURI:         cfg.RedirectURL,
		Scope:               cfg.scope(),
		State:               s,
		CodeChallenge:       p.Challenge(),
		CodeChallengeMethod: p.Method(),
	}
	for k, v := range cfg.AuthParams {
		if slices.Contains(reservedAuthParams, k) {
			continue
		}
		if req.Extra == nil {
			req.Extra = make(map[string]string, len(cfg.AuthParams))
		}
		req.Extra[k] = v
	}
	return req
}

type param struct {
	key, value string
}

// params returns the query parameters in their canonical order.
func (r *AuthorizationRequest) params() []param {
	out := []param{
		{"response_type", r.ResponseType},
		{"client_id", r.ClientID},
	}
	if r.RedirectURI != "" {
		out = append(out, param{"redirect_uri", r.RedirectURI})
	}
	if r.Scope != "" {
		out = append(out, param{"scope", r.Scope})
	}
	out = append(out,
		param{"state", string(r.State)},
		param{"code_challenge", r.CodeChallenge},
		param{"code_challenge_method", string(r.CodeChallengeMethod)},
	)

	for _, k := range slices.Sorted(maps.Keys(r.Extra)) {
		out = append(out, param{k, r.Extra[k]})
	}
	return out
}

// Values returns the query parameters.
func (r *AuthorizationRequest) Values() url.Values {
	v := make(url.Values)
	for _, p := range r.params() {
		v.Set(p.key, p.value)
	}
	return v
}

// Encode renders the query string with the parameters in canonical order.
func (r *AuthorizationRequest) Encode() string {
	var b strings.Builder
	for i, p := range r.params() {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

// URL renders the request against the authorization endpoint. A query already present on
// the endpoint is kept, minus any parameter this request sets.
func (r *AuthorizationRequest) URL() (*url.URL, error) {
	u, err := url.Parse(r.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: authorization endpoint: %w", ErrInvalidConfig, err)
	}

	existing := u.Query()
	for _, p := range r.params() {
		existing.Del(p.key)
	}

	u.RawQuery = r.Encode()
	if len(existing) > 0 {
		u.RawQuery = existing.Encode() + "&" + u.RawQuery
	}
	return u, nil
}

// String returns the rendered URL, or the endpoint when it cannot be parsed.
func (r *AuthorizationRequest) String() string {
	u, err := r.URL()
	if err != nil {
		return r.Endpoint
	}
	return u.String()
}

// AuthorizationResponse is the parsed redirect callback. Exactly one of Code and Err is set.
type AuthorizationResponse struct {
	Code  string
	State CSRFState
	Err   *ErrorBody
}

// Denied reports whether the authorization server returned an error.
func (r *AuthorizationResponse) Denied() bool {
	return r.Err != nil
}

// callbackParams are the parameters that must appear at most once in a callback.
var callbackParams = []string{"code", "state", "error", "error_description", "error_uri"}

// ParseAuthorizationResponse parses the redirect callback query. It does not check state
// against the value that was sent.
func ParseAuthorizationResponse(q url.Values) (*AuthorizationResponse, error) {
	for _, k := range callbackParams {
		if len(q[k]) > 1 {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("parameter %q repeated", k)}
		}
	}

	if q.Has("error") {
		code := q.Get("error")
		if code == "" {
			return nil, &MissingParameterError{Name: "error"}
		}
		return &AuthorizationResponse{
			State: CSRFState(q.Get("state")),
			Err: &ErrorBody{
				Code:        ErrorCode(code),
				Description: q.Get("error_description"),
				URI:         q.Get("error_uri"),
			},
		}, nil
	}

	code := q.Get("code")
	if code == "" {
		return nil, &MissingParameterError{Name: "code"}
	}
	state := q.Get("state")
	if state == "" {
		return nil, &MissingParameterError{Name: "state"}
	}

	return &AuthorizationResponse{Code: code, State: CSRFState(state)}, nil
}

// ParseRedirectURL extracts the callback query from the full URL the user-agent was
// redirected to.
func ParseRedirectURL(raw string) (url.Values, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &MissingParameterError{Name: "redirect url"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &MalformedResponseError{Reason: "invalid redirect url", Err: err}
	}
	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return nil, &MalformedResponseError{Reason: "invalid redirect query", Err: err}
	}
	return q, nil
}

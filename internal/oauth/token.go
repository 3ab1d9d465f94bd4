package oauth

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/airbytehq/oauthflow/internal/secret"
)

const grantTypeAuthorizationCode = "authorization_code"

// TokenRequest is the authorization code exchange (RFC 6749 §4.1.3, RFC 7636 §4.5).
// It owns copies of the code, verifier and client secret; Discard zeroes them.
type TokenRequest struct {
	TokenURL     string
	GrantType    string
	Code         *secret.Value
	RedirectURI  string
	ClientID     string
	ClientSecret *secret.Value
	CodeVerifier *secret.Value
	AuthStyle    oauth2.AuthStyle
}

// BuildTokenRequest assembles the token request from the config, the authorization code
// and the PKCE verifier.
func BuildTokenRequest(cfg ClientConfig, code string, verifier *secret.Value) *TokenRequest {
	return buildTokenRequest(cfg, secret.New(code), verifier.Clone())
}

func buildTokenRequest(cfg ClientConfig, code, verifier *secret.Value) *TokenRequest {
	return &TokenRequest{
		TokenURL:     cfg.Endpoint.TokenURL,
		GrantType:    grantTypeAuthorizationCode,
		Code:         code,
		RedirectURI:  cfg.RedirectURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret.Clone(),
		CodeVerifier: verifier,
		AuthStyle:    cfg.Endpoint.AuthStyle,
	}
}

// basicAuth reports whether the client authenticates with HTTP Basic.
func (r *TokenRequest) basicAuth() bool {
	return !r.ClientSecret.IsEmpty() && r.AuthStyle != oauth2.AuthStyleInParams
}

// Values returns the form body. The result holds the secrets in cleartext.
func (r *TokenRequest) Values() url.Values {
	v := url.Values{
		"grant_type":    {r.GrantType},
		"code":          {r.Code.Reveal()},
		"code_verifier": {r.CodeVerifier.Reveal()},
	}
	if r.RedirectURI != "" {
		v.Set("redirect_uri", r.RedirectURI)
	}
	if !r.basicAuth() {
		v.Set("client_id", r.ClientID)
		if !r.ClientSecret.IsEmpty() {
			v.Set("client_secret", r.ClientSecret.Reveal())
		}
	}
	return v
}

// HTTPRequest renders the form POST the transport must send.
func (r *TokenRequest) HTTPRequest() (*Request, error) {
	if r.Code.IsEmpty() || r.CodeVerifier.IsEmpty() {
		return nil, fmt.Errorf("%w: token request has been discarded", ErrInvalidUsage)
	}

	u, err := url.Parse(r.TokenURL)
	if err != nil {
		return nil, fmt.Errorf("%w: token endpoint: %w", ErrInvalidConfig, err)
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	header.Set("Accept", "application/json")
	if r.basicAuth() {
		// RFC 6749 §2.3.1: both parts are form-encoded before being joined.
		creds := url.QueryEscape(r.ClientID) + ":" + url.QueryEscape(r.ClientSecret.Reveal())
		header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(creds)))
	}

	return &Request{
		Method: http.MethodPost,
		URL:    u,
		Header: header,
		Body:   []byte(r.Values().Encode()),
	}, nil
}

// Discard zeroes every secret the request holds.
func (r *TokenRequest) Discard() {
	if r == nil {
		return
	}
	r.Code.Discard()
	r.CodeVerifier.Discard()
	r.ClientSecret.Discard()
}

// TokenResponse is a successful token endpoint response (RFC 6749 §5.1).
type TokenResponse struct {
	AccessToken *secret.Value
	TokenType   string
	// ExpiresIn is the lifetime in seconds, nil when the server did not say.
	ExpiresIn    *int64
	RefreshToken *secret.Value
	Scope        string
	// IDToken is set when the server also speaks OpenID Connect.
	IDToken *secret.Value
}

// Expiry returns the absolute expiry given the time the response was received.
// ok is false when the lifetime is unknown.
func (t *TokenResponse) Expiry(issuedAt time.Time) (expiry time.Time, ok bool) {
	if t.ExpiresIn == nil {
		return time.Time{}, false
	}
	return issuedAt.Add(time.Duration(*t.ExpiresIn) * time.Second), true
}

// Discard zeroes the tokens.
func (t *TokenResponse) Discard() {
	if t == nil {
		return
	}
	t.AccessToken.Discard()
	t.RefreshToken.Discard()
	t.IDToken.Discard()
}

// tokenJSON is the wire shape of both success and error bodies.
type tokenJSON struct {
	AccessToken      string          `json:"access_token"`
	TokenType        string          `json:"token_type"`
	ExpiresIn        json.RawMessage `json:"expires_in"`
	RefreshToken     string          `json:"refresh_token"`
	Scope            string          `json:"scope"`
	IDToken          string          `json:"id_token"`
	Error            ErrorCode       `json:"error"`
	ErrorDescription string          `json:"error_description"`
	ErrorURI         string          `json:"error_uri"`
}

// ParseTokenResponse interprets a JSON token endpoint response.
func ParseTokenResponse(status int, body []byte) (*TokenResponse, error) {
	var tj tokenJSON
	if err := json.Unmarshal(body, &tj); err != nil {
		return nil, &MalformedResponseError{StatusCode: status, Body: body, Reason: "invalid json body", Err: err}
	}
	return tj.result(status, body)
}

// parseFormTokenResponse interprets a form-encoded token response. Some providers send
// one despite Accept: application/json.
func parseFormTokenResponse(status int, body []byte) (*TokenResponse, error) {
	v, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, &MalformedResponseError{StatusCode: status, Body: body, Reason: "invalid form body", Err: err}
	}
	tj := tokenJSON{
		AccessToken:      v.Get("access_token"),
		TokenType:        v.Get("token_type"),
		RefreshToken:     v.Get("refresh_token"),
		Scope:            v.Get("scope"),
		IDToken:          v.Get("id_token"),
		Error:            ErrorCode(v.Get("error")),
		ErrorDescription: v.Get("error_description"),
		ErrorURI:         v.Get("error_uri"),
	}
	if e := v.Get("expires_in"); e != "" {
		tj.ExpiresIn = json.RawMessage(strconv.Quote(e))
	}
	return tj.result(status, body)
}

// parseTokenHTTPResponse picks the body format from the response media type.
func parseTokenHTTPResponse(resp *Response) (*TokenResponse, error) {
	switch resp.mediaType() {
	case "application/x-www-form-urlencoded", "text/plain":
		return parseFormTokenResponse(resp.StatusCode, resp.Body)
	}
	return ParseTokenResponse(resp.StatusCode, resp.Body)
}

func (tj *tokenJSON) result(status int, body []byte) (*TokenResponse, error) {
	success := status >= 200 && status < 300

	if tj.Error != "" {
		return nil, &OAuthError{
			ErrorBody: ErrorBody{
				Code:        tj.Error,
				Description: tj.ErrorDescription,
				URI:         tj.ErrorURI,
			},
			StatusCode: status,
		}
	}
	if !success {
		return nil, &MalformedResponseError{StatusCode: status, Body: body, Reason: "error status without error code"}
	}

	if tj.AccessToken == "" {
		return nil, &MalformedResponseError{StatusCode: status, Body: body, Reason: "missing access_token"}
	}
	if tj.TokenType == "" {
		return nil, &MalformedResponseError{StatusCode: status, Body: body, Reason: "missing token_type"}
	}

	expiresIn, err := parseExpiresIn(tj.ExpiresIn)
	if err != nil {
		return nil, &MalformedResponseError{StatusCode: status, Body: body, Reason: "invalid expires_in", Err: err}
	}

	resp := &TokenResponse{
		AccessToken: secret.New(tj.AccessToken),
		TokenType:   tj.TokenType,
		ExpiresIn:   expiresIn,
		Scope:       tj.Scope,
	}
	if tj.RefreshToken != "" {
		resp.RefreshToken = secret.New(tj.RefreshToken)
	}
	if tj.IDToken != "" {
		resp.IDToken = secret.New(tj.IDToken)
	}
	return resp, nil
}

// parseExpiresIn accepts a JSON integer or a string holding one. Some providers quote it.
func parseExpiresIn(raw json.RawMessage) (*int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("negative lifetime %d", n)
	}
	return &n, nil
}

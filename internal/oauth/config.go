package oauth

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/oauth2"

	"github.com/airbytehq/oauthflow/internal/secret"
)

// reservedAuthParams are set by the flow and cannot be supplied through AuthParams.
var reservedAuthParams = []string{
	"response_type",
	"client_id",
	"redirect_uri",
	"scope",
	"state",
	"code_challenge",
	"code_challenge_method",
}

// ClientConfig describes one OAuth client registration. A flow takes its own copy on
// construction and never mutates it.
type ClientConfig struct {
	ClientID string
	// ClientSecret is optional. Public clients leave it nil.
	ClientSecret *secret.Value
	// Endpoint holds the authorization and token URLs. AuthStyle selects how the secret is
	// sent: AuthStyleInParams puts it in the form body, anything else uses HTTP Basic.
	Endpoint    oauth2.Endpoint
	RedirectURL string
	Scopes      []string
	PKCEMethod  Method
	// AuthParams are extra static authorization request parameters, e.g. access_type=offline.
	AuthParams map[string]string
}

// Validate reports whether the config can drive a flow.
func (c ClientConfig) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: client id is required", ErrInvalidConfig)
	}
	if err := validateEndpointURL("authorization endpoint", c.Endpoint.AuthURL, true); err != nil {
		return err
	}
	if err := validateEndpointURL("token endpoint", c.Endpoint.TokenURL, true); err != nil {
		return err
	}
	if err := validateEndpointURL("redirect uri", c.RedirectURL, false); err != nil {
		return err
	}
	if _, err := ParseMethod(string(c.PKCEMethod)); err != nil {
		return err
	}
	for k := range c.AuthParams {
		if slices.Contains(reservedAuthParams, k) {
			return fmt.Errorf("%w: auth parameter %q is reserved", ErrInvalidConfig, k)
		}
	}
	return nil
}

// validateEndpointURL requires an absolute URL. Redirect URIs may use a private-use
// scheme without a host (RFC 8252 §7.1).
func validateEndpointURL(name, raw string, requireHost bool) error {
	if raw == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidConfig, name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
	}
	if !u.IsAbs() || (requireHost && u.Host == "") {
		return fmt.Errorf("%w: %s %q must be an absolute URL", ErrInvalidConfig, name, raw)
	}
	if u.Fragment != "" {
		return fmt.Errorf("%w: %s %q must not contain a fragment", ErrInvalidConfig, name, raw)
	}
	return nil
}

// clone returns a deep copy so the flow owns its config exclusively.
func (c ClientConfig) clone() ClientConfig {
	out := c
	out.ClientSecret = c.ClientSecret.Clone()
	out.Scopes = slices.Clone(c.Scopes)
	out.AuthParams = maps.Clone(c.AuthParams)
	out.PKCEMethod = c.PKCEMethod.normalize()
	return out
}

// discard zeroes the owned copy of the client secret.
func (c *ClientConfig) discard() {
	c.ClientSecret.Discard()
}

// hasSecret reports whether a non-empty client secret is configured.
func (c ClientConfig) hasSecret() bool {
	return !c.ClientSecret.IsEmpty()
}

// secretInParams reports whether the secret goes in the form body instead of the Authorization header.
func (c ClientConfig) secretInParams() bool {
	return c.Endpoint.AuthStyle == oauth2.AuthStyleInParams
}

// scope renders the scopes space-separated in config order with duplicates and empty entries removed.
func (c ClientConfig) scope() string {
	seen := make(map[string]struct{}, len(c.Scopes))
	out := make([]string, 0, len(c.Scopes))
	for _, s := range c.Scopes {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return strings.Join(out, " ")
}

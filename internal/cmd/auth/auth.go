package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cli/browser"

	"github.com/airbytehq/oauthflow/internal/config"
	"github.com/airbytehq/oauthflow/internal/oauth"
	"github.com/airbytehq/oauthflow/internal/ui"
)

// openURL is redefined in tests.
var openURL = browser.OpenURL

// now is redefined in tests.
var now = time.Now

// TokenOptions are the flags shared by the commands that finish a flow.
type TokenOptions struct {
	Output    string `short:"o" type:"path" help:"Write the credentials as JSON to this file."`
	ShowToken bool   `help:"Print the access token."`
}

// clientConfig resolves the named client and converts it for a flow.
func clientConfig(store config.ConfigStore, name string) (oauth.ClientConfig, error) {
	client, err := config.Resolve(store, name)
	if err != nil {
		return oauth.ClientConfig{}, err
	}
	return client.ClientConfig()
}

// Credentials is the file written by --output.
type Credentials struct {
	AccessToken  string     `json:"access_token"`
	TokenType    string     `json:"token_type"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	IDToken      string     `json:"id_token,omitempty"`
	Scope        string     `json:"scope,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

func newCredentials(tok *oauth.TokenResponse, issuedAt time.Time) *Credentials {
	creds := &Credentials{
		AccessToken:  tok.AccessToken.Reveal(),
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken.Reveal(),
		IDToken:      tok.IDToken.Reveal(),
		Scope:        tok.Scope,
	}
	if exp, ok := tok.Expiry(issuedAt); ok {
		exp = exp.UTC()
		creds.ExpiresAt = &exp
	}
	return creds
}

func writeCredentials(path string, creds *Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}
	defer clear(data)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// finish reports the token and writes it out when asked. The token is discarded afterwards.
func (o TokenOptions) finish(uiProvider ui.Provider, tok *oauth.TokenResponse, issuedAt time.Time) error {
	defer tok.Discard()

	uiProvider.ShowHeading("Authorization complete")
	uiProvider.ShowKeyValue("Token type", tok.TokenType)
	if exp, ok := tok.Expiry(issuedAt); ok {
		uiProvider.ShowKeyValue("Expires", exp.Local().Format(time.RFC1123))
	}
	if tok.Scope != "" {
		uiProvider.ShowKeyValue("Scope", strings.Join(strings.Fields(tok.Scope), ", "))
	}
	uiProvider.ShowKeyValue("Refresh token", yesNo(!tok.RefreshToken.IsEmpty()))
	if !tok.IDToken.IsEmpty() {
		uiProvider.ShowKeyValue("ID token", "yes")
	}
	if o.ShowToken {
		uiProvider.ShowKeyValue("Access token", tok.AccessToken.Reveal())
	}

	if o.Output != "" {
		if err := writeCredentials(o.Output, newCredentials(tok, issuedAt)); err != nil {
			return err
		}
		uiProvider.ShowKeyValue("Credentials", o.Output)
	}
	uiProvider.NewLine()
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

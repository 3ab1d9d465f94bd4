package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"

	"github.com/airbytehq/oauthflow/internal/callback"
	"github.com/airbytehq/oauthflow/internal/config"
	"github.com/airbytehq/oauthflow/internal/oauth"
	"github.com/airbytehq/oauthflow/internal/ui"
)

// LoginCmd runs a whole flow against a loopback redirect.
type LoginCmd struct {
	Client    string        `short:"c" help:"Name of the client to use (default: current client)."`
	NoBrowser bool          `help:"Print the authorization URL without opening a browser."`
	Timeout   time.Duration `default:"5m" help:"How long to wait for the browser to return."`

	TokenOptions
}

// Run executes the login command
func (c *LoginCmd) Run(ctx context.Context, configs config.ConfigStore, transport oauth.Transport, uiProvider ui.Provider) error {
	cfg, err := clientConfig(configs, c.Client)
	if err != nil {
		return err
	}
	defer cfg.ClientSecret.Discard()

	srv, err := callback.Listen(cfg.RedirectURL)
	if err != nil {
		return fmt.Errorf("login needs a loopback redirect url, use authorize and exchange instead: %w", err)
	}
	defer func() { _ = srv.Close() }()
	cfg.RedirectURL = srv.RedirectURL()

	flow, err := oauth.NewFlow(cfg)
	if err != nil {
		return err
	}
	// no-op once the flow has finished
	defer flow.Abandon()

	authReq, err := flow.Begin()
	if err != nil {
		return err
	}
	authURL, err := authReq.URL()
	if err != nil {
		return err
	}

	if c.NoBrowser {
		pterm.Info.Printfln("Visit this URL to authorize:\n%s", authURL)
	} else {
		pterm.Info.Println("Opening browser for authorization...")
		pterm.Info.Printfln("If the browser doesn't open, visit: %s", authURL)
		if err := openURL(authURL.String()); err != nil {
			pterm.Warning.Printfln("Could not open browser automatically: %v", err)
		}
	}
	if err := flow.RedirectDispatched(); err != nil {
		return err
	}

	query, err := srv.Wait(ctx, c.Timeout)
	if err != nil {
		return err
	}
	if _, err := flow.ResumeAuthorization(query); err != nil {
		return err
	}

	var tok *oauth.TokenResponse
	issuedAt := now()
	err = uiProvider.RunWithSpinner("Exchanging authorization code", func() error {
		var err error
		tok, err = flow.Exchange(ctx, transport)
		return err
	})
	if err != nil {
		return err
	}

	pterm.Debug.Printfln("flow %s finished", flow.ID())
	return c.finish(uiProvider, tok, issuedAt)
}

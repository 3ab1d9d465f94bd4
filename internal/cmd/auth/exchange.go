package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/pterm/pterm"

	"github.com/airbytehq/oauthflow/internal/config"
	"github.com/airbytehq/oauthflow/internal/oauth"
	"github.com/airbytehq/oauthflow/internal/store"
	"github.com/airbytehq/oauthflow/internal/ui"
)

// ExchangeCmd resumes a suspended flow with the redirect and exchanges the code.
type ExchangeCmd struct {
	FlowID      string `arg:"" name:"flow-id" help:"Flow ID printed by authorize."`
	Client      string `short:"c" help:"Name of the client the flow was started with (default: current client)."`
	RedirectURL string `name:"redirect-url" help:"The URL the browser was redirected to. Prompted for when omitted."`

	TokenOptions
}

// Run executes the exchange command
func (c *ExchangeCmd) Run(ctx context.Context, configs config.ConfigStore, flows store.SnapshotStore, transport oauth.Transport, uiProvider ui.Provider) error {
	snap, err := flows.Load(c.FlowID)
	if err != nil {
		return err
	}
	defer snap.Discard()

	cfg, err := clientConfig(configs, c.Client)
	if err != nil {
		return err
	}
	defer cfg.ClientSecret.Discard()

	flow, err := oauth.Restore(cfg, snap)
	if err != nil {
		return fmt.Errorf("failed to restore flow %s: %w", c.FlowID, err)
	}
	defer flow.Abandon()

	if flow.State() == oauth.StateAwaitingAuthorizationResult {
		if err := c.resume(flow, cfg.RedirectURL, uiProvider); err != nil {
			c.forget(flows)
			return err
		}

		// a failed exchange can be retried without the redirect
		next, err := flow.Snapshot()
		if err != nil {
			return err
		}
		defer next.Discard()
		if err := flows.Save(next); err != nil {
			return fmt.Errorf("failed to save flow: %w", err)
		}
	}

	var tok *oauth.TokenResponse
	issuedAt := now()
	err = uiProvider.RunWithSpinner("Exchanging authorization code", func() error {
		var err error
		tok, err = flow.Exchange(ctx, transport)
		return err
	})
	if errors.Is(err, oauth.ErrTransport) {
		pterm.Info.Printfln("The flow was kept, run exchange %s again to retry.", c.FlowID)
		return err
	}
	c.forget(flows)
	if err != nil {
		return err
	}

	return c.finish(uiProvider, tok, issuedAt)
}

func (c *ExchangeCmd) resume(flow *oauth.Flow, redirectURL string, uiProvider ui.Provider) error {
	raw := c.RedirectURL
	if raw == "" {
		var err error
		raw, err = uiProvider.TextInput("Paste the URL your browser was redirected to:", redirectURL+"?code=...", func(s string) error {
			_, err := oauth.ParseRedirectURL(s)
			return err
		})
		if err != nil {
			return err
		}
	}

	query, err := oauth.ParseRedirectURL(raw)
	if err != nil {
		return err
	}
	_, err = flow.ResumeAuthorization(query)
	return err
}

// forget deletes the stored flow once it cannot be resumed any more.
func (c *ExchangeCmd) forget(flows store.SnapshotStore) {
	if err := flows.Delete(c.FlowID); err != nil {
		pterm.Warning.Printfln("Could not delete flow %s: %v", c.FlowID, err)
	}
}

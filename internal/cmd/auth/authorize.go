package auth

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/airbytehq/oauthflow/internal/build"
	"github.com/airbytehq/oauthflow/internal/config"
	"github.com/airbytehq/oauthflow/internal/oauth"
	"github.com/airbytehq/oauthflow/internal/store"
)

// AuthorizeCmd starts a flow and suspends it until exchange is run.
type AuthorizeCmd struct {
	Client  string `short:"c" help:"Name of the client to use (default: current client)."`
	Browser bool   `help:"Also open the authorization URL in a browser."`
}

// Run executes the authorize command
func (c *AuthorizeCmd) Run(configs config.ConfigStore, flows store.SnapshotStore, settings *config.Settings) error {
	if n, err := flows.Prune(settings.FlowMaxAge); err != nil {
		pterm.Warning.Printfln("Could not prune old flows: %v", err)
	} else if n > 0 {
		pterm.Debug.Printfln("pruned %d flows older than %s", n, settings.FlowMaxAge)
	}

	cfg, err := clientConfig(configs, c.Client)
	if err != nil {
		return err
	}
	defer cfg.ClientSecret.Discard()

	flow, err := oauth.NewFlow(cfg)
	if err != nil {
		return err
	}
	defer flow.Abandon()

	authReq, err := flow.Begin()
	if err != nil {
		return err
	}
	authURL, err := authReq.URL()
	if err != nil {
		return err
	}
	if err := flow.RedirectDispatched(); err != nil {
		return err
	}

	snap, err := flow.Snapshot()
	if err != nil {
		return err
	}
	defer snap.Discard()
	if err := flows.Save(snap); err != nil {
		return fmt.Errorf("failed to save flow: %w", err)
	}

	pterm.Info.Printfln("Visit this URL to authorize:\n%s", authURL)
	if c.Browser {
		if err := openURL(authURL.String()); err != nil {
			pterm.Warning.Printfln("Could not open browser automatically: %v", err)
		}
	}

	exchange := fmt.Sprintf("%s exchange %s", build.Name, flow.ID())
	if c.Client != "" {
		exchange += " --client " + c.Client
	}
	pterm.Info.Printfln("Then finish with:\n%s --redirect-url '<the URL you were redirected to>'", exchange)
	pterm.Println(flow.ID())
	return nil
}

package auth

import (
	"time"

	"github.com/pterm/pterm"

	"github.com/airbytehq/oauthflow/internal/config"
	"github.com/airbytehq/oauthflow/internal/store"
	"github.com/airbytehq/oauthflow/internal/ui"
)

// FlowsCmd lists pending flows.
type FlowsCmd struct {
	Prune bool `help:"Delete flows older than OAUTHFLOW_FLOW_MAX_AGE."`
}

// Run executes the flows command
func (c *FlowsCmd) Run(flows store.SnapshotStore, settings *config.Settings, uiProvider ui.Provider) error {
	if c.Prune {
		n, err := flows.Prune(settings.FlowMaxAge)
		if err != nil {
			return err
		}
		pterm.Success.Printfln("Pruned %d flows", n)
	}

	entries, err := flows.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		pterm.Info.Println("No pending flows")
		return nil
	}

	uiProvider.ShowHeading("Pending flows")
	for _, e := range entries {
		uiProvider.ShowKeyValue(e.ID, "started "+now().Sub(e.ModTime).Round(time.Second).String()+" ago")
	}
	uiProvider.NewLine()
	return nil
}

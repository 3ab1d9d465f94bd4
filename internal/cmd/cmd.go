package cmd

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/pterm/pterm"

	"github.com/airbytehq/oauthflow/internal/callback"
	"github.com/airbytehq/oauthflow/internal/cmd/auth"
	"github.com/airbytehq/oauthflow/internal/cmd/version"
	"github.com/airbytehq/oauthflow/internal/config"
	internalhttp "github.com/airbytehq/oauthflow/internal/http"
	"github.com/airbytehq/oauthflow/internal/oauth"
	"github.com/airbytehq/oauthflow/internal/store"
	"github.com/airbytehq/oauthflow/internal/ui"
)

// Help messages to display for specific error situations.
const (
	// helpInvalidState is displayed if the redirect carried another flow's state
	helpInvalidState = `The redirect did not carry the state this flow sent, so it was rejected.
Start a new flow and only use the redirect URL from that attempt.`

	// helpDenied is displayed if the authorization server refused the request
	helpDenied = `The authorization server refused the request.
Check that access was approved and that the client may request the configured scopes.`

	// helpOAuth is displayed if the token endpoint answered with an error code
	helpOAuth = `The token endpoint rejected the exchange.
An invalid_grant usually means the code expired or was already used; start a new flow.`

	// helpTransport is displayed if the token endpoint could not be reached
	helpTransport = `The token endpoint could not be reached.
Flows started with authorize are kept and exchange can be run again.`

	// helpConfig is displayed for client configuration problems
	helpConfig = `The client configuration is invalid.
Run 'oauthflow clients list' to inspect it or set OAUTHFLOW_CLIENT_ID and friends.`

	// helpTimeout is displayed if the browser never returned to the callback
	helpTimeout = `No redirect reached the local callback.
Raise --timeout, or pass --no-browser and open the printed URL yourself.`

	// helpNotFound is displayed if a flow id is unknown
	helpNotFound = `The flow does not exist or was already finished.
Run 'oauthflow flows' to list pending flows.`
)

// helpFor returns the help message for err, or an empty string.
func helpFor(err error) string {
	switch {
	case errors.Is(err, oauth.ErrInvalidState):
		return helpInvalidState
	case errors.Is(err, oauth.ErrAuthorizationDenied):
		return helpDenied
	case errors.Is(err, oauth.ErrOAuth):
		return helpOAuth
	case errors.Is(err, oauth.ErrTransport):
		return helpTransport
	case errors.Is(err, oauth.ErrInvalidConfig):
		return helpConfig
	case errors.Is(err, callback.ErrTimeout):
		return helpTimeout
	case errors.Is(err, store.ErrNotFound):
		return helpNotFound
	}
	return ""
}

func HandleErr(err error) {
	if err == nil {
		return
	}

	pterm.Error.Println(err)

	var errParse *kong.ParseError
	if errors.As(err, &errParse) {
		_ = kong.DefaultHelpPrinter(kong.HelpOptions{}, errParse.Context)
	}

	if help := helpFor(err); help != "" {
		pterm.Println()
		pterm.Info.Println(help)
	}

	os.Exit(1)
}

type verbose bool

func (v verbose) BeforeApply() error {
	pterm.EnableDebugMessages()
	return nil
}

type Cmd struct {
	Auth    auth.Cmd    `embed:""`
	Clients ClientsCmd  `cmd:"" help:"Manage registered OAuth clients."`
	Version version.Cmd `cmd:"" help:"Display version information."`
	Verbose verbose     `short:"v" help:"Enable verbose output."`
}

func (c *Cmd) BeforeApply(ctx *kong.Context, settings *config.Settings) error {
	if settings.DoNotTrack {
		pterm.Debug.Println("Error reporting disabled (DO_NOT_TRACK)")
	}

	flowDir := settings.FlowDir
	if flowDir == "" {
		flowDir = filepath.Join(config.DefaultDir(), "flows")
	}

	ctx.BindTo(ui.New(), (*ui.Provider)(nil))
	ctx.BindTo(&config.FileConfigStore{}, (*config.ConfigStore)(nil))
	ctx.BindTo(store.NewFileSnapshotStore(flowDir), (*store.SnapshotStore)(nil))
	ctx.BindTo(internalhttp.NewTransport(nil), (*oauth.Transport)(nil))

	return nil
}

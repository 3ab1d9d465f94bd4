package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pterm/pterm"

	"github.com/airbytehq/oauthflow/internal/build"
	"github.com/airbytehq/oauthflow/internal/cmd"
	"github.com/airbytehq/oauthflow/internal/config"
	internalhttp "github.com/airbytehq/oauthflow/internal/http"
	"github.com/airbytehq/oauthflow/internal/trace"
	"github.com/airbytehq/oauthflow/internal/update"
)

func main() {
	// ensure the pterm info width matches the other printers
	pterm.Info.Prefix.Text = " INFO  "
	cmd.HandleErr(run())
}

func run() error {
	ctx, cancel := cliContext()
	defer cancel()

	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	shutdowns, err := trace.Init(ctx, trace.Options{
		DSN:         settings.SentryDSN,
		Environment: settings.Environment,
		DoNotTrack:  settings.DoNotTrack,
	})
	if err != nil {
		pterm.Debug.Printfln("tracing: %s", err)
	}
	defer func() {
		for _, shutdown := range shutdowns {
			shutdown()
		}
	}()

	printUpdateMsg := checkForNewerVersion(ctx, settings)

	var root cmd.Cmd
	parser, err := kong.New(
		&root,
		kong.Name(build.Name),
		kong.Description("Runs OAuth 2.0 authorization code flows with PKCE against any authorization server."),
		kong.UsageOnError(),
		kong.Bind(settings),
	)
	if err != nil {
		return err
	}
	parsed, err := parser.Parse(os.Args[1:])
	if err != nil {
		return err
	}

	ctx, span := trace.NewSpan(ctx, parsed.Command())
	defer span.End()

	parsed.BindToProvider(bindCtx(ctx))
	if err := parsed.Run(); err != nil {
		return trace.SpanError(span, err)
	}
	printUpdateMsg()
	return nil
}

// checks for a newer release in the background.
// returns a function that, when called, will print the message about the new version.
func checkForNewerVersion(ctx context.Context, settings *config.Settings) func() {
	if settings.NoUpdateCheck {
		return func() {}
	}

	c := make(chan string, 1)
	go func() {
		defer close(c)
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		ver, err := update.Check(ctx, internalhttp.DefaultClient, build.Version)
		if err != nil {
			pterm.Debug.Printfln("update check: %s", err)
			return
		}
		c <- ver
	}()

	return func() {
		if ver := <-c; ver != "" {
			pterm.Info.Printfln("A new release of %s is available: %s -> %s", build.Name, build.Version, ver)
		}
	}
}

// get a context that listens for interrupt/shutdown signals.
func cliContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	// listen for shutdown signals
	go func() {
		signalCh := make(chan os.Signal, 1)
		signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
		<-signalCh

		cancel()
	}()
	return ctx, cancel
}

// bindCtx exists to allow kong to correctly inject a context.Context into the Run methods on the commands.
func bindCtx(ctx context.Context) func() (context.Context, error) {
	return func() (context.Context, error) {
		return ctx, nil
	}
}

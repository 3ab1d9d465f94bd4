package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"github.com/airbytehq/oauthflow/internal/config"
	"github.com/airbytehq/oauthflow/internal/ui"
)

// ClientsCmd groups the client registry commands.
type ClientsCmd struct {
	List   ClientsListCmd   `cmd:"" default:"1" help:"List registered clients."`
	Use    ClientsUseCmd    `cmd:"" help:"Select the client used when --client is not given."`
	Add    ClientsAddCmd    `cmd:"" help:"Register a client or replace an existing one."`
	Remove ClientsRemoveCmd `cmd:"" help:"Remove a client."`
}

// clientView is a client as listed, without its secret.
type clientView struct {
	Name         string            `json:"name" yaml:"name"`
	Current      bool              `json:"current" yaml:"current"`
	ClientID     string            `json:"clientId" yaml:"clientId"`
	Confidential bool              `json:"confidential" yaml:"confidential"`
	AuthURL      string            `json:"authUrl" yaml:"authUrl"`
	TokenURL     string            `json:"tokenUrl" yaml:"tokenUrl"`
	RedirectURL  string            `json:"redirectUrl" yaml:"redirectUrl"`
	Scopes       []string          `json:"scopes,omitempty" yaml:"scopes,omitempty"`
	PKCEMethod   string            `json:"pkceMethod,omitempty" yaml:"pkceMethod,omitempty"`
	AuthStyle    string            `json:"authStyle,omitempty" yaml:"authStyle,omitempty"`
	AuthParams   map[string]string `json:"authParams,omitempty" yaml:"authParams,omitempty"`
}

func newClientView(name string, current bool, c *config.Client) clientView {
	return clientView{
		Name:         name,
		Current:      current,
		ClientID:     c.ClientID,
		Confidential: c.ClientSecret != "",
		AuthURL:      c.AuthURL,
		TokenURL:     c.TokenURL,
		RedirectURL:  c.RedirectURL,
		Scopes:       c.Scopes,
		PKCEMethod:   c.PKCEMethod,
		AuthStyle:    c.AuthStyle,
		AuthParams:   c.AuthParams,
	}
}

// ClientsListCmd lists the environment client and the clients in the config file.
type ClientsListCmd struct {
	Format string `short:"f" default:"text" enum:"text,json,yaml" help:"Output format (text, json, yaml)."`
}

// Run executes the clients list command
func (c *ClientsListCmd) Run(configs config.ConfigStore, uiProvider ui.Provider) error {
	var views []clientView

	_, fromEnv := os.LookupEnv(config.EnvClientID)
	if fromEnv {
		env, err := config.LoadEnvClient()
		if err != nil {
			return fmt.Errorf("failed to load client from environment: %w", err)
		}
		views = append(views, newClientView(config.EnvClientName, true, env.Client()))
	}

	if configs.Exists() {
		cfg, err := configs.Load()
		if err != nil {
			return err
		}
		for i := range cfg.Clients {
			named := &cfg.Clients[i]
			views = append(views, newClientView(named.Name, !fromEnv && named.Name == cfg.CurrentClient, &named.Client))
		}
	}

	if len(views) == 0 {
		return config.NewConfigInitError("no clients registered")
	}

	return RenderOutput(uiProvider, c.Format, views, func(p ui.Provider) {
		for _, v := range views {
			heading := v.Name
			if v.Current {
				heading += " (current)"
			}
			p.ShowHeading(heading)
			p.ShowKeyValue("Client ID", v.ClientID)
			if v.Confidential {
				p.ShowKeyValue("Type", "confidential")
			} else {
				p.ShowKeyValue("Type", "public")
			}
			p.ShowKeyValue("Authorization URL", v.AuthURL)
			p.ShowKeyValue("Token URL", v.TokenURL)
			p.ShowKeyValue("Redirect URL", v.RedirectURL)
			if len(v.Scopes) > 0 {
				p.ShowKeyValue("Scopes", strings.Join(v.Scopes, " "))
			}
			p.NewLine()
		}
	})
}

// ClientsUseCmd sets the current client.
type ClientsUseCmd struct {
	Name string `arg:"" optional:"" help:"Client name. Prompted for when omitted."`
}

// Run executes the clients use command
func (c *ClientsUseCmd) Run(configs config.ConfigStore, uiProvider ui.Provider) error {
	if !configs.Exists() {
		return config.NewConfigInitError("no config file found")
	}
	cfg, err := configs.Load()
	if err != nil {
		return err
	}

	name := c.Name
	if name == "" {
		if len(cfg.Clients) == 0 {
			return config.NewConfigInitError("no clients registered")
		}
		options := make([]ui.Option, 0, len(cfg.Clients))
		for _, named := range cfg.Clients {
			options = append(options, ui.Option{Label: named.Name, Description: named.Client.AuthURL})
		}
		idx, err := uiProvider.Select("Select a client:", options)
		if err != nil {
			return fmt.Errorf("failed to select client: %w", err)
		}
		name = cfg.Clients[idx].Name
	}

	if err := cfg.SetCurrentClient(name); err != nil {
		return err
	}
	if err := configs.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	pterm.Success.Printfln("Current client is now %s", name)
	return nil
}

// ClientsAddCmd registers a client. Missing endpoints are prompted for.
type ClientsAddCmd struct {
	Name         string            `arg:"" help:"Name to register the client under."`
	ClientID     string            `name:"client-id" help:"OAuth client ID."`
	ClientSecret string            `name:"client-secret" help:"Client secret. Leave empty for public clients."`
	AuthURL      string            `name:"auth-url" help:"Authorization endpoint."`
	TokenURL     string            `name:"token-url" help:"Token endpoint."`
	RedirectURL  string            `name:"redirect-url" default:"http://127.0.0.1:8085/callback" help:"Registered redirect URI."`
	Scopes       []string          `name:"scope" short:"s" help:"Scope to request. Repeat for several."`
	PKCEMethod   string            `name:"pkce-method" enum:"S256,plain" default:"S256" help:"PKCE challenge method."`
	AuthStyle    string            `name:"auth-style" enum:"auto,header,params" default:"auto" help:"How the client authenticates at the token endpoint."`
	Param        map[string]string `name:"param" help:"Extra authorization request parameter as key=value."`
	Use          bool              `help:"Make this the current client."`
}

// Run executes the clients add command
func (c *ClientsAddCmd) Run(configs config.ConfigStore, uiProvider ui.Provider) error {
	prompts := []struct {
		value    *string
		prompt   string
		validate func(string) error
	}{
		{&c.ClientID, "Client ID:", required},
		{&c.AuthURL, "Authorization endpoint URL:", absoluteURL},
		{&c.TokenURL, "Token endpoint URL:", absoluteURL},
	}
	for _, p := range prompts {
		if *p.value != "" {
			continue
		}
		v, err := uiProvider.TextInput(p.prompt, "", p.validate)
		if err != nil {
			return err
		}
		*p.value = v
	}

	client := config.Client{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		AuthURL:      c.AuthURL,
		TokenURL:     c.TokenURL,
		RedirectURL:  c.RedirectURL,
		Scopes:       c.Scopes,
		PKCEMethod:   c.PKCEMethod,
		AuthParams:   c.Param,
	}
	if c.AuthStyle != "auto" {
		client.AuthStyle = c.AuthStyle
	}

	cc, err := client.ClientConfig()
	if err != nil {
		return fmt.Errorf("invalid client %q: %w", c.Name, err)
	}
	cc.ClientSecret.Discard()

	cfg := &config.Config{}
	if configs.Exists() {
		if cfg, err = configs.Load(); err != nil {
			return err
		}
	}

	cfg.AddClient(c.Name, client)
	if c.Use {
		if err := cfg.SetCurrentClient(c.Name); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := configs.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	pterm.Success.Printfln("Client %s saved to %s", c.Name, configs.GetPath())
	return nil
}

// ClientsRemoveCmd removes a client.
type ClientsRemoveCmd struct {
	Name string `arg:"" help:"Client name."`
}

// Run executes the clients remove command
func (c *ClientsRemoveCmd) Run(configs config.ConfigStore) error {
	if !configs.Exists() {
		return config.NewConfigInitError("no config file found")
	}
	cfg, err := configs.Load()
	if err != nil {
		return err
	}
	if err := cfg.RemoveClient(c.Name); err != nil {
		return err
	}
	if err := configs.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	pterm.Success.Printfln("Client %s removed", c.Name)
	return nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("a value is required")
	}
	return nil
}

func absoluteURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if !u.IsAbs() || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}

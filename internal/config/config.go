package config

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/oauth2"

	"github.com/airbytehq/oauthflow/internal/oauth"
	"github.com/airbytehq/oauthflow/internal/secret"
)

// NewConfigInitError returns an error with instructions for adding a client.
func NewConfigInitError(msg string) error {
	return fmt.Errorf("%s - add a client to %s or set %s", msg, (&FileConfigStore{}).GetPath(), EnvClientID)
}

// Config represents the configuration file structure.
type Config struct {
	CurrentClient string        `json:"current-client" yaml:"current-client"`
	Clients       []NamedClient `json:"clients" yaml:"clients"`
}

// NamedClient represents a named client entry.
type NamedClient struct {
	Name   string `json:"name" yaml:"name"`
	Client Client `json:"client" yaml:"client"`
}

// Client is a registered OAuth client as written in the config file.
type Client struct {
	ClientID     string            `json:"clientId" yaml:"clientId"`
	ClientSecret string            `json:"clientSecret,omitempty" yaml:"clientSecret,omitempty"`
	AuthURL      string            `json:"authUrl" yaml:"authUrl"`
	TokenURL     string            `json:"tokenUrl" yaml:"tokenUrl"`
	RedirectURL  string            `json:"redirectUrl" yaml:"redirectUrl"`
	Scopes       []string          `json:"scopes,omitempty" yaml:"scopes,omitempty"`
	PKCEMethod   string            `json:"pkceMethod,omitempty" yaml:"pkceMethod,omitempty"`
	AuthStyle    string            `json:"authStyle,omitempty" yaml:"authStyle,omitempty"`
	AuthParams   map[string]string `json:"authParams,omitempty" yaml:"authParams,omitempty"`
}

// Client authentication styles accepted in AuthStyle.
const (
	AuthStyleHeader = "header"
	AuthStyleParams = "params"
)

func parseAuthStyle(s string) (oauth2.AuthStyle, error) {
	switch strings.ToLower(s) {
	case "":
		return oauth2.AuthStyleAutoDetect, nil
	case AuthStyleHeader:
		return oauth2.AuthStyleInHeader, nil
	case AuthStyleParams:
		return oauth2.AuthStyleInParams, nil
	default:
		return 0, fmt.Errorf("%w: authStyle must be %q or %q, got %q", oauth.ErrInvalidConfig, AuthStyleHeader, AuthStyleParams, s)
	}
}

// ClientConfig converts c into the flow configuration and validates it.
func (c *Client) ClientConfig() (oauth.ClientConfig, error) {
	method, err := oauth.ParseMethod(c.PKCEMethod)
	if err != nil {
		return oauth.ClientConfig{}, err
	}
	style, err := parseAuthStyle(c.AuthStyle)
	if err != nil {
		return oauth.ClientConfig{}, err
	}

	cfg := oauth.ClientConfig{
		ClientID: c.ClientID,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.AuthURL,
			TokenURL:  c.TokenURL,
			AuthStyle: style,
		},
		RedirectURL: c.RedirectURL,
		Scopes:      slices.Clone(c.Scopes),
		PKCEMethod:  method,
		AuthParams:  c.AuthParams,
	}
	if c.ClientSecret != "" {
		cfg.ClientSecret = secret.New(c.ClientSecret)
	}

	if err := cfg.Validate(); err != nil {
		cfg.ClientSecret.Discard()
		return oauth.ClientConfig{}, err
	}
	return cfg, nil
}

// GetClient returns the named client, or the current one when name is empty.
func (c *Config) GetClient(name string) (*Client, error) {
	if name == "" {
		name = c.CurrentClient
	}
	if name == "" {
		return nil, fmt.Errorf("no current client set")
	}

	for i := range c.Clients {
		if c.Clients[i].Name == name {
			return &c.Clients[i].Client, nil
		}
	}

	return nil, fmt.Errorf("client %q not found", name)
}

// SetCurrentClient sets the current client.
func (c *Config) SetCurrentClient(name string) error {
	for _, named := range c.Clients {
		if named.Name == name {
			c.CurrentClient = name
			return nil
		}
	}

	return fmt.Errorf("client %q not found", name)
}

// AddClient adds or updates a client. The first client added becomes the current one.
func (c *Config) AddClient(name string, client Client) {
	for i, named := range c.Clients {
		if named.Name == name {
			c.Clients[i].Client = client
			return
		}
	}

	c.Clients = append(c.Clients, NamedClient{Name: name, Client: client})

	if c.CurrentClient == "" {
		c.CurrentClient = name
	}
}

// RemoveClient removes a client.
func (c *Config) RemoveClient(name string) error {
	for i, named := range c.Clients {
		if named.Name == name {
			c.Clients = slices.Delete(c.Clients, i, i+1)

			if c.CurrentClient == name {
				if len(c.Clients) > 0 {
					c.CurrentClient = c.Clients[0].Name
				} else {
					c.CurrentClient = ""
				}
			}
			return nil
		}
	}

	return fmt.Errorf("client %q not found", name)
}

// Names returns the client names in file order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Clients))
	for _, named := range c.Clients {
		names = append(names, named.Name)
	}
	return names
}

// Validate ensures the config structure is valid and coherent.
func (c *Config) Validate() error {
	if c.CurrentClient != "" && !slices.Contains(c.Names(), c.CurrentClient) {
		return fmt.Errorf("current client %q not found in clients list", c.CurrentClient)
	}

	seen := make(map[string]bool)
	for _, named := range c.Clients {
		if named.Name == "" {
			return fmt.Errorf("client name cannot be empty")
		}
		if seen[named.Name] {
			return fmt.Errorf("duplicate client name: %q", named.Name)
		}
		seen[named.Name] = true

		cfg, err := named.Client.ClientConfig()
		if err != nil {
			return fmt.Errorf("invalid client %q: %w", named.Name, err)
		}
		cfg.ClientSecret.Discard()
	}

	return nil
}

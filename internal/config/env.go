package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvClientID selects the environment client when set.
	EnvClientID = "OAUTHFLOW_CLIENT_ID"
	// EnvClientName is the name the environment client is listed under.
	EnvClientName = "env"
)

// EnvClient holds a client configured entirely through environment variables.
type EnvClient struct {
	ClientID     string   `envconfig:"OAUTHFLOW_CLIENT_ID" required:"true"`
	ClientSecret string   `envconfig:"OAUTHFLOW_CLIENT_SECRET"`
	AuthURL      string   `envconfig:"OAUTHFLOW_AUTH_URL" required:"true"`
	TokenURL     string   `envconfig:"OAUTHFLOW_TOKEN_URL" required:"true"`
	RedirectURL  string   `envconfig:"OAUTHFLOW_REDIRECT_URL" default:"http://127.0.0.1:8085/callback"`
	Scopes       []string `envconfig:"OAUTHFLOW_SCOPES"`
	PKCEMethod   string   `envconfig:"OAUTHFLOW_PKCE_METHOD"`
	AuthStyle    string   `envconfig:"OAUTHFLOW_AUTH_STYLE"`
}

// LoadEnvClient loads the environment client.
func LoadEnvClient() (*EnvClient, error) {
	var cfg EnvClient
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Client returns the environment client in config file form.
func (e *EnvClient) Client() *Client {
	return &Client{
		ClientID:     e.ClientID,
		ClientSecret: e.ClientSecret,
		AuthURL:      e.AuthURL,
		TokenURL:     e.TokenURL,
		RedirectURL:  e.RedirectURL,
		Scopes:       e.Scopes,
		PKCEMethod:   e.PKCEMethod,
		AuthStyle:    e.AuthStyle,
	}
}

// Settings are the process-wide settings read from the environment.
type Settings struct {
	SentryDSN   string        `envconfig:"OAUTHFLOW_SENTRY_DSN"`
	Environment string        `envconfig:"OAUTHFLOW_ENVIRONMENT" default:"dev"`
	FlowDir     string        `envconfig:"OAUTHFLOW_FLOW_DIR"`
	FlowMaxAge  time.Duration `envconfig:"OAUTHFLOW_FLOW_MAX_AGE" default:"24h"`
	// NoUpdateCheck skips the release check that runs alongside every command.
	NoUpdateCheck bool `envconfig:"OAUTHFLOW_NO_UPDATE_CHECK"`
	DoNotTrack    bool `ignored:"true"`
}

// LoadSettings loads the settings. DO_NOT_TRACK disables error reporting whatever its value.
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, err
	}
	_, s.DoNotTrack = os.LookupEnv("DO_NOT_TRACK")
	return &s, nil
}

// Resolve returns the client to use. An empty name selects the environment client when
// OAUTHFLOW_CLIENT_ID is set, else the current client of the config file.
func Resolve(store ConfigStore, name string) (*Client, error) {
	_, fromEnv := os.LookupEnv(EnvClientID)
	if name == EnvClientName || (name == "" && fromEnv) {
		env, err := LoadEnvClient()
		if err != nil {
			return nil, fmt.Errorf("failed to load client from environment: %w", err)
		}
		return env.Client(), nil
	}

	if !store.Exists() {
		return nil, NewConfigInitError("no config file found")
	}
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}
	return cfg.GetClient(name)
}

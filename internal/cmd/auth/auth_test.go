package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/airbytehq/oauthflow/internal/config"
	configmock "github.com/airbytehq/oauthflow/internal/config/mock"
	"github.com/airbytehq/oauthflow/internal/oauth"
	"github.com/airbytehq/oauthflow/internal/secret"
	uimock "github.com/airbytehq/oauthflow/internal/ui/mock"
)

// noEnvClient keeps the environment client from shadowing the mocked config store.
func noEnvClient(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvClientID, "")
	require.NoError(t, os.Unsetenv(config.EnvClientID))
}

func testClients(redirectURL string) *config.Config {
	return &config.Config{
		CurrentClient: "test",
		Clients: []config.NamedClient{
			{
				Name: "test",
				Client: config.Client{
					ClientID:     "abc",
					ClientSecret: "s3cr3t",
					AuthURL:      "https://auth.example.com/authorize",
					TokenURL:     "https://auth.example.com/token",
					RedirectURL:  redirectURL,
					Scopes:       []string{"openid", "email"},
				},
			},
		},
	}
}

func mockConfigs(ctrl *gomock.Controller, redirectURL string) *configmock.MockConfigStore {
	m := configmock.NewMockConfigStore(ctrl)
	m.EXPECT().Exists().Return(true).AnyTimes()
	m.EXPECT().Load().Return(testClients(redirectURL), nil).AnyTimes()
	return m
}

// quietUI accepts the report calls and runs spinner operations inline.
func quietUI(ctrl *gomock.Controller) *uimock.MockProvider {
	m := uimock.NewMockProvider(ctrl)
	m.EXPECT().RunWithSpinner(gomock.Any(), gomock.Any()).DoAndReturn(func(_ string, op func() error) error {
		return op()
	}).AnyTimes()
	m.EXPECT().ShowHeading(gomock.Any()).AnyTimes()
	m.EXPECT().ShowKeyValue(gomock.Any(), gomock.Any()).AnyTimes()
	m.EXPECT().NewLine().AnyTimes()
	return m
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

const tokenBody = `{"access_token":"tok123","token_type":"Bearer","expires_in":3600,"refresh_token":"ref456","scope":"openid email"}`

func TestNewCredentials(t *testing.T) {
	issuedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	expires := int64(60)
	tok := &oauth.TokenResponse{
		AccessToken:  secret.New("tok123"),
		RefreshToken: secret.New("ref456"),
		TokenType:    "Bearer",
		Scope:        "openid",
		ExpiresIn:    &expires,
	}

	creds := newCredentials(tok, issuedAt)
	assert.Equal(t, "tok123", creds.AccessToken)
	assert.Equal(t, "ref456", creds.RefreshToken)
	assert.Empty(t, creds.IDToken)
	require.NotNil(t, creds.ExpiresAt)
	assert.Equal(t, issuedAt.Add(time.Minute), *creds.ExpiresAt)

	tok.ExpiresIn = nil
	assert.Nil(t, newCredentials(tok, issuedAt).ExpiresAt)
}

func TestTokenOptions_Finish(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockUI := uimock.NewMockProvider(ctrl)

	path := filepath.Join(t.TempDir(), "out", "creds.json")
	tok := &oauth.TokenResponse{
		AccessToken: secret.New("tok123"),
		IDToken:     secret.New("id789"),
		TokenType:   "Bearer",
		Scope:       "openid email",
	}

	gomock.InOrder(
		mockUI.EXPECT().ShowHeading("Authorization complete"),
		mockUI.EXPECT().ShowKeyValue("Token type", "Bearer"),
		mockUI.EXPECT().ShowKeyValue("Scope", "openid, email"),
		mockUI.EXPECT().ShowKeyValue("Refresh token", "no"),
		mockUI.EXPECT().ShowKeyValue("ID token", "yes"),
		mockUI.EXPECT().ShowKeyValue("Access token", "tok123"),
		mockUI.EXPECT().ShowKeyValue("Credentials", path),
		mockUI.EXPECT().NewLine(),
	)

	opts := TokenOptions{Output: path, ShowToken: true}
	require.NoError(t, opts.finish(mockUI, tok, time.Now()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var creds Credentials
	require.NoError(t, json.Unmarshal(data, &creds))
	assert.Equal(t, "tok123", creds.AccessToken)
	assert.Equal(t, "id789", creds.IDToken)

	assert.True(t, tok.AccessToken.IsEmpty(), "token is discarded once reported")
}

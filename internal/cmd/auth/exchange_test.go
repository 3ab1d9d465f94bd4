package auth

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/airbytehq/oauthflow/internal/config"
	internalhttp "github.com/airbytehq/oauthflow/internal/http"
	httpmock "github.com/airbytehq/oauthflow/internal/http/mock"
	"github.com/airbytehq/oauthflow/internal/oauth"
	"github.com/airbytehq/oauthflow/internal/store"
	storemock "github.com/airbytehq/oauthflow/internal/store/mock"
)

const remoteRedirect = "https://app.example.com/cb"

// authorizeFlow runs authorize against flows and returns the flow id and its CSRF state.
func authorizeFlow(t *testing.T, ctrl *gomock.Controller, flows store.SnapshotStore) (string, string) {
	t.Helper()
	cmd := &AuthorizeCmd{}
	require.NoError(t, cmd.Run(mockConfigs(ctrl, remoteRedirect), flows, &config.Settings{FlowMaxAge: time.Hour}))

	entries, err := flows.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	snap, err := flows.Load(entries[0].ID)
	require.NoError(t, err)
	defer snap.Discard()
	assert.Equal(t, oauth.StateAwaitingAuthorizationResult, snap.State)
	return entries[0].ID, string(snap.CSRFState)
}

func TestAuthorizeCmd_Run(t *testing.T) {
	noEnvClient(t)
	ctrl := gomock.NewController(t)
	mockFlows := storemock.NewMockSnapshotStore(ctrl)

	var saved *oauth.Snapshot
	mockFlows.EXPECT().Prune(24*time.Hour).Return(0, errors.New("permission denied"))
	mockFlows.EXPECT().Save(gomock.Any()).DoAndReturn(func(s *oauth.Snapshot) error {
		saved = &oauth.Snapshot{ID: s.ID, State: s.State, ClientID: s.ClientID, RedirectURL: s.RedirectURL}
		return nil
	})

	cmd := &AuthorizeCmd{}
	err := cmd.Run(mockConfigs(ctrl, remoteRedirect), mockFlows, &config.Settings{FlowMaxAge: 24 * time.Hour})
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, oauth.StateAwaitingAuthorizationResult, saved.State)
	assert.Equal(t, "abc", saved.ClientID)
	assert.Equal(t, remoteRedirect, saved.RedirectURL)
}

func TestAuthorizeCmd_Run_SaveFails(t *testing.T) {
	noEnvClient(t)
	ctrl := gomock.NewController(t)
	mockFlows := storemock.NewMockSnapshotStore(ctrl)
	mockFlows.EXPECT().Prune(gomock.Any()).Return(0, nil)
	mockFlows.EXPECT().Save(gomock.Any()).Return(errors.New("disk full"))

	cmd := &AuthorizeCmd{}
	err := cmd.Run(mockConfigs(ctrl, remoteRedirect), mockFlows, &config.Settings{})
	assert.ErrorContains(t, err, "disk full")
}

func TestExchangeCmd_Run(t *testing.T) {
	noEnvClient(t)
	ctrl := gomock.NewController(t)
	flows := store.NewFileSnapshotStore(t.TempDir())
	id, state := authorizeFlow(t, ctrl, flows)

	mockHTTP := httpmock.NewMockHTTPDoer(ctrl)
	transport := internalhttp.NewTransport(mockHTTP)
	redirect := remoteRedirect + "?" + url.Values{"code": {"XYZ"}, "state": {state}}.Encode()

	// first attempt fails in transit; the flow is kept with the code
	mockHTTP.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection reset"))
	cmd := &ExchangeCmd{FlowID: id, RedirectURL: redirect}
	err := cmd.Run(context.Background(), mockConfigs(ctrl, remoteRedirect), flows, transport, quietUI(ctrl))
	require.ErrorIs(t, err, oauth.ErrTransport)

	snap, err := flows.Load(id)
	require.NoError(t, err)
	assert.Equal(t, oauth.StateAwaitingTokenResponse, snap.State)
	assert.Equal(t, "XYZ", snap.Code.Reveal())
	snap.Discard()

	// retry without the redirect
	mockHTTP.EXPECT().Do(gomock.Any()).Return(jsonResponse(200, tokenBody), nil)
	cmd = &ExchangeCmd{FlowID: id}
	require.NoError(t, cmd.Run(context.Background(), mockConfigs(ctrl, remoteRedirect), flows, transport, quietUI(ctrl)))

	_, err = flows.Load(id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExchangeCmd_Run_Prompt(t *testing.T) {
	noEnvClient(t)
	ctrl := gomock.NewController(t)
	flows := store.NewFileSnapshotStore(t.TempDir())
	id, state := authorizeFlow(t, ctrl, flows)

	mockUI := quietUI(ctrl)
	mockUI.EXPECT().TextInput(gomock.Any(), remoteRedirect+"?code=...", gomock.Any()).DoAndReturn(
		func(_, _ string, validator func(string) error) (string, error) {
			assert.Error(t, validator("   "))
			redirect := remoteRedirect + "?" + url.Values{"code": {"XYZ"}, "state": {state}}.Encode()
			assert.NoError(t, validator(redirect))
			return redirect, nil
		})

	mockHTTP := httpmock.NewMockHTTPDoer(ctrl)
	mockHTTP.EXPECT().Do(gomock.Any()).Return(jsonResponse(200, tokenBody), nil)

	cmd := &ExchangeCmd{FlowID: id}
	require.NoError(t, cmd.Run(context.Background(), mockConfigs(ctrl, remoteRedirect), flows, internalhttp.NewTransport(mockHTTP), mockUI))

	entries, err := flows.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExchangeCmd_Run_Errors(t *testing.T) {
	tests := []struct {
		name      string
		query     func(state string) url.Values
		token     func(m *httpmock.MockHTTPDoer)
		expectErr error
	}{
		{
			name: "denied",
			query: func(state string) url.Values {
				return url.Values{"error": {"access_denied"}, "error_description": {"no"}, "state": {state}}
			},
			expectErr: oauth.ErrAuthorizationDenied,
		},
		{
			name: "state mismatch",
			query: func(string) url.Values {
				return url.Values{"code": {"XYZ"}, "state": {"forged"}}
			},
			expectErr: oauth.ErrInvalidState,
		},
		{
			name: "invalid grant",
			query: func(state string) url.Values {
				return url.Values{"code": {"XYZ"}, "state": {state}}
			},
			token: func(m *httpmock.MockHTTPDoer) {
				m.EXPECT().Do(gomock.Any()).Return(jsonResponse(400, `{"error":"invalid_grant"}`), nil)
			},
			expectErr: oauth.ErrOAuth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noEnvClient(t)
			ctrl := gomock.NewController(t)
			flows := store.NewFileSnapshotStore(t.TempDir())
			id, state := authorizeFlow(t, ctrl, flows)

			mockHTTP := httpmock.NewMockHTTPDoer(ctrl)
			if tt.token != nil {
				tt.token(mockHTTP)
			}

			cmd := &ExchangeCmd{FlowID: id, RedirectURL: remoteRedirect + "?" + tt.query(state).Encode()}
			err := cmd.Run(context.Background(), mockConfigs(ctrl, remoteRedirect), flows, internalhttp.NewTransport(mockHTTP), quietUI(ctrl))
			assert.ErrorIs(t, err, tt.expectErr)

			// a failed flow cannot be resumed, so it is not kept
			_, err = flows.Load(id)
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestExchangeCmd_Run_UnknownFlow(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockFlows := storemock.NewMockSnapshotStore(ctrl)
	mockFlows.EXPECT().Load("0b9f4a4e-8d52-4a4e-9c3e-0f1d2c3b4a59").Return(nil, store.ErrNotFound)

	cmd := &ExchangeCmd{FlowID: "0b9f4a4e-8d52-4a4e-9c3e-0f1d2c3b4a59"}
	err := cmd.Run(context.Background(), mockConfigs(ctrl, remoteRedirect), mockFlows, internalhttp.NewTransport(httpmock.NewMockHTTPDoer(ctrl)), quietUI(ctrl))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExchangeCmd_Run_OtherClient(t *testing.T) {
	noEnvClient(t)
	ctrl := gomock.NewController(t)
	flows := store.NewFileSnapshotStore(t.TempDir())
	id, _ := authorizeFlow(t, ctrl, flows)

	cmd := &ExchangeCmd{FlowID: id, RedirectURL: remoteRedirect + "?code=XYZ"}
	err := cmd.Run(context.Background(), mockConfigs(ctrl, "https://other.example.com/cb"), flows, internalhttp.NewTransport(httpmock.NewMockHTTPDoer(ctrl)), quietUI(ctrl))
	assert.ErrorIs(t, err, oauth.ErrInvalidConfig)

	// the flow still belongs to its client
	snap, err := flows.Load(id)
	require.NoError(t, err)
	snap.Discard()
}

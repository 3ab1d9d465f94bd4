package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/airbytehq/oauthflow/internal/oauth"
)

func testConfig() oauth.ClientConfig {
	return oauth.ClientConfig{
		ClientID: "abc",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://auth.example.com/authorize",
			TokenURL: "https://auth.example.com/token",
		},
		RedirectURL: "http://127.0.0.1:8085/callback",
	}
}

func pendingSnapshot(t *testing.T) (*oauth.Snapshot, *oauth.AuthorizationRequest) {
	t.Helper()
	f, err := oauth.NewFlow(testConfig())
	require.NoError(t, err)
	authReq, err := f.Begin()
	require.NoError(t, err)
	require.NoError(t, f.RedirectDispatched())

	snap, err := f.Snapshot()
	require.NoError(t, err)
	return snap, authReq
}

func TestFileSnapshotStore_SaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "flows")
	s := NewFileSnapshotStore(dir)

	snap, authReq := pendingSnapshot(t)
	require.NoError(t, s.Save(snap))

	info, err := os.Stat(filepath.Join(dir, snap.ID+".yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	loaded, err := s.Load(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, oauth.StateAwaitingAuthorizationResult, loaded.State)
	assert.True(t, snap.CodeVerifier.Equal(loaded.CodeVerifier))

	f, err := oauth.Restore(testConfig(), loaded)
	require.NoError(t, err)
	_, err = f.ResumeAuthorization(map[string][]string{"code": {"XYZ"}, "state": {string(authReq.State)}})
	require.NoError(t, err)

	// saving again replaces the earlier snapshot
	next, err := f.Snapshot()
	require.NoError(t, err)
	require.NoError(t, s.Save(next))
	loaded, err = s.Load(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, oauth.StateAwaitingTokenResponse, loaded.State)
	assert.Equal(t, "XYZ", loaded.Code.Reveal())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestFileSnapshotStore_Load(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSnapshotStore(dir)

	tests := []struct {
		name   string
		id     string
		setup  func(t *testing.T, id string)
		expect func(t *testing.T, err error)
	}{
		{
			name: "not found",
			id:   "0b8f3a4e-5c6d-4e7f-8a9b-0c1d2e3f4a5b",
			expect: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNotFound)
			},
		},
		{
			name: "path traversal",
			id:   "../config",
			expect: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "invalid flow id")
			},
		},
		{
			name: "corrupt file",
			id:   "1b8f3a4e-5c6d-4e7f-8a9b-0c1d2e3f4a5b",
			setup: func(t *testing.T, id string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, id+".yaml"), []byte("state: [oops"), 0o600))
			},
			expect: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "failed to parse flow file")
			},
		},
		{
			name: "id mismatch",
			id:   "2b8f3a4e-5c6d-4e7f-8a9b-0c1d2e3f4a5b",
			setup: func(t *testing.T, id string) {
				data := []byte("version: 1\nid: 3b8f3a4e-5c6d-4e7f-8a9b-0c1d2e3f4a5b\nstate: start\n")
				require.NoError(t, os.WriteFile(filepath.Join(dir, id+".yaml"), data, 0o600))
			},
			expect: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "holds flow")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup(t, tt.id)
			}
			snap, err := s.Load(tt.id)
			assert.Nil(t, snap)
			tt.expect(t, err)
		})
	}
}

func TestFileSnapshotStore_DeleteListPrune(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSnapshotStore(dir)

	now := time.Now()
	s.now = func() time.Time { return now }

	old, _ := pendingSnapshot(t)
	fresh, _ := pendingSnapshot(t)
	require.NoError(t, s.Save(old))
	require.NoError(t, s.Save(fresh))
	require.NoError(t, os.Chtimes(filepath.Join(dir, old.ID+".yaml"), now.Add(-48*time.Hour), now.Add(-48*time.Hour)))

	// unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, fresh.ID, entries[0].ID)
	assert.Equal(t, old.ID, entries[1].ID)

	pruned, err := s.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	_, err = s.Load(old.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(fresh.ID))
	require.NoError(t, s.Delete(fresh.ID), "deleting twice is fine")

	entries, err = s.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileSnapshotStore_ListMissingDir(t *testing.T) {
	s := NewFileSnapshotStore(filepath.Join(t.TempDir(), "missing"))

	entries, err := s.List()
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

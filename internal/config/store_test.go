package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileConfigStore_GetPath(t *testing.T) {
	tests := []struct {
		name        string
		envValue    string
		expectValue string
		expectParts []string
	}{
		{
			name:        "uses env var when set",
			envValue:    "/custom/path/config.yaml",
			expectValue: "/custom/path/config.yaml",
		},
		{
			name:        "uses default path when env not set",
			expectParts: []string{".oauthflow", "config"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigPath, tt.envValue)

			path := (&FileConfigStore{}).GetPath()

			if tt.expectValue != "" {
				assert.Equal(t, tt.expectValue, path)
				return
			}
			for _, part := range tt.expectParts {
				assert.Contains(t, path, part)
			}
		})
	}
}

func TestFileConfigStore_LoadSave(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config")
	t.Setenv(EnvConfigPath, configPath)

	store := &FileConfigStore{}
	assert.False(t, store.Exists())

	c := testClient()
	c.ClientSecret = "s3cr3t"
	c.AuthParams = map[string]string{"access_type": "offline"}
	var cfg Config
	cfg.AddClient("work", c)

	require.NoError(t, store.Save(&cfg))
	assert.True(t, store.Exists())

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, &cfg, loaded)
}

func TestFileConfigStore_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		t.Setenv(EnvConfigPath, filepath.Join(dir, "missing"))
		_, err := (&FileConfigStore{}).Load()
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad")
		require.NoError(t, os.WriteFile(path, []byte("clients: [unterminated"), 0o600))
		t.Setenv(EnvConfigPath, path)

		_, err := (&FileConfigStore{}).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv clears every variable the loader reads so the host environment cannot leak in
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"REDDIT_USERNAME", "REDDIT_PASSWORD", "REDDIT_CLIENT_ID", "REDDIT_SECRET",
		"REDDITSAVE_USER_AGENT", "REDDITSAVE_LOCATION", "REDDITSAVE_MODE", "REDDITSAVE_PAGE_SIZE",
		"REDDITSAVE_BLACKLIST", "REDDITSAVE_HTTP_TIMEOUT", "LOG_LEVEL", "REDDITSAVE_LOG_LEVEL",
		"REDDITSAVE_LOG_FILE", "DOCKER",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", t.TempDir())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0, cfg.Archive.PageSize)
	assert.Equal(t, []string{"gif", "gifv", "jpg", "jpeg", "png"}, cfg.Media.ImageExtensions)
	assert.Equal(t, []string{"mp4"}, cfg.Media.VideoExtensions)
	assert.Equal(t, []string{"redgifs.com", "imgur.com", "youtube.com"}, cfg.Media.Platforms)
	assert.Equal(t, []string{"gfycat.com"}, cfg.Media.DeadHosts)
	assert.Equal(t, time.Second, cfg.Media.GalleryBackoffBase)
	assert.Equal(t, 6, cfg.Media.GalleryMaxAttempts)
	assert.Equal(t, PolicyRender, cfg.Media.InconclusivePolicy)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("REDDIT_USERNAME", "archivist")
	t.Setenv("REDDIT_PASSWORD", "hunter2")
	t.Setenv("REDDIT_CLIENT_ID", "client")
	t.Setenv("REDDIT_SECRET", "secret")
	t.Setenv("REDDITSAVE_LOCATION", "/tmp/archive")
	t.Setenv("REDDITSAVE_MODE", "user:spez")
	t.Setenv("REDDITSAVE_PAGE_SIZE", "25")
	t.Setenv("REDDITSAVE_HTTP_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "archivist", cfg.Reddit.Username)
	assert.Equal(t, "hunter2", cfg.Reddit.Password)
	assert.Equal(t, "client", cfg.Reddit.ClientID)
	assert.Equal(t, "secret", cfg.Reddit.Secret)
	assert.Equal(t, "/tmp/archive", cfg.Archive.Location)
	assert.Equal(t, "user:spez", cfg.Archive.Mode)
	assert.Equal(t, 25, cfg.Archive.PageSize)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvRejectsBadNumbers(t *testing.T) {
	isolateEnv(t)
	t.Setenv("REDDITSAVE_PAGE_SIZE", "ten")

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
archive:
  location: /data/reddit
  mode: saved
  page_size: 50
  blacklist: /data/blacklist.txt
media:
  platforms: [youtube.com]
  gallery_backoff_base: 250ms
  gallery_max_attempts: 3
  inconclusive_policy: skip
http:
  timeout: 10s
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "/data/reddit", cfg.Archive.Location)
	assert.Equal(t, "saved", cfg.Archive.Mode)
	assert.Equal(t, 50, cfg.Archive.PageSize)
	assert.Equal(t, "/data/blacklist.txt", cfg.Archive.Blacklist)
	assert.Equal(t, []string{"youtube.com"}, cfg.Media.Platforms)
	assert.Equal(t, 250*time.Millisecond, cfg.Media.GalleryBackoffBase)
	assert.Equal(t, 3, cfg.Media.GalleryMaxAttempts)
	assert.Equal(t, PolicySkip, cfg.Media.InconclusivePolicy)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "warn", cfg.Logging.Level)
	// untouched sections keep their defaults
	assert.Equal(t, []string{"gfycat.com"}, cfg.Media.DeadHosts)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad mode", func(c *Config) { c.Archive.Mode = "hot" }, true},
		{"user mode", func(c *Config) { c.Archive.Mode = "user:someone" }, false},
		{"negative page size", func(c *Config) { c.Archive.PageSize = -1 }, true},
		{"zero timeout", func(c *Config) { c.HTTP.Timeout = 0 }, true},
		{"zero gallery attempts", func(c *Config) { c.Media.GalleryMaxAttempts = 0 }, true},
		{"unknown policy", func(c *Config) { c.Media.InconclusivePolicy = "maybe" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"page limit too large", func(c *Config) { c.Reddit.PageLimit = 500 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateArchive(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ValidateArchive()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mode is required")
	assert.Contains(t, err.Error(), "location is required")

	cfg.Archive.Mode = "saved"
	cfg.Archive.Location = t.TempDir()
	cfg.Reddit = RedditConfig{Username: "u", Password: "p", ClientID: "id", Secret: "s"}
	assert.NoError(t, cfg.ValidateArchive())
}

func TestLoadPrecedence(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("archive:\n  location: /from/file\n  mode: saved\n"), 0644))

	t.Setenv("REDDITSAVE_LOCATION", "/from/env")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Archive.Location)

	cfg, err = Load(path, map[string]interface{}{"location": "/from/flag", "page-size": 10})
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.Archive.Location)
	assert.Equal(t, 10, cfg.Archive.PageSize)

	t.Setenv("DOCKER", "1")
	cfg, err = Load(path, map[string]interface{}{"location": "/from/flag"})
	require.NoError(t, err)
	assert.Equal(t, DockerLocation, cfg.Archive.Location)
}

func TestLoadRejectsInvalid(t *testing.T) {
	isolateEnv(t)
	_, err := Load("", map[string]interface{}{"mode": "frontpage"})
	assert.Error(t, err)
}

func TestSaveAndMask(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reddit.Password = "correcthorse"
	cfg.Reddit.Secret = "abc"

	masked := cfg.Masked()
	assert.Equal(t, "co...se", masked.Reddit.Password)
	assert.Equal(t, "***", masked.Reddit.Secret)
	assert.Equal(t, "correcthorse", cfg.Reddit.Password)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, cfg.Media, loaded.Media)
	assert.Equal(t, cfg.HTTP.Timeout, loaded.HTTP.Timeout)
}

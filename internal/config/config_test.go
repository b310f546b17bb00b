package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 60, cfg.Detector.CooldownMinutes)
	assert.Equal(t, "github_output.txt", cfg.Detector.OutputFile)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "https://api.uupdump.net", cfg.Listing.BaseURL)
	assert.Equal(t, 30, cfg.Listing.MaxResults)
	assert.Equal(t, StoreFile, cfg.Store.Provider)
	assert.Equal(t, PublisherNone, cfg.Publisher.Provider)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
logging:
  development: false
detector:
  cooldown_minutes: 30
  output_file: out.txt
browser:
  headless: false
  timeout_seconds: 90
store:
  provider: postgres
  dsn: postgres://watcher@localhost/releases
publisher:
  provider: pubsub
  project_id: demo-project
  topic_name: windows-releases
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Logging.Development)
	assert.Equal(t, 30, cfg.Detector.CooldownMinutes)
	assert.Equal(t, "out.txt", cfg.Detector.OutputFile)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 90, cfg.Browser.TimeoutSeconds)
	assert.Equal(t, StorePostgres, cfg.Store.Provider)
	assert.Equal(t, "postgres://watcher@localhost/releases", cfg.Store.DSN)
	assert.Equal(t, PublisherPubSub, cfg.Publisher.Provider)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	t.Run("postgres without dsn", func(t *testing.T) {
		t.Parallel()
		cfg := base()
		cfg.Store.Provider = StorePostgres
		cfg.Store.DSN = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown store provider", func(t *testing.T) {
		t.Parallel()
		cfg := base()
		cfg.Store.Provider = "redis"
		assert.Error(t, cfg.Validate())
	})

	t.Run("pubsub without project", func(t *testing.T) {
		t.Parallel()
		cfg := base()
		cfg.Publisher.Provider = PublisherPubSub
		assert.Error(t, cfg.Validate())
	})

	t.Run("inverted delay window", func(t *testing.T) {
		t.Parallel()
		cfg := base()
		cfg.Browser.MinDelayMs = 2000
		cfg.Browser.MaxDelayMs = 1000
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero cooldown", func(t *testing.T) {
		t.Parallel()
		cfg := base()
		cfg.Detector.CooldownMinutes = 0
		assert.Error(t, cfg.Validate())
	})
}

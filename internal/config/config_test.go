package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Default()
	cfg.Bucket = "test-bucket"
	cfg.Operation = "get"
	cfg.AccessKey = "AKIA"
	cfg.SecretKey = "secret"
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 16, cfg.Threads)
	assert.Equal(t, "private", cfg.ACL)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, 5, cfg.Retry.Attempts)
	assert.Equal(t, time.Second, cfg.Retry.Backoff)
	assert.Equal(t, 30*time.Second, cfg.Retry.MaxBackoff)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bucket: yaml-bucket
threads: 32
acl: public-read
endpoint: http://localhost:4566
retry:
  attempts: 7
  backoff: 500ms
  max_backoff: 10s
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "yaml-bucket", cfg.Bucket)
	assert.Equal(t, 32, cfg.Threads)
	assert.Equal(t, "public-read", cfg.ACL)
	assert.Equal(t, "http://localhost:4566", cfg.Endpoint)
	assert.Equal(t, 7, cfg.Retry.Attempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.Backoff)
	assert.Equal(t, 10*time.Second, cfg.Retry.MaxBackoff)
	// Untouched fields keep their defaults.
	assert.Equal(t, "us-east-1", cfg.Region)
}

func TestLoadFromFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("bucket: [unclosed"), 0o644))
		_, err := LoadFromFile(path)
		require.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dur.yaml")
		require.NoError(t, os.WriteFile(path, []byte("retry:\n  backoff: soon\n"), 0o644))
		_, err := LoadFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "retry.backoff")
	})
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "env-key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "env-secret")
	t.Setenv("BULKS3_THREADS", "64")
	t.Setenv("BULKS3_RETRY_BACKOFF", "2s")

	cfg := Default()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "env-key", cfg.AccessKey)
	assert.Equal(t, "env-secret", cfg.SecretKey)
	assert.Equal(t, 64, cfg.Threads)
	assert.Equal(t, 2*time.Second, cfg.Retry.Backoff)
}

func TestLoadFromEnv_BadValue(t *testing.T) {
	t.Setenv("BULKS3_THREADS", "many")

	cfg := Default()
	require.Error(t, cfg.LoadFromEnv())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing bucket",
			mutate:  func(c *Config) { c.Bucket = "" },
			wantErr: "bucket",
		},
		{
			name:    "unknown operation",
			mutate:  func(c *Config) { c.Operation = "sync" },
			wantErr: "operation",
		},
		{
			name:    "missing credentials",
			mutate:  func(c *Config) { c.AccessKey = "" },
			wantErr: "credentials",
		},
		{
			name:    "zero threads",
			mutate:  func(c *Config) { c.Threads = 0 },
			wantErr: "threads",
		},
		{
			name:    "zero retry attempts",
			mutate:  func(c *Config) { c.Retry.Attempts = 0 },
			wantErr: "attempts",
		},
		{
			name:    "inverted backoff bounds",
			mutate:  func(c *Config) { c.Retry.MaxBackoff = c.Retry.Backoff / 2 },
			wantErr: "backoff",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := validConfig()

	merged := base.Merge(Config{
		Bucket:  "override",
		Threads: 4,
		Verbose: true,
		Retry:   RetryConfig{Backoff: 3 * time.Second},
	})

	assert.Equal(t, "override", merged.Bucket)
	assert.Equal(t, 4, merged.Threads)
	assert.True(t, merged.Verbose)
	assert.Equal(t, 3*time.Second, merged.Retry.Backoff)
	// Zero values in the override never clobber existing settings.
	assert.Equal(t, "get", merged.Operation)
	assert.Equal(t, "AKIA", merged.AccessKey)
	assert.Equal(t, 5, merged.Retry.Attempts)
}

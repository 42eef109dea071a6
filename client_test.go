package bulks3

import (
	"testing"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"

	"github.com/objtools/bulks3/internal/testutil"
)

func TestOptions(t *testing.T) {
	mem := billy.NewInMemoryFS()

	cfg := &clientConfig{}
	for _, opt := range []Option{
		WithRegion("eu-west-1"),
		WithCredentials("key-id", "secret"),
		WithEndpoint("http://localhost:4566"),
		WithHTTPTimeout(5 * time.Second),
		WithFilesystem(mem),
	} {
		opt(cfg)
	}

	assert.Equal(t, "eu-west-1", cfg.region)
	assert.Equal(t, "key-id", cfg.accessKey)
	assert.Equal(t, "secret", cfg.secretKey)
	assert.Equal(t, "http://localhost:4566", cfg.endpoint)
	assert.Equal(t, 5*time.Second, cfg.httpTimeout)
	assert.Equal(t, mem, cfg.filesystem)
}

func TestWithRegion_EmptyKeepsCurrent(t *testing.T) {
	cfg := &clientConfig{region: "us-east-1"}
	WithRegion("")(cfg)
	assert.Equal(t, "us-east-1", cfg.region)
}

func TestNewWithClient(t *testing.T) {
	t.Run("default filesystem", func(t *testing.T) {
		client := NewWithClient(&testutil.MockS3Client{})
		assert.NotNil(t, client.fs)
	})

	t.Run("custom filesystem", func(t *testing.T) {
		mem := billy.NewInMemoryFS()
		client := NewWithClient(&testutil.MockS3Client{}, WithFilesystem(mem))
		assert.Equal(t, mem, client.fs)
	})
}

// Functional options for configuring store client behavior.
package bulks3

import (
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// clientConfig collects the settings applied by Options.
type clientConfig struct {
	region      string
	accessKey   string
	secretKey   string
	endpoint    string
	httpTimeout time.Duration
	filesystem  fs.Filesystem
}

// Option configures the store client.
type Option func(*clientConfig)

// WithRegion sets the AWS region for S3 operations.
// Defaults to us-east-1 when unset.
func WithRegion(region string) Option {
	return func(c *clientConfig) {
		if region != "" {
			c.region = region
		}
	}
}

// WithCredentials sets a static credential pair, overriding the default
// AWS credential chain. Both values must be non-empty to take effect.
func WithCredentials(accessKey, secretKey string) Option {
	return func(c *clientConfig) {
		c.accessKey = accessKey
		c.secretKey = secretKey
	}
}

// WithEndpoint sets a custom S3 endpoint URL and switches to path-style
// addressing. This is useful for S3-compatible services or local testing
// with LocalStack.
func WithEndpoint(endpoint string) Option {
	return func(c *clientConfig) {
		c.endpoint = endpoint
	}
}

// WithHTTPTimeout sets a timeout on the underlying HTTP client.
// Default is no timeout (0).
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.httpTimeout = timeout
	}
}

// WithFilesystem sets a custom filesystem implementation for local file
// operations. This allows using in-memory filesystems for testing.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) Option {
	return func(c *clientConfig) {
		c.filesystem = filesystem
	}
}

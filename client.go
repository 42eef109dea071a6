// Client initialization and configuration.
package bulks3

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/objtools/bulks3/errors"
	"github.com/objtools/bulks3/internal/s3api"
)

// Client is the store client shared by all transfer jobs. Construction is
// cheap; each worker holds its own Client so no synchronization is needed
// around per-worker state.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// fs is the filesystem abstraction for local file operations
	fs fs.Filesystem
}

// New creates a new store client with the provided options.
// Credentials given via WithCredentials take precedence over the default
// AWS credential chain (environment variables included).
//
// Example:
//
//	client, err := bulks3.New(
//	    bulks3.WithRegion("us-west-2"),
//	    bulks3.WithCredentials(key, secret),
//	)
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		region: "us-east-1",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.region),
		// The job engine owns retry; a failed call must surface immediately
		// so the backoff state machine counts it as one attempt.
		awsconfig.WithRetryMaxAttempts(1),
	}
	if cfg.accessKey != "" && cfg.secretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.accessKey, cfg.secretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, errors.NewError("client initialization", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.endpoint)
			o.UsePathStyle = true
		})
	}
	if cfg.httpTimeout > 0 {
		httpClient := &http.Client{Timeout: cfg.httpTimeout}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	filesystem := cfg.filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}

	return &Client{
		s3Client: s3.NewFromConfig(awsCfg, s3Opts...),
		fs:       filesystem,
	}, nil
}

// NewWithClient creates a store client with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API, opts ...Option) *Client {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	filesystem := cfg.filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}

	return &Client{
		s3Client: s3Client,
		fs:       filesystem,
	}
}

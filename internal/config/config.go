// Package config holds the run configuration resolved from defaults, an
// optional YAML file, environment variables, and command-line flags, in
// that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines one run of the bulks3 CLI. It is resolved once at
// startup and never mutated afterwards.
type Config struct {
	Bucket    string      `yaml:"bucket"`
	Operation string      `yaml:"operation"`
	AccessKey string      `yaml:"access_key"`
	SecretKey string      `yaml:"secret_key"`
	Threads   int         `yaml:"threads"`
	StartKey  string      `yaml:"start_key"`
	ACL       string      `yaml:"acl"`
	Input     string      `yaml:"input"`
	Endpoint  string      `yaml:"endpoint"`
	Region    string      `yaml:"region"`
	Verbose   bool        `yaml:"verbose"`
	Retry     RetryConfig `yaml:"retry"`
}

// RetryConfig defines per-job retry behavior.
type RetryConfig struct {
	Attempts   int           `yaml:"attempts"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Threads: 16,
		ACL:     "private",
		Region:  "us-east-1",
		Retry: RetryConfig{
			Attempts:   5,
			Backoff:    time.Second,
			MaxBackoff: 30 * time.Second,
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	Bucket    string          `yaml:"bucket"`
	Operation string          `yaml:"operation"`
	AccessKey string          `yaml:"access_key"`
	SecretKey string          `yaml:"secret_key"`
	Threads   int             `yaml:"threads"`
	StartKey  string          `yaml:"start_key"`
	ACL       string          `yaml:"acl"`
	Input     string          `yaml:"input"`
	Endpoint  string          `yaml:"endpoint"`
	Region    string          `yaml:"region"`
	Verbose   bool            `yaml:"verbose"`
	Retry     yamlRetryConfig `yaml:"retry"`
}

type yamlRetryConfig struct {
	Attempts   int    `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// LoadFromFile loads configuration from a YAML file on top of the
// defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Bucket != "" {
		cfg.Bucket = yc.Bucket
	}
	if yc.Operation != "" {
		cfg.Operation = yc.Operation
	}
	if yc.AccessKey != "" {
		cfg.AccessKey = yc.AccessKey
	}
	if yc.SecretKey != "" {
		cfg.SecretKey = yc.SecretKey
	}
	if yc.Threads != 0 {
		cfg.Threads = yc.Threads
	}
	if yc.StartKey != "" {
		cfg.StartKey = yc.StartKey
	}
	if yc.ACL != "" {
		cfg.ACL = yc.ACL
	}
	if yc.Input != "" {
		cfg.Input = yc.Input
	}
	if yc.Endpoint != "" {
		cfg.Endpoint = yc.Endpoint
	}
	if yc.Region != "" {
		cfg.Region = yc.Region
	}
	cfg.Verbose = yc.Verbose
	if yc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = yc.Retry.Attempts
	}
	if yc.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if yc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}

	return cfg, nil
}

// LoadFromEnv overlays environment variables onto c. Credentials use the
// standard AWS variable names; everything else uses the BULKS3_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		c.AccessKey = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		c.SecretKey = v
	}
	if v := os.Getenv("BULKS3_THREADS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse BULKS3_THREADS: %w", err)
		}
		c.Threads = n
	}
	if v := os.Getenv("BULKS3_ACL"); v != "" {
		c.ACL = v
	}
	if v := os.Getenv("BULKS3_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("BULKS3_REGION"); v != "" {
		c.Region = v
	}
	if v := os.Getenv("BULKS3_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse BULKS3_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	if v := os.Getenv("BULKS3_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse BULKS3_RETRY_BACKOFF: %w", err)
		}
		c.Retry.Backoff = d
	}
	if v := os.Getenv("BULKS3_RETRY_MAX_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse BULKS3_RETRY_MAX_BACKOFF: %w", err)
		}
		c.Retry.MaxBackoff = d
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("config: bucket is required")
	}
	switch c.Operation {
	case "get", "put", "delete", "list":
	default:
		return fmt.Errorf("config: unknown operation %q", c.Operation)
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return errors.New("config: credentials are required, pass -a/-s or set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY")
	}
	if c.Threads <= 0 {
		return errors.New("config: threads must be positive")
	}
	if c.Retry.Attempts <= 0 {
		return errors.New("config: retry.attempts must be positive")
	}
	if c.Retry.Backoff <= 0 || c.Retry.MaxBackoff < c.Retry.Backoff {
		return errors.New("config: retry backoff bounds must be positive and ordered")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	if override.Operation != "" {
		c.Operation = override.Operation
	}
	if override.AccessKey != "" {
		c.AccessKey = override.AccessKey
	}
	if override.SecretKey != "" {
		c.SecretKey = override.SecretKey
	}
	if override.Threads != 0 {
		c.Threads = override.Threads
	}
	if override.StartKey != "" {
		c.StartKey = override.StartKey
	}
	if override.ACL != "" {
		c.ACL = override.ACL
	}
	if override.Input != "" {
		c.Input = override.Input
	}
	if override.Endpoint != "" {
		c.Endpoint = override.Endpoint
	}
	if override.Region != "" {
		c.Region = override.Region
	}
	if override.Verbose {
		c.Verbose = override.Verbose
	}
	if override.Retry.Attempts != 0 {
		c.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.Backoff != 0 {
		c.Retry.Backoff = override.Retry.Backoff
	}
	if override.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = override.Retry.MaxBackoff
	}
	return c
}

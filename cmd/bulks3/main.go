// Command bulks3 moves many objects between a local filesystem and an S3
// bucket using a fixed pool of concurrent workers.
//
// Usage:
//
//	bulks3 BUCKET OPERATION [OPTIONS] [FILE...]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/joho/godotenv"

	"github.com/objtools/bulks3"
	"github.com/objtools/bulks3/internal/config"
	"github.com/objtools/bulks3/internal/dispatch"
	"github.com/objtools/bulks3/internal/input"
	"github.com/objtools/bulks3/internal/job"
	"github.com/objtools/bulks3/internal/pool"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitStartupError = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Missing .env is fine; explicit environment still applies.
	_ = godotenv.Load()

	if len(args) >= 1 {
		switch args[0] {
		case "help", "-h", "--help":
			printUsage()
			return ExitSuccess
		}
	}
	if len(args) < 2 {
		printUsage()
		return ExitInvalidArgs
	}

	bucket, operation := args[0], args[1]

	fl := flag.NewFlagSet("bulks3", flag.ContinueOnError)
	fl.SetOutput(os.Stderr)

	var (
		awsKey     string
		awsSecret  string
		threads    int
		startKey   string
		acl        string
		inputPath  string
		configPath string
		endpoint   string
		region     string
		verbose    bool
	)
	fl.StringVar(&awsKey, "a", "", "AWS access key id")
	fl.StringVar(&awsKey, "aws_key", "", "AWS access key id (long form of -a)")
	fl.StringVar(&awsSecret, "s", "", "AWS secret access key")
	fl.StringVar(&awsSecret, "aws_secret_key", "", "AWS secret access key (long form of -s)")
	fl.IntVar(&threads, "t", 0, "Number of concurrent workers")
	fl.IntVar(&threads, "threads", 0, "Number of concurrent workers (long form of -t)")
	fl.StringVar(&startKey, "start_key", "", "List keys lexically after this key (list only)")
	fl.StringVar(&acl, "acl", "", "Access policy for uploads: private or public-read")
	fl.StringVar(&inputPath, "i", "", "Manifest file of input items, - for stdin")
	fl.StringVar(&inputPath, "input", "", "Manifest file of input items (long form of -i)")
	fl.StringVar(&configPath, "config", "", "YAML configuration file")
	fl.StringVar(&endpoint, "endpoint", "", "Custom S3 endpoint URL")
	fl.StringVar(&region, "region", "", "AWS region")
	fl.BoolVar(&verbose, "v", false, "Enable debug logging")
	fl.BoolVar(&verbose, "verbose", false, "Enable debug logging (long form of -v)")

	fl.Usage = printUsage

	if err := fl.Parse(args[2:]); err != nil {
		return ExitInvalidArgs
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitInvalidArgs
		}
		cfg = loaded
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	cfg = cfg.Merge(config.Config{
		Bucket:    bucket,
		Operation: operation,
		AccessKey: awsKey,
		SecretKey: awsSecret,
		Threads:   threads,
		StartKey:  startKey,
		ACL:       acl,
		Input:     inputPath,
		Endpoint:  endpoint,
		Region:    region,
		Verbose:   verbose,
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		printUsage()
		return ExitInvalidArgs
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Operation == "list" {
		return runList(ctx, cfg, logger)
	}
	return runBulk(ctx, cfg, logger, fl.Args())
}

// runList streams keys to stdout on a single connection; listing is
// sequential by nature so it bypasses the pool.
func runList(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	client, err := newClient(cfg)
	if err != nil {
		logger.Error("client startup failed", "error", err)
		return ExitStartupError
	}

	count := 0
	err = client.ListKeys(ctx, cfg.Bucket, cfg.StartKey, func(key string) error {
		fmt.Println(key)
		count++
		return nil
	})
	if err != nil {
		logger.Error("list failed", "bucket", cfg.Bucket, "error", err)
		return ExitGeneralError
	}

	logger.Debug("list complete", "bucket", cfg.Bucket, "keys", count)
	return ExitSuccess
}

// runBulk drives get, put, and delete runs through the worker pool.
func runBulk(ctx context.Context, cfg config.Config, logger *slog.Logger, files []string) int {
	op, err := parseOperation(cfg.Operation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	workDir, err := os.Getwd()
	if err != nil {
		logger.Error("cannot resolve working directory", "error", err)
		return ExitGeneralError
	}

	manifest := cfg.Input
	if manifest != "" && manifest != "-" {
		manifest, err = filepath.Abs(manifest)
		if err != nil {
			logger.Error("cannot resolve manifest path", "path", cfg.Input, "error", err)
			return ExitInvalidArgs
		}
	}

	src, err := input.Resolve(billy.NewOSFS("/"), os.Stdin, manifest, files, op == job.OpPut, logger)
	if err != nil {
		logger.Error("input resolution failed", "error", err)
		return ExitInvalidArgs
	}

	factory := func() (*job.Toolbox, error) {
		client, err := newClient(cfg)
		if err != nil {
			return nil, err
		}
		return &job.Toolbox{Store: client, Bucket: cfg.Bucket}, nil
	}

	runner := job.NewRunner(logger, job.BackoffConfig{
		Base: cfg.Retry.Backoff,
		Max:  cfg.Retry.MaxBackoff,
	})

	workers, err := pool.New(cfg.Threads, factory, runner, logger)
	if err != nil {
		logger.Error("pool startup failed", "error", err)
		return ExitStartupError
	}

	aclPolicy := bulks3.ParseACL(cfg.ACL)
	build := func(item string) job.Job {
		return buildJob(op, item, workDir, aclPolicy, cfg.Retry.Attempts)
	}

	submitted, cancelled := dispatch.Run(ctx, src, workers, build, logger)
	workers.Shutdown()

	// Per-job failures were already logged by the runner; a completed run
	// exits cleanly either way.
	_, succeeded, failed, exhausted := workers.Counts()
	logger.Info("run complete",
		"op", op.String(),
		"bucket", cfg.Bucket,
		"submitted", submitted,
		"succeeded", succeeded,
		"failed", failed,
		"exhausted", exhausted,
		"cancelled", cancelled)

	return ExitSuccess
}

// buildJob maps one input item to a job. Get writes the object under its
// base name in the working directory; put uploads under the file's base
// name. Paths handed to the store client are always absolute.
func buildJob(op job.Operation, item, workDir string, acl bulks3.ACL, retries int) job.Job {
	switch op {
	case job.OpGet:
		local := filepath.Join(workDir, filepath.Base(item))
		return job.New(op, item, local, acl, retries)
	case job.OpPut:
		local := item
		if !filepath.IsAbs(local) {
			local = filepath.Join(workDir, local)
		}
		return job.New(op, filepath.Base(item), local, acl, retries)
	default:
		return job.New(op, item, "", acl, retries)
	}
}

func parseOperation(name string) (job.Operation, error) {
	switch name {
	case "get":
		return job.OpGet, nil
	case "put":
		return job.OpPut, nil
	case "delete":
		return job.OpDelete, nil
	default:
		return 0, fmt.Errorf("unknown operation %q", name)
	}
}

func newClient(cfg config.Config) (*bulks3.Client, error) {
	opts := []bulks3.Option{
		bulks3.WithRegion(cfg.Region),
		bulks3.WithCredentials(cfg.AccessKey, cfg.SecretKey),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, bulks3.WithEndpoint(cfg.Endpoint))
	}
	return bulks3.New(opts...)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: bulks3 BUCKET OPERATION [OPTIONS] [FILE...]

Operations:
  get     Download objects named on stdin, via -i, or as FILE arguments
  put     Upload local files; FILE arguments are glob patterns
  delete  Delete objects named on stdin, via -i, or as FILE arguments
  list    Print every key in the bucket to stdout

Options:
  -a, -aws_key         AWS access key id (or AWS_ACCESS_KEY_ID)
  -s, -aws_secret_key  AWS secret access key (or AWS_SECRET_ACCESS_KEY)
  -t, -threads         Number of concurrent workers (default 16)
  -start_key           List keys lexically after this key (list only)
  -acl                 Access policy for uploads: private or public-read
  -i, -input           Manifest file of input items, - for stdin
  -config              YAML configuration file
  -endpoint            Custom S3 endpoint URL
  -region              AWS region (default us-east-1)
  -v, -verbose         Enable debug logging`)
}

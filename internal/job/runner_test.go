package job

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objtools/bulks3"
	"github.com/objtools/bulks3/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRunner returns a runner whose sleeps are recorded instead of
// executed, plus the recorded delay slice.
func newTestRunner() (*Runner, *[]time.Duration) {
	delays := &[]time.Duration{}
	r := NewRunner(quietLogger(), BackoffConfig{}).
		WithSleep(func(d time.Duration) { *delays = append(*delays, d) })
	return r, delays
}

func toolboxWith(mock *testutil.MockS3Client, fsys *billy.FS) *Toolbox {
	opts := []bulks3.Option{}
	if fsys != nil {
		opts = append(opts, bulks3.WithFilesystem(fsys))
	}
	return &Toolbox{
		Store:  bulks3.NewWithClient(mock, opts...),
		Bucket: "test-bucket",
	}
}

func TestRunner_Run_SucceedsFirstAttempt(t *testing.T) {
	mock := &testutil.MockS3Client{
		DeleteObjectFunc: func(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
			return &s3.DeleteObjectOutput{}, nil
		},
	}
	runner, delays := newTestRunner()

	outcome := runner.Run(context.Background(), toolboxWith(mock, nil), New(OpDelete, "k", "", bulks3.ACLPrivate, 5))

	assert.Equal(t, OutcomeSucceeded, outcome)
	assert.Empty(t, *delays)
}

func TestRunner_Run_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	mock := &testutil.MockS3Client{
		DeleteObjectFunc: func(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
			calls++
			if calls <= 2 {
				return nil, &smithy.GenericAPIError{Code: "SlowDown", Fault: smithy.FaultServer}
			}
			return &s3.DeleteObjectOutput{}, nil
		},
	}
	runner, delays := newTestRunner()

	outcome := runner.Run(context.Background(), toolboxWith(mock, nil), New(OpDelete, "k", "", bulks3.ACLPrivate, 5))

	assert.Equal(t, OutcomeSucceeded, outcome)
	assert.Equal(t, 3, calls)
	// Two waits, doubling from the base delay.
	require.Len(t, *delays, 2)
	assert.Equal(t, DefaultBackoffBase, (*delays)[0])
	assert.Equal(t, 2*DefaultBackoffBase, (*delays)[1])
}

func TestRunner_Run_TerminalFailureStopsImmediately(t *testing.T) {
	mem := billy.NewInMemoryFS()
	// A partial artifact from an earlier attempt must be cleaned up.
	require.NoError(t, mem.WriteFile("/dl.bin", []byte("partial"), 0o644))

	calls := 0
	mock := &testutil.MockS3Client{
		GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			calls++
			return nil, &smithy.GenericAPIError{Code: "AccessDenied", Fault: smithy.FaultClient}
		},
	}
	runner, delays := newTestRunner()

	outcome := runner.Run(context.Background(), toolboxWith(mock, mem), New(OpGet, "k", "/dl.bin", bulks3.ACLPrivate, 5))

	assert.Equal(t, OutcomeTerminalFailed, outcome)
	assert.Equal(t, 1, calls, "terminal errors must not be retried")
	assert.Empty(t, *delays)

	exists, err := mem.Exists("/dl.bin")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRunner_Run_RetriesExhausted(t *testing.T) {
	calls := 0
	mock := &testutil.MockS3Client{
		DeleteObjectFunc: func(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
			calls++
			return nil, &smithy.GenericAPIError{Code: "InternalError", Fault: smithy.FaultServer}
		},
	}
	runner, delays := newTestRunner()

	outcome := runner.Run(context.Background(), toolboxWith(mock, nil), New(OpDelete, "k", "", bulks3.ACLPrivate, 3))

	assert.Equal(t, OutcomeRetriesExhausted, outcome)
	assert.Equal(t, 3, calls, "budget is total attempts, not retries after the first")
	// No sleep after the final attempt.
	assert.Len(t, *delays, 2)
}

func TestRunner_Run_UnsupportedOperation(t *testing.T) {
	runner, delays := newTestRunner()

	outcome := runner.Run(context.Background(), toolboxWith(&testutil.MockS3Client{}, nil), Job{
		ID:      "deadbeef",
		Op:      Operation(99),
		Key:     "k",
		Retries: 3,
	})

	assert.Equal(t, OutcomeTerminalFailed, outcome)
	assert.Empty(t, *delays)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "succeeded", OutcomeSucceeded.String())
	assert.Equal(t, "failed", OutcomeTerminalFailed.String())
	assert.Equal(t, "retries exhausted", OutcomeRetriesExhausted.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}

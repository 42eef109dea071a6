package errors

import (
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/aws/smithy-go"
)

// Transient S3 error codes that are worth retrying. Everything else the
// service explicitly rejects is treated as terminal.
var retryableCodes = map[string]bool{
	"RequestTimeout":          true,
	"SlowDown":                true,
	"Throttling":              true,
	"ThrottlingException":     true,
	"RequestLimitExceeded":    true,
	"InternalError":           true,
	"ServiceUnavailable":      true,
	"BandwidthLimitExceeded":  true,
	"IDPCommunicationError":   true,
	"TransactionInProgress":   true,
	"PriorRequestNotComplete": true,
}

// IsRetryable reports whether err is a transient condition (connection
// reset, truncated read, throttling, server-side 5xx) that a job should
// retry with backoff. Server-rejected requests (authorization, not-found)
// and local sentinel errors are terminal.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Our own sentinels are always terminal.
	if errors.Is(err, ErrObjectNotFound) ||
		errors.Is(err, ErrBucketNotFound) ||
		errors.Is(err, ErrAccessDenied) ||
		errors.Is(err, ErrInvalidInput) {
		return false
	}

	// Explicit service responses: retry only the throttling/5xx class.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if retryableCodes[apiErr.ErrorCode()] {
			return true
		}
		return apiErr.ErrorFault() == smithy.FaultServer
	}

	// Truncated or reset streams while reading a response body.
	if errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	// Generic socket-level failures and timeouts.
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	return false
}

// Classify maps an AWS SDK error to one of our sentinel errors where a
// well-known error code is present, returning the original error otherwise.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return ErrObjectNotFound
		case "NoSuchBucket":
			return ErrBucketNotFound
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "AllAccessDisabled":
			return ErrAccessDenied
		}
	}

	return err
}

// Bucket key listing.
package bulks3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/objtools/bulks3/errors"
)

// ListKeys iterates every key in the bucket, starting after startAfter
// when non-empty, and calls fn for each key in listing order. Iteration
// stops at the first fn error, which is returned unwrapped.
//
// Listing is a single-threaded read-only enumeration; it does not go
// through the worker pool and has no retry semantics of its own.
func (c *Client) ListKeys(ctx context.Context, bucket, startAfter string, fn func(key string) error) error {
	if bucket == "" {
		return errors.NewError("list", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("bucket name cannot be empty")
	}

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		MaxKeys: aws.Int32(1000),
	}
	if startAfter != "" {
		input.StartAfter = aws.String(startAfter)
	}

	for {
		if err := ctx.Err(); err != nil {
			return errors.NewError("list", err).WithBucket(bucket)
		}

		output, err := c.s3Client.ListObjectsV2(ctx, input)
		if err != nil {
			return errors.NewError("list", errors.Classify(err)).WithBucket(bucket)
		}

		for _, obj := range output.Contents {
			if err := fn(aws.ToString(obj.Key)); err != nil {
				return err
			}
		}

		if !aws.ToBool(output.IsTruncated) {
			return nil
		}
		input.ContinuationToken = output.NextContinuationToken
	}
}

// Single-object operations: download, upload, delete.
package bulks3

import (
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	"github.com/objtools/bulks3/errors"
)

const (
	// DefaultContentType is used when content type detection fails
	DefaultContentType = "application/octet-stream"
)

// ACL is the per-object access policy applied on upload.
type ACL string

const (
	// ACLPrivate restricts the object to the bucket owner.
	ACLPrivate ACL = "private"

	// ACLPublicRead makes the object world-readable.
	ACLPublicRead ACL = "public-read"
)

// ParseACL maps a user-supplied policy name to an ACL.
// Unrecognized values fall back to private.
func ParseACL(s string) ACL {
	if s == string(ACLPublicRead) {
		return ACLPublicRead
	}
	return ACLPrivate
}

// GetFile downloads an object from S3 to a local file.
//
// The local file is created (or truncated) before the response body is
// streamed into it. If the download fails at any point after creation,
// the partial file is removed so a failed Get never leaves a truncated
// artifact behind.
//
// Errors:
//   - ErrObjectNotFound / ErrAccessDenied for server-rejected requests
//   - transient transport errors are returned unwrapped inside *errors.Error
//     so callers can classify them with errors.IsRetryable
func (c *Client) GetFile(ctx context.Context, bucket, key, localPath string) error {
	if bucket == "" {
		return errors.NewObjectError("get", bucket, key, errors.ErrInvalidInput).
			WithMessage("bucket name cannot be empty")
	}
	if key == "" {
		return errors.NewObjectError("get", bucket, key, errors.ErrInvalidInput).
			WithMessage("object key cannot be empty")
	}
	if localPath == "" {
		return errors.NewObjectError("get", bucket, key, errors.ErrInvalidInput).
			WithMessage("local path cannot be empty")
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	output, err := c.s3Client.GetObject(ctx, input)
	if err != nil {
		return errors.NewObjectError("get", bucket, key, errors.Classify(err))
	}
	defer output.Body.Close()

	file, err := c.fs.Create(localPath)
	if err != nil {
		return errors.NewObjectError("get", bucket, key, err)
	}

	_, copyErr := io.Copy(file, output.Body)
	closeErr := file.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		// The create above may have left a partial file; remove it.
		c.RemoveLocal(localPath)
		return errors.NewObjectError("get", bucket, key, errors.Classify(copyErr))
	}

	return nil
}

// PutFile uploads a local file to S3 under the given key, setting the
// object's canned ACL to the job's access policy. Content type is sniffed
// from the file contents, falling back to extension-based lookup.
func (c *Client) PutFile(ctx context.Context, bucket, key, localPath string, acl ACL) error {
	if bucket == "" {
		return errors.NewObjectError("put", bucket, key, errors.ErrInvalidInput).
			WithMessage("bucket name cannot be empty")
	}
	if key == "" {
		return errors.NewObjectError("put", bucket, key, errors.ErrInvalidInput).
			WithMessage("object key cannot be empty")
	}

	info, err := c.fs.Stat(localPath)
	if err != nil {
		return errors.NewObjectError("put", bucket, key, err)
	}
	if info.IsDir() {
		return errors.NewObjectError("put", bucket, key, errors.ErrInvalidInput).
			WithMessage("local path points to a directory, not a file")
	}

	file, err := c.fs.Open(localPath)
	if err != nil {
		return errors.NewObjectError("put", bucket, key, err)
	}
	defer file.Close()

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(c.detectContentType(localPath)),
		ACL:           types.ObjectCannedACL(acl),
	}

	if _, err := c.s3Client.PutObject(ctx, input); err != nil {
		return errors.NewObjectError("put", bucket, key, errors.Classify(err))
	}

	return nil
}

// Delete deletes a single object from S3.
// The operation is idempotent: deleting a missing object is not an error.
func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	if bucket == "" {
		return errors.NewObjectError("delete", bucket, key, errors.ErrInvalidInput).
			WithMessage("bucket name cannot be empty")
	}
	if key == "" {
		return errors.NewObjectError("delete", bucket, key, errors.ErrInvalidInput).
			WithMessage("object key cannot be empty")
	}

	input := &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	if _, err := c.s3Client.DeleteObject(ctx, input); err != nil {
		return errors.NewObjectError("delete", bucket, key, errors.Classify(err))
	}

	return nil
}

// Exists reports whether an object exists in the bucket. A missing
// object is not an error; anything else (access denied, transport
// failure) is.
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if bucket == "" {
		return false, errors.NewObjectError("exists", bucket, key, errors.ErrInvalidInput).
			WithMessage("bucket name cannot be empty")
	}
	if key == "" {
		return false, errors.NewObjectError("exists", bucket, key, errors.ErrInvalidInput).
			WithMessage("object key cannot be empty")
	}

	input := &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	if _, err := c.s3Client.HeadObject(ctx, input); err != nil {
		classified := errors.Classify(err)
		if errors.IsObjectNotFound(classified) {
			return false, nil
		}
		return false, errors.NewObjectError("exists", bucket, key, classified)
	}

	return true, nil
}

// RemoveLocal removes a local file through the client's filesystem,
// ignoring errors. Used to clean up partial downloads.
func (c *Client) RemoveLocal(localPath string) {
	if exists, err := c.fs.Exists(localPath); err == nil && exists {
		_ = c.fs.Remove(localPath)
	}
}

// detectContentType determines the content type using mimetype where
// possible, falling back to extension-based lookup when the file cannot
// be read.
func (c *Client) detectContentType(path string) string {
	file, err := c.fs.Open(path)
	if err != nil {
		return c.detectContentTypeFromExtension(path)
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	if n > 0 {
		if mt := mimetype.Detect(buf[:n]); mt != nil {
			return mt.String()
		}
	}

	return c.detectContentTypeFromExtension(path)
}

// detectContentTypeFromExtension detects content type from file extension.
func (c *Client) detectContentTypeFromExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	return DefaultContentType
}

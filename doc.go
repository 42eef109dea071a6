// Package bulks3 provides the S3 store client used by the bulks3 bulk
// transfer tool.
//
// The Client wraps the AWS SDK v2 S3 client with the small, single-object
// surface the tool needs: download to a local file, upload from a local
// file with an access policy, key listing from a start key, and delete.
// Retry across attempts is owned by the job engine in internal/job, so the
// Client deliberately disables SDK-level retries and surfaces every
// failure to the caller.
package bulks3

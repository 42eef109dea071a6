package job

import (
	"github.com/google/uuid"

	"github.com/objtools/bulks3"
)

// DefaultRetries is the per-job retry budget when none is configured.
const DefaultRetries = 5

// Operation is the closed set of bulk operations a job can carry.
type Operation int

const (
	// OpGet downloads one object to a local file.
	OpGet Operation = iota

	// OpPut uploads one local file with the job's access policy.
	OpPut

	// OpDelete deletes one object.
	OpDelete
)

// String returns the operation name as it appears on the CLI.
func (op Operation) String() string {
	switch op {
	case OpGet:
		return "get"
	case OpPut:
		return "put"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Job is one bulk-transfer unit of work bound to a single object key.
// It is immutable once constructed; the dispatch loop builds one Job per
// input item and the pool discards it after a terminal outcome.
type Job struct {
	// ID is a short identifier correlating log lines for this job.
	ID string

	// Op selects the single-object operation to perform.
	Op Operation

	// Key is the object key (for get/delete) or target key (for put).
	Key string

	// LocalPath is the local file to read (put) or write (get).
	LocalPath string

	// ACL is the access policy applied on upload. Ignored for get/delete.
	ACL bulks3.ACL

	// Retries is the total attempt budget for this job.
	Retries int
}

// New constructs an immutable Job with a fresh ID. A non-positive retries
// value falls back to DefaultRetries.
func New(op Operation, key, localPath string, acl bulks3.ACL, retries int) Job {
	if retries <= 0 {
		retries = DefaultRetries
	}
	return Job{
		ID:        uuid.NewString()[:8],
		Op:        op,
		Key:       key,
		LocalPath: localPath,
		ACL:       acl,
		Retries:   retries,
	}
}

// Toolbox is a worker's exclusively-owned handle pair. Each worker obtains
// one from a ToolboxFactory at startup and no other goroutine ever touches
// it, so no locking is needed around the client.
type Toolbox struct {
	// Store is the worker's private store client.
	Store *bulks3.Client

	// Bucket is the bucket every job in this run operates on.
	Bucket string
}

// ToolboxFactory creates one Toolbox per worker. It is called exactly once
// per worker during pool construction; an error aborts pool startup.
type ToolboxFactory func() (*Toolbox, error)

// Package pool implements the fixed-size worker pool that executes
// transfer jobs from a bounded queue, one Toolbox per worker.
package pool

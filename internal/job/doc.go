// Package job defines the unit of bulk-transfer work and the retry state
// machine that executes it against a worker's Toolbox.
package job

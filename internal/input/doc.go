// Package input resolves and enumerates the items a run operates on:
// object keys for get/delete, local file paths for put.
package input

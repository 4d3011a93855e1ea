// Package cmap provides a string-keyed map sharded by murmur3 hash, for
// hot per-client state where one mutex would serialize every request.
package cmap

// Package cache provides content-addressed caching for pipeline stages.
//
// Every pipeline stage output (decoded component trees, resolved run
// snapshots, rendered artifacts) is cacheable under a key derived from
// a content hash plus the options that shaped the output. Identical
// input with identical options always maps to the same key, so cache
// hits are sound as long as rendering is deterministic (seeded
// scrambling).
//
// Backends:
//   - FileCache: directory of JSON entries with TTL, for CLI usage
//   - MemoryCache: in-process map with TTL, for the server and tests
//   - RedisCache: shared cache for multi-instance deployments
//   - NullCache: no-op, caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
//
// Get returns (nil, false, nil) on a miss; errors are reserved for
// backend failures. Callers treat the cache as best effort and fall
// through to recomputation on both misses and errors.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per stage. Component trees and run snapshots are keyed
// by content hash, so the TTL is hygiene rather than correctness.
// Pages are keyed by mutable document ID and expire quickly.
const (
	TTLComponent = 24 * time.Hour
	TTLRuns      = 24 * time.Hour
	TTLArtifact  = 72 * time.Hour
	TTLPage      = 10 * time.Minute
)

// ComponentKeyOpts captures the decode options that change the
// resulting tree.
type ComponentKeyOpts struct {
	// Legacy is true when the input was section-sign legacy text
	// rather than wire JSON.
	Legacy bool
}

// RunsKeyOpts captures the resolution options that change the run
// snapshot.
type RunsKeyOpts struct {
	IntervalMS int64
	NoHover    bool
	LinkTarget string
	Seed       uint64
}

// ArtifactKeyOpts captures the render options that change a single
// artifact.
type ArtifactKeyOpts struct {
	Format     string
	Title      string
	LinkTarget string
	IntervalMS int64
	Detailed   bool
}

// Keyer generates cache keys for the pipeline stages. Implementations
// must be deterministic: equal inputs produce equal keys.
type Keyer interface {
	// PageKey keys a rendered page for a stored document. Documents
	// are mutable, so the key is the plain ID rather than a hash.
	PageKey(documentID, format string) string

	// ComponentKey keys a decoded component tree by input hash.
	ComponentKey(inputHash string, opts ComponentKeyOpts) string

	// RunsKey keys a resolved run snapshot by tree hash.
	RunsKey(treeHash string, opts RunsKeyOpts) string

	// ArtifactKey keys one rendered artifact by run snapshot hash.
	ArtifactKey(runsHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key scheme: a stage prefix joined with
// a hash of the identifying inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// PageKey generates a key for a rendered document page.
func (k *DefaultKeyer) PageKey(documentID, format string) string {
	return "page:" + documentID + ":" + format
}

// ComponentKey generates a key for a decoded component tree.
func (k *DefaultKeyer) ComponentKey(inputHash string, opts ComponentKeyOpts) string {
	return hashKey("component", inputHash, opts)
}

// RunsKey generates a key for a resolved run snapshot.
func (k *DefaultKeyer) RunsKey(treeHash string, opts RunsKeyOpts) string {
	return hashKey("runs", treeHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(runsHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", runsHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)

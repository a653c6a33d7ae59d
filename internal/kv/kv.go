// Package kv defines the narrow key-value interface the session store and
// station registry mutate against. It is satisfied both by a JetStream KV
// bucket (production) and by an in-memory double (tests), so the session
// engine and registry logic never depend on a live broker to be exercised.
package kv

import (
	"context"

	"github.com/pluce/openlink/internal/olerr"
)

// Store is a revisioned key-value bucket with compare-and-swap updates,
// modeled directly on JetStream KV (history = 1) semantics: every value
// carries a monotonically increasing revision, and Update fails if the
// caller's expected revision is stale.
type Store interface {
	// Get returns the current value and revision for key. Returns an
	// olerr NotFound error if the key has never been written or was
	// deleted.
	Get(ctx context.Context, key string) (value []byte, revision uint64, err error)

	// Put unconditionally upserts key and returns the new revision.
	Put(ctx context.Context, key string, value []byte) (revision uint64, err error)

	// Update writes value only if the key's current revision equals
	// expectedRevision, returning an olerr StateConflict error otherwise.
	Update(ctx context.Context, key string, value []byte, expectedRevision uint64) (revision uint64, err error)

	// Delete removes key.
	Delete(ctx context.Context, key string) error

	// Keys lists every key currently present in the bucket.
	Keys(ctx context.Context) ([]string, error)

	// PurgeAll wipes every key in the bucket; used by the --clean flag.
	PurgeAll(ctx context.Context) error
}

// notFound builds the olerr NotFound error returned when a key does not
// exist.
func notFound(key string) error {
	return olerr.NotFound("key not found: "+key, nil)
}

// conflict builds the olerr StateConflict error returned on a revision
// mismatch.
func conflict(key string) error {
	return olerr.StateConflict("revision conflict on key: "+key, nil)
}

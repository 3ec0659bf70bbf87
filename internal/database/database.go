package database

import "context"

// Store is the key-path document store shared by all services. Paths are
// slash-separated ("users/abc123"), values follow JSON semantics: reading
// a missing node decodes a JSON null into the target.
//
// Implementations: FirebaseStore (Realtime Database) for production,
// MemoryStore for tests and credential-less local runs.
type Store interface {
	// Get decodes the value at path into v. A missing node decodes as null.
	Get(ctx context.Context, path string, v interface{}) error

	// Set overwrites the value at path.
	Set(ctx context.Context, path string, v interface{}) error

	// Update applies an atomic multi-location update relative to path.
	// Map keys are child paths; a nil value deletes that child.
	Update(ctx context.Context, path string, values map[string]interface{}) error

	// Delete removes the value at path.
	Delete(ctx context.Context, path string) error

	// Push appends v under path with a chronologically ordered key and
	// returns the generated key.
	Push(ctx context.Context, path string, v interface{}) (string, error)

	// Create writes v at path only if the path holds no value yet.
	// Returns false when the path is already occupied. The check and
	// write are atomic.
	Create(ctx context.Context, path string, v interface{}) (bool, error)

	// QueryChildEqual fetches up to limit children of path whose child
	// field equals value, decoding the matching subtree into v (a map
	// keyed by child key).
	QueryChildEqual(ctx context.Context, path, child string, value interface{}, limit int, v interface{}) error
}

// ServerTimestamp is the store-side timestamp sentinel. Written as a value,
// the server replaces it with its own epoch-ms clock.
var ServerTimestamp = map[string]interface{}{".sv": "timestamp"}

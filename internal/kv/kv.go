package kv

import "context"

// Store is a durable string key/value store. The event collection is
// persisted as a single JSON document under one key, so this is the only
// storage contract the domain layer knows about.
type Store interface {
	// Get returns the value for key, or ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) (string, error)
	// Set writes value under key, replacing any prior value.
	Set(ctx context.Context, key, value string) error
	// Clear removes key. Clearing an absent key is not an error.
	Clear(ctx context.Context, key string) error
}

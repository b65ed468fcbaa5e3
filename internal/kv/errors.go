package kv

import "errors"

// ErrNotFound distinguishes an absent key from a store failure.
var ErrNotFound = errors.New("key not found")

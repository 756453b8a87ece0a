// Package db defines a minimal key-value database abstraction with write
// transactions, shared by every storage backend of the project.
package db

import "errors"

var (
	// ErrKeyNotFound is returned by Get when the key does not exist.
	ErrKeyNotFound = errors.New("key not found")
	// ErrConflict is returned by Commit when the transaction cannot be
	// applied because a concurrent transaction touched the same keys.
	// Only backends with conflict detection return it.
	ErrConflict = errors.New("transaction conflict")
)

// Options groups the parameters used to open a database backend. Backends
// ignore the fields that do not apply to them.
type Options struct {
	Path string
}

// Reader is the read-only part of a key-value database.
type Reader interface {
	// Get retrieves the value for the given key. If the key does not
	// exist, it returns ErrKeyNotFound.
	Get(key []byte) ([]byte, error)

	// Iterate calls callback with every key-value pair whose key starts
	// with prefix, in lexicographic key order, until the callback returns
	// false. Keys are passed in full, prefix included. The slices handed
	// to the callback may be reused between calls and must be cloned to
	// be kept.
	Iterate(prefix []byte, callback func(key, value []byte) bool) error
}

// Database is a persistent key-value store. All its methods are safe for
// concurrent use.
type Database interface {
	Reader

	// WriteTx creates a new write transaction.
	WriteTx() WriteTx

	// Close releases the database resources. No method may be assumed to
	// work after Close returns.
	Close() error

	// Compact reclaims storage space where the backend supports it.
	Compact() error
}

// WriteTx is a set of pending writes over a snapshot of the database. Writes
// become visible to other readers only after Commit. Whether concurrent
// transactions are isolated from each other depends on the backend.
type WriteTx interface {
	Reader

	// Set stores the key-value pair, overwriting any previous value.
	Set(key, value []byte) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(key []byte) error

	// Apply copies every pending key-value pair of the given transaction
	// into this one, as the given transaction sees them.
	Apply(other WriteTx) error

	// Commit applies the transaction to the database.
	Commit() error

	// Discard drops the transaction. It can be deferred right after
	// WriteTx and is a no-op on an already committed transaction.
	Discard()
}

// Package storage defines the transactional key-value contract the game host
// persists through. Implementations live in the memory and badger
// subpackages; typed reads and writes live in storage/operation.
package storage

import "errors"

var (
	// ErrNotFound is returned by Get when a key has never been written. The
	// backends translate their own not-found errors into this one.
	ErrNotFound = errors.New("key not found")

	ErrAlreadyExists = errors.New("key already exists")
)

// Reader reads committed (or, inside Update, staged) state.
type Reader interface {
	// Get returns a copy of the value stored under key.
	Get(key []byte) ([]byte, error)
}

// Tx is a read-write transaction. Writes become visible to other callers
// only once the enclosing Update returns nil.
type Tx interface {
	Reader
	Set(key, val []byte) error
}

type Store interface {
	View(fn func(Reader) error) error
	// Update runs fn in a transaction and commits iff fn returns nil.
	// Implementations may run fn more than once on write conflicts.
	Update(fn func(Tx) error) error
	Close() error
}

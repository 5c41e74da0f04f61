// Package badger backs storage.Store with a badger v2 database.
package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"zkbattleship/internal/storage"
)

const (
	conflictRetries = 16
	conflictBackoff = 2 * time.Millisecond
	maxBackoff      = 100 * time.Millisecond
)

type Store struct {
	db  *badger.DB
	log zerolog.Logger
}

var _ storage.Store = (*Store)(nil)

// Open opens (or creates) the database in dir. An empty dir keeps everything
// in memory.
func Open(dir string, log zerolog.Logger) (*Store, error) {
	log = log.With().Str("component", "badger").Logger()
	opts := badger.DefaultOptions(dir).WithLogger(logger{log: log})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open badger db: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error { return s.db.Close() }

type txn struct {
	tx *badger.Txn
}

func (t txn) Get(key []byte) ([]byte, error) {
	item, err := t.tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not load data: %w", err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("could not read value: %w", err)
	}
	return val, nil
}

func (t txn) Set(key, val []byte) error {
	if err := t.tx.Set(key, val); err != nil {
		return fmt.Errorf("could not store data: %w", err)
	}
	return nil
}

func (s *Store) View(fn func(storage.Reader) error) error {
	return s.db.View(func(tx *badger.Txn) error {
		return fn(txn{tx: tx})
	})
}

// Update retries the whole transaction on badger.ErrConflict with exponential
// backoff. Any other error is returned as is.
func (s *Store) Update(fn func(storage.Tx) error) error {
	backoff := retry.NewExponential(conflictBackoff)
	backoff = retry.WithCappedDuration(maxBackoff, backoff)
	backoff = retry.WithMaxRetries(conflictRetries, backoff)
	return retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		err := s.db.Update(func(tx *badger.Txn) error {
			return fn(txn{tx: tx})
		})
		if errors.Is(err, badger.ErrConflict) {
			s.log.Debug().Msg("transaction conflict, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
}

// logger routes badger's own logging into zerolog.
type logger struct {
	log zerolog.Logger
}

func (l logger) Errorf(f string, v ...interface{})   { l.log.Error().Msgf(f, v...) }
func (l logger) Warningf(f string, v ...interface{}) { l.log.Warn().Msgf(f, v...) }
func (l logger) Infof(f string, v ...interface{})    { l.log.Debug().Msgf(f, v...) }
func (l logger) Debugf(f string, v ...interface{})   { l.log.Trace().Msgf(f, v...) }

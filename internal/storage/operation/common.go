package operation

import (
	"errors"
	"fmt"

	"zkbattleship/internal/storage"
)

// insert encodes the entity and stores it under key. It fails with
// storage.ErrAlreadyExists if the key is taken.
func insert(key []byte, entity interface{}) func(storage.Tx) error {
	return func(tx storage.Tx) error {
		_, err := tx.Get(key)
		if err == nil {
			return storage.ErrAlreadyExists
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("could not check key: %w", err)
		}
		return put(tx, key, entity)
	}
}

// update replaces the entity under an existing key. It fails with
// storage.ErrNotFound if the key does not exist yet.
func update(key []byte, entity interface{}) func(storage.Tx) error {
	return func(tx storage.Tx) error {
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return storage.ErrNotFound
			}
			return fmt.Errorf("could not check key: %w", err)
		}
		return put(tx, key, entity)
	}
}

// upsert stores the entity whether or not the key exists.
func upsert(key []byte, entity interface{}) func(storage.Tx) error {
	return func(tx storage.Tx) error {
		return put(tx, key, entity)
	}
}

func put(tx storage.Tx, key []byte, entity interface{}) error {
	val, err := encodeEntity(entity)
	if err != nil {
		return err
	}
	if err := tx.Set(key, val); err != nil {
		return fmt.Errorf("could not store data: %w", err)
	}
	return nil
}

// retrieve decodes the value under key into entity, which must be a pointer.
func retrieve(key []byte, entity interface{}) func(storage.Reader) error {
	return func(r storage.Reader) error {
		val, err := r.Get(key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return storage.ErrNotFound
			}
			return fmt.Errorf("could not load data: %w", err)
		}
		return decodeValue(val, entity)
	}
}

// check sets exists according to whether key is present.
func check(key []byte, exists *bool) func(storage.Reader) error {
	return func(r storage.Reader) error {
		_, err := r.Get(key)
		if errors.Is(err, storage.ErrNotFound) {
			*exists = false
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not check existence: %w", err)
		}
		*exists = true
		return nil
	}
}

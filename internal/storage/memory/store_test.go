package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkbattleship/internal/storage"
)

func TestUpdateCommits(t *testing.T) {
	s := New()
	require.NoError(t, s.Update(func(tx storage.Tx) error {
		return tx.Set([]byte("a"), []byte("1"))
	}))

	err := s.View(func(r storage.Reader) error {
		v, err := r.Get([]byte("a"))
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), v)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestFailedUpdateWritesNothing(t *testing.T) {
	s := New()
	boom := errors.New("boom")
	err := s.Update(func(tx storage.Tx) error {
		require.NoError(t, tx.Set([]byte("a"), []byte("1")))

		// staged writes are visible inside the transaction
		v, err := tx.Get([]byte("a"))
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), v)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Len())

	err = s.View(func(r storage.Reader) error {
		_, err := r.Get([]byte("a"))
		return err
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestValuesAreCopied(t *testing.T) {
	s := New()
	val := []byte("abc")
	require.NoError(t, s.Update(func(tx storage.Tx) error {
		return tx.Set([]byte("k"), val)
	}))
	val[0] = 'x'

	require.NoError(t, s.View(func(r storage.Reader) error {
		got, err := r.Get([]byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), got)
		got[1] = 'y'
		return nil
	}))
	require.NoError(t, s.View(func(r storage.Reader) error {
		got, err := r.Get([]byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), got)
		return nil
	}))
}

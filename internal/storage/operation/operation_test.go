package operation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkbattleship/internal/codec"
	"zkbattleship/internal/model"
	"zkbattleship/internal/storage"
	"zkbattleship/internal/storage/memory"
)

func TestGameRoundTrip(t *testing.T) {
	db := memory.New()
	session := uint32(7)
	game := &model.Game{
		ID:          7,
		PlayerA:     "alice",
		PlayerB:     "bob",
		Status:      model.Active,
		CurrentTurn: "bob",
		HitsA:       3,
		CommittedA:  true,
		CommittedB:  true,
		Session:     &session,
		CreatedAt:   1700000000,
	}
	require.NoError(t, db.Update(InsertGame(game)))

	var got model.Game
	require.NoError(t, db.View(RetrieveGame(7, &got)))
	assert.Equal(t, *game, got)

	err := db.Update(InsertGame(game))
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	err = db.View(RetrieveGame(8, &got))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateRequiresExistingKey(t *testing.T) {
	db := memory.New()
	err := db.Update(UpdateGame(&model.Game{ID: 1}))
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, 0, db.Len())
}

func TestAllocateGameID(t *testing.T) {
	db := memory.New()

	var id uint64
	err := db.Update(AllocateGameID(&id))
	assert.ErrorIs(t, err, storage.ErrNotFound, "counter must be seeded first")

	require.NoError(t, db.Update(InsertNextGameID(1)))
	for want := uint64(1); want <= 3; want++ {
		require.NoError(t, db.Update(AllocateGameID(&id)))
		assert.Equal(t, want, id)
	}
}

func TestAdminWriteOnce(t *testing.T) {
	db := memory.New()
	require.NoError(t, db.Update(InsertAdmin("root")))
	assert.ErrorIs(t, db.Update(InsertAdmin("other")), storage.ErrAlreadyExists)

	var admin model.Identity
	require.NoError(t, db.View(RetrieveAdmin(&admin)))
	assert.Equal(t, model.Identity("root"), admin)
}

func TestCommitmentKeyedByPlayer(t *testing.T) {
	db := memory.New()
	c := &model.BoardCommitment{
		Hash:         codec.Commitment{1, 2, 3},
		Proof:        []byte{9, 9},
		PublicInputs: make([]byte, codec.FieldSize),
	}
	require.NoError(t, db.Update(InsertCommitment(1, "ab", c)))

	var exists bool
	require.NoError(t, db.View(HasCommitment(1, "ab", &exists)))
	assert.True(t, exists)

	// length-prefixed identities keep adjacent keys apart
	require.NoError(t, db.View(HasCommitment(1, "a", &exists)))
	assert.False(t, exists)
	require.NoError(t, db.View(HasCommitment(2, "ab", &exists)))
	assert.False(t, exists)

	var got model.BoardCommitment
	require.NoError(t, db.View(RetrieveCommitment(1, "ab", &got)))
	assert.Equal(t, *c, got)
}

func TestShotsAndTally(t *testing.T) {
	db := memory.New()

	var tally model.ShotTally
	require.NoError(t, db.View(RetrieveShotTally(1, "alice", &tally)))
	assert.Zero(t, tally.Count)

	require.NoError(t, db.Update(func(tx storage.Tx) error {
		idx := tally.MarkFired(4, 2)
		if err := InsertShot(1, "alice", idx, &model.ShotRecord{Row: 4, Col: 2})(tx); err != nil {
			return err
		}
		return UpsertShotTally(1, "alice", &tally)(tx)
	}))

	var got model.ShotTally
	require.NoError(t, db.View(RetrieveShotTally(1, "alice", &got)))
	assert.Equal(t, uint32(1), got.Count)
	assert.True(t, got.HasFired(4, 2))
	assert.False(t, got.HasFired(2, 4))

	shot := model.ShotRecord{Row: 4, Col: 2, Result: model.Hit, Proof: []byte{1}}
	require.NoError(t, db.Update(UpdateShot(1, "alice", 0, &shot)))

	var stored model.ShotRecord
	require.NoError(t, db.View(RetrieveShot(1, "alice", 0, &stored)))
	assert.Equal(t, shot, stored)

	assert.ErrorIs(t, db.View(RetrieveShot(1, "alice", 1, &stored)), storage.ErrNotFound)
	assert.ErrorIs(t, db.View(RetrieveShot(1, "bob", 0, &stored)), storage.ErrNotFound)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	var g model.Game
	err := decodeValue([]byte{0xff, 0x00, 0x13}, &g)
	assert.ErrorIs(t, err, errUncompressedValue)
}

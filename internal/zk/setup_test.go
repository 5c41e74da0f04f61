package zk

import (
	"os"
	"sync"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkbattleship/internal/codec"
	"zkbattleship/internal/verifier"
)

func TestMain(m *testing.M) {
	logger.Disable()
	os.Exit(m.Run())
}

var (
	proverOnce sync.Once
	prover     *Prover
	proverErr  error
)

func testProver(t *testing.T) *Prover {
	t.Helper()
	proverOnce.Do(func() { prover, proverErr = Setup() })
	require.NoError(t, proverErr)
	return prover
}

// testCells lays ships of 5,4,3,3,2 along the first five rows.
func testCells() []uint8 {
	cells := make([]uint8, Cells)
	for row, n := range []int{5, 4, 3, 3, 2} {
		for col := 0; col < n; col++ {
			cells[row*codec.BoardSize+col] = 1
		}
	}
	return cells
}

func testSalt() fr.Element {
	var s fr.Element
	s.SetUint64(424242)
	return s
}

func registered(t *testing.T, p *Prover) (*verifier.Verifier, verifier.KeyRef, verifier.KeyRef) {
	t.Helper()
	v := verifier.New(zerolog.Nop())
	bk, err := p.BoardKey()
	require.NoError(t, err)
	hk, err := p.HitKey()
	require.NoError(t, err)
	assert.Equal(t, 1, bk.NbPublicInputs())
	assert.Equal(t, 3, hk.NbPublicInputs())
	return v, v.Register(bk), v.Register(hk)
}

func TestBoardProof(t *testing.T) {
	p := testProver(t)
	v, boardRef, hitRef := registered(t, p)

	proof, c, err := p.ProveBoard(testCells(), testSalt())
	require.NoError(t, err)
	require.Len(t, proof, verifier.ProofSize)

	ok, err := v.VerifyBoardProof(proof, c, boardRef)
	require.NoError(t, err)
	assert.True(t, ok)

	other := c
	other[0] ^= 1
	ok, err = v.VerifyBoardProof(proof, other, boardRef)
	require.NoError(t, err)
	assert.False(t, ok)

	// a board proof can't stand in for a hit proof
	_, err = v.Verify(proof, codec.BoardPublicInputs(c), hitRef)
	assert.ErrorIs(t, err, verifier.ErrInvalidPublicInputsLength)
}

func TestBoardCommitmentDependsOnSalt(t *testing.T) {
	p := testProver(t)
	_, c1, err := p.ProveBoard(testCells(), testSalt())
	require.NoError(t, err)

	var salt fr.Element
	salt.SetUint64(7)
	_, c2, err := p.ProveBoard(testCells(), salt)
	require.NoError(t, err)
	assert.NotEqual(t, c1, c2)
}

func TestBoardProofRejectsIllegalBoard(t *testing.T) {
	p := testProver(t)

	short := testCells()
	short[0] = 0
	_, _, err := p.ProveBoard(short, testSalt())
	assert.Error(t, err)

	nonBinary := testCells()
	nonBinary[99] = 2
	_, _, err = p.ProveBoard(nonBinary, testSalt())
	assert.Error(t, err)

	_, _, err = p.ProveBoard(make([]uint8, 10), testSalt())
	assert.Error(t, err)
}

func TestHitProof(t *testing.T) {
	p := testProver(t)
	v, _, hitRef := registered(t, p)
	cells := testCells()
	_, c, err := p.ProveBoard(cells, testSalt())
	require.NoError(t, err)

	cases := []struct {
		name     string
		row, col uint32
		want     uint32
	}{
		{"hit", 0, 4, 1},
		{"miss", 9, 9, 0},
		{"edge miss", 4, 2, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			proof, result, err := p.ProveHit(cells, testSalt(), tc.row, tc.col)
			require.NoError(t, err)
			assert.Equal(t, tc.want, result)

			ok, err := v.VerifyHitProof(proof, c, tc.row, tc.col, result, hitRef)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = v.VerifyHitProof(proof, c, tc.row, tc.col, 1-result, hitRef)
			require.NoError(t, err)
			assert.False(t, ok, "flipped result must not verify")

			ok, err = v.VerifyHitProof(proof, c, tc.row, (tc.col+1)%codec.BoardSize, result, hitRef)
			require.NoError(t, err)
			assert.False(t, ok, "proof is bound to its cell")
		})
	}
}

func TestHitProofOutOfRange(t *testing.T) {
	p := testProver(t)
	_, _, err := p.ProveHit(testCells(), testSalt(), 10, 0)
	assert.Error(t, err)
	_, _, err = p.ProveHit(testCells(), testSalt(), 0, 10)
	assert.Error(t, err)
}

func TestKeysRoundTrip(t *testing.T) {
	p := testProver(t)
	dir := t.TempDir()
	require.NoError(t, p.WriteKeys(dir))

	for _, name := range []string{BoardKeyName, HitKeyName} {
		pk, vk := KeyPaths(dir, name)
		assert.FileExists(t, pk)
		assert.FileExists(t, vk)
	}

	loaded, err := EnsureKeys(dir)
	require.NoError(t, err)

	want, err := p.HitKey()
	require.NoError(t, err)
	got, err := loaded.HitKey()
	require.NoError(t, err)
	assert.Equal(t, want.Ref(), got.Ref())

	_, vkPath := KeyPaths(dir, BoardKeyName)
	fromFile, err := verifier.LoadKeyFile(vkPath)
	require.NoError(t, err)
	wantBoard, err := p.BoardKey()
	require.NoError(t, err)
	assert.Equal(t, wantBoard.Ref(), fromFile.Ref())

	// the reloaded prover produces proofs the original keys accept
	v := verifier.New(zerolog.Nop())
	ref := v.Register(wantBoard)
	proof, c, err := loaded.ProveBoard(testCells(), testSalt())
	require.NoError(t, err)
	ok, err := v.VerifyBoardProof(proof, c, ref)
	require.NoError(t, err)
	assert.True(t, ok)
}

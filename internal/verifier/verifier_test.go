package verifier

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkbattleship/internal/codec"
)

// trapdoor is the discrete-log view of a synthetic key. Knowing it lets a test
// build proofs that satisfy the pairing equation without running a prover.
type trapdoor struct {
	a, b, c fr.Element
	k       []fr.Element
}

func g1Mul(s fr.Element) bn254.G1Affine {
	_, _, g1, _ := bn254.Generators()
	var p bn254.G1Affine
	p.ScalarMultiplication(&g1, s.BigInt(new(big.Int)))
	return p
}

func g2Mul(s fr.Element) bn254.G2Affine {
	_, _, _, g2 := bn254.Generators()
	var p bn254.G2Affine
	p.ScalarMultiplication(&g2, s.BigInt(new(big.Int)))
	return p
}

func syntheticKey(t *testing.T, nbInputs int, seed uint64) (*VerifyingKey, trapdoor) {
	t.Helper()
	var td trapdoor
	td.a.SetUint64(seed + 3)
	td.b.SetUint64(seed + 5)
	td.c.SetUint64(seed + 7)
	td.k = make([]fr.Element, nbInputs+1)
	for i := range td.k {
		td.k[i].SetUint64(seed + 11 + uint64(i)*13)
	}

	var one fr.Element
	one.SetOne()
	vk := &VerifyingKey{
		Alpha: g1Mul(td.a),
		Beta:  g2Mul(td.b),
		Gamma: g2Mul(one),
		Delta: g2Mul(one),
		K:     make([]bn254.G1Affine, len(td.k)),
	}
	for i := range td.k {
		vk.K[i] = g1Mul(td.k[i])
	}
	require.NoError(t, vk.validate())
	return vk, td
}

// prove returns A = s·g1, B = g2, C = c·g1 with s = ab + k0 + Σ kᵢxᵢ + c.
func (td trapdoor) prove(t *testing.T, publicInputs []byte) []byte {
	t.Helper()
	blocks, err := codec.Blocks(publicInputs)
	require.NoError(t, err)
	require.Len(t, blocks, len(td.k)-1)

	var s, tmp fr.Element
	s.Mul(&td.a, &td.b)
	s.Add(&s, &td.k[0])
	for i, blk := range blocks {
		x := codec.FieldFromBlock(blk)
		tmp.Mul(&td.k[i+1], &x)
		s.Add(&s, &tmp)
	}
	s.Add(&s, &td.c)

	var one fr.Element
	one.SetOne()
	p := Proof{A: g1Mul(s), B: g2Mul(one), C: g1Mul(td.c)}
	return p.Bytes()
}

func commitment(b byte) codec.Commitment {
	var c codec.Commitment
	for i := 0; i < 31; i++ {
		c[i] = b + byte(i)
	}
	return c
}

func TestVerifyAcceptsValidProof(t *testing.T) {
	v := New(zerolog.Nop())
	vk, td := syntheticKey(t, 1, 1)
	ref := v.Register(vk)

	c := commitment(9)
	proof := td.prove(t, codec.BoardPublicInputs(c))
	require.Len(t, proof, ProofSize)

	ok, err := v.VerifyBoardProof(proof, c, ref)
	require.NoError(t, err)
	assert.True(t, ok)

	// same proof, different statement
	ok, err = v.VerifyBoardProof(proof, commitment(10), ref)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyHitProof(t *testing.T) {
	v := New(zerolog.Nop())
	vk, td := syntheticKey(t, 3, 100)
	ref := v.Register(vk)
	c := commitment(1)

	proof := td.prove(t, codec.HitPublicInputs(c, 3, 5, 1))

	ok, err := v.VerifyHitProof(proof, c, 3, 5, 1, ref)
	require.NoError(t, err)
	assert.True(t, ok)

	t.Run("flipped result", func(t *testing.T) {
		ok, err := v.VerifyHitProof(proof, c, 3, 5, 0, ref)
		require.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("other cell", func(t *testing.T) {
		ok, err := v.VerifyHitProof(proof, c, 5, 3, 1, ref)
		require.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("wrong key", func(t *testing.T) {
		other, _ := syntheticKey(t, 3, 200)
		ok, err := v.VerifyHitProof(proof, c, 3, 5, 1, v.Register(other))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestVerifyIsStateless(t *testing.T) {
	v := New(zerolog.Nop())
	vk, td := syntheticKey(t, 1, 7)
	ref := v.Register(vk)
	c := commitment(4)
	proof := td.prove(t, codec.BoardPublicInputs(c))

	for i := 0; i < 3; i++ {
		ok, err := v.VerifyBoardProof(proof, c, ref)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestVerifyProofLength(t *testing.T) {
	v := New(zerolog.Nop())
	vk, _ := syntheticKey(t, 1, 1)
	ref := v.Register(vk)
	in := make([]byte, codec.FieldSize)

	for _, n := range []int{0, 127, 129, 256} {
		_, err := v.Verify(make([]byte, n), in, ref)
		assert.ErrorIs(t, err, ErrInvalidProofLength, "len %d", n)
	}

	// length is checked before the key lookup
	_, err := v.Verify(make([]byte, 127), in, KeyRef{0xff})
	assert.ErrorIs(t, err, ErrInvalidProofLength)
}

func TestVerifyPublicInputsLength(t *testing.T) {
	v := New(zerolog.Nop())
	vk, _ := syntheticKey(t, 1, 1)
	ref := v.Register(vk)
	proof := make([]byte, ProofSize)

	_, err := v.Verify(proof, make([]byte, 33), ref)
	assert.ErrorIs(t, err, ErrInvalidPublicInputsLength)

	// whole blocks, but not as many as the key expects
	_, err = v.Verify(proof, make([]byte, 64), ref)
	assert.ErrorIs(t, err, ErrInvalidPublicInputsLength)
}

func TestVerifyPointEncoding(t *testing.T) {
	v := New(zerolog.Nop())
	vk, _ := syntheticKey(t, 1, 1)
	ref := v.Register(vk)
	in := make([]byte, codec.FieldSize)

	for _, fill := range []byte{0x01, 0xff} {
		_, err := v.Verify(bytes.Repeat([]byte{fill}, ProofSize), in, ref)
		assert.ErrorIs(t, err, ErrInvalidPointEncoding, "fill %#x", fill)
	}
}

func TestVerifyUnknownKey(t *testing.T) {
	v := New(zerolog.Nop())
	_, err := v.Verify(make([]byte, ProofSize), make([]byte, codec.FieldSize), KeyRef{1})
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestProofRoundTrip(t *testing.T) {
	_, td := syntheticKey(t, 1, 1)
	raw := td.prove(t, make([]byte, codec.FieldSize))

	p, err := DecodeProof(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, p.Bytes())
}

func TestKeyRef(t *testing.T) {
	a, _ := syntheticKey(t, 1, 1)
	b, _ := syntheticKey(t, 1, 2)
	assert.Equal(t, a.Ref(), a.Ref())
	assert.NotEqual(t, a.Ref(), b.Ref())

	ref := a.Ref()
	parsed, err := ParseKeyRef(ref.String())
	require.NoError(t, err)
	assert.Equal(t, ref, parsed)

	_, err = ParseKeyRef("0x1234")
	assert.Error(t, err)
}

// Package verifier checks BN254 Groth16 proofs against encoded public inputs.
//
// Proofs travel in a fixed 128-byte layout of compressed points:
//
//	A (G1, 32 bytes) ‖ B (G2, 64 bytes) ‖ C (G1, 32 bytes)
//
// and public inputs as 32-byte little-endian blocks (see package codec).
package verifier

import (
	"errors"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/rs/zerolog"

	"zkbattleship/internal/codec"
)

const (
	G1Size    = bn254.SizeOfG1AffineCompressed
	G2Size    = bn254.SizeOfG2AffineCompressed
	ProofSize = G1Size + G2Size + G1Size
)

var (
	ErrInvalidProofLength        = errors.New("invalid proof length")
	ErrInvalidPublicInputsLength = errors.New("invalid public inputs length")
	ErrInvalidPointEncoding      = errors.New("invalid point encoding")
	ErrUnknownKey                = errors.New("unknown verification key")
)

// Proof is a decoded Groth16 proof.
type Proof struct {
	A bn254.G1Affine
	B bn254.G2Affine
	C bn254.G1Affine
}

// DecodeProof parses the 128-byte wire form. Every point must be on the curve
// and in the prime-order subgroup.
func DecodeProof(b []byte) (*Proof, error) {
	if len(b) != ProofSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidProofLength, len(b), ProofSize)
	}
	var p Proof
	if err := setG1(&p.A, b[:G1Size]); err != nil {
		return nil, fmt.Errorf("%w: A: %v", ErrInvalidPointEncoding, err)
	}
	if err := setG2(&p.B, b[G1Size:G1Size+G2Size]); err != nil {
		return nil, fmt.Errorf("%w: B: %v", ErrInvalidPointEncoding, err)
	}
	if err := setG1(&p.C, b[G1Size+G2Size:]); err != nil {
		return nil, fmt.Errorf("%w: C: %v", ErrInvalidPointEncoding, err)
	}
	return &p, nil
}

// Bytes returns the 128-byte wire form.
func (p *Proof) Bytes() []byte {
	out := make([]byte, 0, ProofSize)
	a := p.A.Bytes()
	b := p.B.Bytes()
	c := p.C.Bytes()
	out = append(out, a[:]...)
	out = append(out, b[:]...)
	return append(out, c[:]...)
}

func setG1(p *bn254.G1Affine, buf []byte) error {
	n, err := p.SetBytes(buf)
	if err != nil {
		return err
	}
	if n != G1Size {
		return errors.New("uncompressed G1 encoding")
	}
	return nil
}

func setG2(p *bn254.G2Affine, buf []byte) error {
	n, err := p.SetBytes(buf)
	if err != nil {
		return err
	}
	if n != G2Size {
		return errors.New("uncompressed G2 encoding")
	}
	return nil
}

// Verifier holds the registered verification keys. It never caches results.
type Verifier struct {
	mu   sync.RWMutex
	keys map[KeyRef]*VerifyingKey
	log  zerolog.Logger
}

func New(log zerolog.Logger) *Verifier {
	return &Verifier{
		keys: make(map[KeyRef]*VerifyingKey),
		log:  log.With().Str("component", "verifier").Logger(),
	}
}

// Register makes vk selectable by its reference and returns that reference.
func (v *Verifier) Register(vk *VerifyingKey) KeyRef {
	ref := vk.Ref()
	v.mu.Lock()
	v.keys[ref] = vk
	v.mu.Unlock()
	v.log.Info().Str("key", ref.String()).Int("public_inputs", vk.NbPublicInputs()).Msg("verification key registered")
	return ref
}

func (v *Verifier) key(ref KeyRef) (*VerifyingKey, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	vk, ok := v.keys[ref]
	return vk, ok
}

// Verify checks e(A,B) == e(α,β)·e(L,γ)·e(C,δ) where L = K₀ + Σ xᵢ·Kᵢ.
// A false result with a nil error means the equation does not hold.
func (v *Verifier) Verify(proof, publicInputs []byte, ref KeyRef) (bool, error) {
	if len(proof) != ProofSize {
		return false, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidProofLength, len(proof), ProofSize)
	}
	if len(publicInputs)%codec.FieldSize != 0 {
		return false, fmt.Errorf("%w: %d is not a multiple of %d", ErrInvalidPublicInputsLength, len(publicInputs), codec.FieldSize)
	}
	vk, ok := v.key(ref)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownKey, ref)
	}
	blocks, err := codec.Blocks(publicInputs)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidPublicInputsLength, err)
	}
	if len(blocks) != vk.NbPublicInputs() {
		return false, fmt.Errorf("%w: got %d inputs, key expects %d", ErrInvalidPublicInputsLength, len(blocks), vk.NbPublicInputs())
	}

	p, err := DecodeProof(proof)
	if err != nil {
		return false, err
	}

	scalars := make([]fr.Element, len(blocks))
	for i := range blocks {
		scalars[i] = codec.FieldFromBlock(blocks[i])
	}

	l, err := vk.inputCommitment(scalars)
	if err != nil {
		return false, err
	}

	var negAlpha, negL, negC bn254.G1Affine
	negAlpha.Neg(&vk.Alpha)
	negL.Neg(&l)
	negC.Neg(&p.C)

	ok, err = bn254.PairingCheck(
		[]bn254.G1Affine{p.A, negAlpha, negL, negC},
		[]bn254.G2Affine{p.B, vk.Beta, vk.Gamma, vk.Delta},
	)
	if err != nil {
		return false, fmt.Errorf("pairing check: %w", err)
	}
	v.log.Debug().Str("key", ref.String()).Bool("valid", ok).Msg("proof checked")
	return ok, nil
}

// VerifyBoardProof checks a board-validity proof for commitment c.
func (v *Verifier) VerifyBoardProof(proof []byte, c codec.Commitment, ref KeyRef) (bool, error) {
	return v.Verify(proof, codec.BoardPublicInputs(c), ref)
}

// VerifyHitProof checks that the board committed to by c has result at (row, col).
func (v *Verifier) VerifyHitProof(proof []byte, c codec.Commitment, row, col, result uint32, ref KeyRef) (bool, error) {
	return v.Verify(proof, codec.HitPublicInputs(c, row, col, result), ref)
}

func (vk *VerifyingKey) inputCommitment(scalars []fr.Element) (bn254.G1Affine, error) {
	var l bn254.G1Affine
	l.Set(&vk.K[0])
	if len(scalars) == 0 {
		return l, nil
	}
	var sum bn254.G1Affine
	if _, err := sum.MultiExp(vk.K[1:], scalars, ecc.MultiExpConfig{}); err != nil {
		return l, fmt.Errorf("input commitment: %w", err)
	}
	l.Add(&l, &sum)
	return l, nil
}

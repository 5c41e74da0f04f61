package verifier

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"golang.org/x/crypto/blake2b"
)

// KeyRef identifies a verification key (and so a circuit).
type KeyRef [32]byte

func (r KeyRef) String() string { return "0x" + hex.EncodeToString(r[:]) }

func (r KeyRef) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *KeyRef) UnmarshalText(b []byte) error {
	parsed, err := ParseKeyRef(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func ParseKeyRef(s string) (KeyRef, error) {
	var r KeyRef
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return r, fmt.Errorf("invalid key reference: %w", err)
	}
	if len(raw) != len(r) {
		return r, fmt.Errorf("key reference must be %d bytes, got %d", len(r), len(raw))
	}
	copy(r[:], raw)
	return r, nil
}

// VerifyingKey holds the Groth16 constants of one circuit. K[0] pairs with the
// constant wire, K[i] with public input i.
type VerifyingKey struct {
	Alpha bn254.G1Affine
	Beta  bn254.G2Affine
	Gamma bn254.G2Affine
	Delta bn254.G2Affine
	K     []bn254.G1Affine
}

func (vk *VerifyingKey) NbPublicInputs() int { return len(vk.K) - 1 }

// Ref is the BLAKE2b-256 digest of the compressed key points.
func (vk *VerifyingKey) Ref() KeyRef {
	h, _ := blake2b.New256(nil)
	alpha := vk.Alpha.Bytes()
	h.Write(alpha[:])
	for _, g2 := range []*bn254.G2Affine{&vk.Beta, &vk.Gamma, &vk.Delta} {
		b := g2.Bytes()
		h.Write(b[:])
	}
	for i := range vk.K {
		b := vk.K[i].Bytes()
		h.Write(b[:])
	}
	var ref KeyRef
	copy(ref[:], h.Sum(nil))
	return ref
}

// FromGnark converts a gnark BN254 verifying key. Keys whose circuits use
// in-proof commitments are rejected: the 128-byte proof has no room for them.
func FromGnark(gvk groth16.VerifyingKey) (*VerifyingKey, error) {
	vk, ok := gvk.(*groth16bn254.VerifyingKey)
	if !ok {
		return nil, errors.New("verifying key is not over BN254")
	}
	if len(vk.PublicAndCommitmentCommitted) != 0 {
		return nil, errors.New("verifying keys with commitments are not supported")
	}
	if len(vk.G1.K) == 0 {
		return nil, errors.New("verifying key has no input basis")
	}
	out := &VerifyingKey{
		Alpha: vk.G1.Alpha,
		Beta:  vk.G2.Beta,
		Gamma: vk.G2.Gamma,
		Delta: vk.G2.Delta,
		K:     make([]bn254.G1Affine, len(vk.G1.K)),
	}
	copy(out.K, vk.G1.K)
	if err := out.validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadKey reads a key in gnark's binary format (as written by vk.WriteTo).
func ReadKey(r io.Reader) (*VerifyingKey, error) {
	gvk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := gvk.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read verifying key: %w", err)
	}
	return FromGnark(gvk)
}

func LoadKeyFile(path string) (*VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vk, err := ReadKey(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vk, nil
}

func (vk *VerifyingKey) validate() error {
	if !vk.Alpha.IsInSubGroup() {
		return fmt.Errorf("%w: alpha not in G1", ErrInvalidPointEncoding)
	}
	for name, p := range map[string]*bn254.G2Affine{"beta": &vk.Beta, "gamma": &vk.Gamma, "delta": &vk.Delta} {
		if !p.IsInSubGroup() {
			return fmt.Errorf("%w: %s not in G2", ErrInvalidPointEncoding, name)
		}
	}
	for i := range vk.K {
		if !vk.K[i].IsInSubGroup() {
			return fmt.Errorf("%w: K[%d] not in G1", ErrInvalidPointEncoding, i)
		}
	}
	return nil
}

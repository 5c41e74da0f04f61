package zk

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"zkbattleship/internal/codec"
	"zkbattleship/internal/merkle"
	"zkbattleship/internal/verifier"
)

const (
	BoardKeyName = "board"
	HitKeyName   = "hit"
)

// KeyPaths returns the proving and verifying key files for a circuit.
func KeyPaths(dir, name string) (pk, vk string) {
	return filepath.Join(dir, name+".pk"), filepath.Join(dir, name+".vk")
}

type circuitKeys struct {
	cs constraint.ConstraintSystem
	pk groth16.ProvingKey
	vk groth16.VerifyingKey
}

// Prover holds compiled circuits and proving keys for both proof kinds.
type Prover struct {
	board circuitKeys
	hit   circuitKeys
}

func compile(c frontend.Circuit) (constraint.ConstraintSystem, error) {
	return frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, c)
}

func setupCircuit(c frontend.Circuit) (circuitKeys, error) {
	cs, err := compile(c)
	if err != nil {
		return circuitKeys{}, err
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return circuitKeys{}, err
	}
	return circuitKeys{cs: cs, pk: pk, vk: vk}, nil
}

// Setup compiles both circuits and runs a fresh (untrusted, single party)
// Groth16 setup for each.
func Setup() (*Prover, error) {
	board, err := setupCircuit(&BoardCircuit{})
	if err != nil {
		return nil, fmt.Errorf("board circuit: %w", err)
	}
	hit, err := setupCircuit(&ShotCircuit{})
	if err != nil {
		return nil, fmt.Errorf("shot circuit: %w", err)
	}
	return &Prover{board: board, hit: hit}, nil
}

// LoadProver compiles both circuits and reads their keys from dir.
func LoadProver(dir string) (*Prover, error) {
	load := func(name string, c frontend.Circuit) (circuitKeys, error) {
		pkPath, vkPath := KeyPaths(dir, name)
		vk := groth16.NewVerifyingKey(ecc.BN254)
		if err := readFrom(vkPath, vk); err != nil {
			return circuitKeys{}, err
		}
		pk := groth16.NewProvingKey(ecc.BN254)
		if err := readFrom(pkPath, pk); err != nil {
			return circuitKeys{}, err
		}
		cs, err := compile(c)
		if err != nil {
			return circuitKeys{}, err
		}
		return circuitKeys{cs: cs, pk: pk, vk: vk}, nil
	}
	board, err := load(BoardKeyName, &BoardCircuit{})
	if err != nil {
		return nil, err
	}
	hit, err := load(HitKeyName, &ShotCircuit{})
	if err != nil {
		return nil, err
	}
	return &Prover{board: board, hit: hit}, nil
}

// EnsureKeys reuses the keys in dir if they parse, otherwise regenerates them.
func EnsureKeys(dir string) (*Prover, error) {
	if p, err := LoadProver(dir); err == nil {
		return p, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	p, err := Setup()
	if err != nil {
		return nil, err
	}
	if err := p.WriteKeys(dir); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Prover) WriteKeys(dir string) error {
	for name, k := range map[string]circuitKeys{BoardKeyName: p.board, HitKeyName: p.hit} {
		pkPath, vkPath := KeyPaths(dir, name)
		if err := writeTo(vkPath, k.vk); err != nil {
			return err
		}
		if err := writeTo(pkPath, k.pk); err != nil {
			return err
		}
	}
	return nil
}

// BoardKey and HitKey return the verifying keys in the verifier's form.
func (p *Prover) BoardKey() (*verifier.VerifyingKey, error) { return verifier.FromGnark(p.board.vk) }
func (p *Prover) HitKey() (*verifier.VerifyingKey, error)   { return verifier.FromGnark(p.hit.vk) }

// ProveBoard proves that cells is a legal board and returns the 128-byte proof
// together with the salted commitment it is bound to.
func (p *Prover) ProveBoard(cells []uint8, salt fr.Element) ([]byte, codec.Commitment, error) {
	if len(cells) != Cells {
		return nil, codec.Commitment{}, fmt.Errorf("board must have %d cells, got %d", Cells, len(cells))
	}
	tree, err := merkle.Build(cells)
	if err != nil {
		return nil, codec.Commitment{}, err
	}
	salted := merkle.Salt(salt, tree.Root())

	var assign BoardCircuit
	for i := range cells {
		assign.Cells[i] = cells[i]
	}
	assign.Salt = bigOf(salt)
	assign.Commitment = bigOf(salted)

	proof, err := prove(p.board, &assign)
	if err != nil {
		return nil, codec.Commitment{}, err
	}
	return proof, codec.CommitmentFromField(salted), nil
}

// ProveHit answers a shot at (row, col) and returns the proof and the result
// (0 miss, 1 hit) it attests to.
func (p *Prover) ProveHit(cells []uint8, salt fr.Element, row, col uint32) ([]byte, uint32, error) {
	if row >= codec.BoardSize || col >= codec.BoardSize {
		return nil, 0, errors.New("row/col out of range")
	}
	if len(cells) != Cells {
		return nil, 0, fmt.Errorf("board must have %d cells, got %d", Cells, len(cells))
	}
	tree, err := merkle.Build(cells)
	if err != nil {
		return nil, 0, err
	}
	idx := codec.CellIndex(row, col)
	path, dir, err := tree.Path(int(idx))
	if err != nil {
		return nil, 0, err
	}
	bit := cells[idx]

	var assign ShotCircuit
	assign.Bit = bit
	for i := 0; i < merkle.Depth; i++ {
		assign.Path[i] = bigOf(path[i])
		assign.Dir[i] = dir[i]
	}
	assign.Salt = bigOf(salt)
	assign.Commitment = bigOf(merkle.Salt(salt, tree.Root()))
	assign.Cell = idx
	assign.Result = bit

	proof, err := prove(p.hit, &assign)
	if err != nil {
		return nil, 0, err
	}
	return proof, uint32(bit), nil
}

func prove(k circuitKeys, assign frontend.Circuit) ([]byte, error) {
	wit, err := frontend.NewWitness(assign, ecc.BN254.ScalarField())
	if err != nil {
		return nil, err
	}
	proof, err := groth16.Prove(k.cs, k.pk, wit)
	if err != nil {
		return nil, err
	}
	return ExportProof(proof)
}

// ExportProof packs a gnark proof into the 128-byte compressed wire form.
func ExportProof(proof groth16.Proof) ([]byte, error) {
	p, ok := proof.(*groth16bn254.Proof)
	if !ok {
		return nil, errors.New("proof is not over BN254")
	}
	if len(p.Commitments) != 0 {
		return nil, errors.New("proofs with commitments cannot be exported")
	}
	wire := verifier.Proof{A: p.Ar, B: p.Bs, C: p.Krs}
	return wire.Bytes(), nil
}

func bigOf(e fr.Element) *big.Int { return e.BigInt(new(big.Int)) }

// --- key IO helpers using io.WriterTo / io.ReaderFrom ---

func writeTo(path string, w io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = w.WriteTo(f)
	return err
}

func readFrom(path string, r io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = r.ReadFrom(f)
	return err
}

package codec

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// FieldSize is the width of one encoded public input (one BN254 scalar).
const FieldSize = 32

// BoardSize is the side length of the square board.
const BoardSize = 10

// Commitment is the 32-byte digest binding a player to a secret board.
type Commitment [FieldSize]byte

func (c Commitment) String() string { return "0x" + hex.EncodeToString(c[:]) }

func (c Commitment) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Commitment) UnmarshalText(b []byte) error {
	parsed, err := ParseCommitment(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCommitment accepts a 64 digit hex string with or without 0x prefix.
func ParseCommitment(s string) (Commitment, error) {
	var c Commitment
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("invalid commitment hex: %w", err)
	}
	if len(raw) != FieldSize {
		return c, fmt.Errorf("commitment must be %d bytes, got %d", FieldSize, len(raw))
	}
	copy(c[:], raw)
	return c, nil
}

// CellIndex packs a board cell into the scalar used by the hit circuit.
func CellIndex(row, col uint32) uint32 { return row*BoardSize + col }

// BoardPublicInputs encodes the single public input of a board-validity proof:
// the commitment, verbatim.
func BoardPublicInputs(c Commitment) []byte {
	out := make([]byte, FieldSize)
	copy(out, c[:])
	return out
}

// HitPublicInputs encodes commitment ‖ cell ‖ result. Changing widths or order
// breaks every deployed prover.
func HitPublicInputs(c Commitment, row, col, result uint32) []byte {
	out := make([]byte, 3*FieldSize)
	copy(out[:FieldSize], c[:])
	putUint32Block(out[FieldSize:2*FieldSize], CellIndex(row, col))
	putUint32Block(out[2*FieldSize:], result)
	return out
}

// putUint32Block writes v little-endian into the first 4 bytes of a zeroed block.
func putUint32Block(block []byte, v uint32) {
	binary.LittleEndian.PutUint32(block[:4], v)
}

var ErrBlockLength = errors.New("public inputs are not a whole number of field blocks")

// Blocks splits encoded public inputs into field-sized blocks.
func Blocks(b []byte) ([][FieldSize]byte, error) {
	if len(b)%FieldSize != 0 {
		return nil, ErrBlockLength
	}
	out := make([][FieldSize]byte, len(b)/FieldSize)
	for i := range out {
		copy(out[i][:], b[i*FieldSize:(i+1)*FieldSize])
	}
	return out, nil
}

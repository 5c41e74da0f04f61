package model

import (
	"github.com/bits-and-blooms/bitset"

	"zkbattleship/internal/codec"
)

type ShotResult uint8

const (
	Pending ShotResult = iota
	Miss
	Hit
)

func (r ShotResult) String() string {
	switch r {
	case Pending:
		return "pending"
	case Miss:
		return "miss"
	case Hit:
		return "hit"
	}
	return "unknown"
}

func (r ShotResult) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// ResultFromClaim maps a proof's public result bit onto a ShotResult.
func ResultFromClaim(claimed uint32) (ShotResult, bool) {
	switch claimed {
	case 0:
		return Miss, true
	case 1:
		return Hit, true
	}
	return Pending, false
}

type ShotRecord struct {
	Row    uint32     `cbor:"1,keyasint" json:"row"`
	Col    uint32     `cbor:"2,keyasint" json:"col"`
	Result ShotResult `cbor:"3,keyasint" json:"result"`
	Proof  []byte     `cbor:"4,keyasint,omitempty" json:"proof,omitempty"`
}

// ShotTally is the per-(game, attacker) companion to the shot sequence: how
// many shots exist and which cells they targeted.
type ShotTally struct {
	Count uint32   `cbor:"1,keyasint"`
	Fired []uint64 `cbor:"2,keyasint,omitempty"`
}

func (t *ShotTally) cells() *bitset.BitSet {
	if len(t.Fired) == 0 {
		return bitset.New(codec.BoardSize * codec.BoardSize)
	}
	return bitset.From(t.Fired)
}

func (t *ShotTally) HasFired(row, col uint32) bool {
	return t.cells().Test(uint(codec.CellIndex(row, col)))
}

// MarkFired records a shot at (row, col) and returns its index.
func (t *ShotTally) MarkFired(row, col uint32) uint32 {
	cells := t.cells()
	cells.Set(uint(codec.CellIndex(row, col)))
	t.Fired = cells.Words()
	idx := t.Count
	t.Count++
	return idx
}

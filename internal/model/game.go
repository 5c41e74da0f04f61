// Package model holds the persisted records of the battleship host.
package model

import "zkbattleship/internal/codec"

// Identity names a player or the host itself. The server uses hex-encoded
// ed25519 public keys; the engine treats identities as opaque.
type Identity string

type Status uint8

const (
	WaitingForOpponent Status = iota
	CommitmentPhase
	Active
	Finished
	Cancelled
)

func (s Status) String() string {
	switch s {
	case WaitingForOpponent:
		return "waiting_for_opponent"
	case CommitmentPhase:
		return "commitment_phase"
	case Active:
		return "active"
	case Finished:
		return "finished"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Game is the top-level record. Optional fields use their zero value for
// "absent": an empty Identity, or a nil Session.
type Game struct {
	ID          uint64   `cbor:"1,keyasint" json:"id"`
	PlayerA     Identity `cbor:"2,keyasint" json:"player_a"`
	PlayerB     Identity `cbor:"3,keyasint,omitempty" json:"player_b,omitempty"`
	Status      Status   `cbor:"4,keyasint" json:"status"`
	CurrentTurn Identity `cbor:"5,keyasint,omitempty" json:"current_turn,omitempty"`
	HitsA       uint32   `cbor:"6,keyasint" json:"hits_a"`
	HitsB       uint32   `cbor:"7,keyasint" json:"hits_b"`
	CommittedA  bool     `cbor:"8,keyasint" json:"committed_a"`
	CommittedB  bool     `cbor:"9,keyasint" json:"committed_b"`
	Winner      Identity `cbor:"10,keyasint,omitempty" json:"winner,omitempty"`
	Session     *uint32  `cbor:"11,keyasint,omitempty" json:"session,omitempty"`
	CreatedAt   uint64   `cbor:"12,keyasint" json:"created_at"`
}

func (g *Game) IsPlayer(p Identity) bool {
	return p != "" && (p == g.PlayerA || p == g.PlayerB)
}

// Opponent returns the other seat, or false if p is not seated.
func (g *Game) Opponent(p Identity) (Identity, bool) {
	switch {
	case p == "":
		return "", false
	case p == g.PlayerA:
		return g.PlayerB, g.PlayerB != ""
	case p == g.PlayerB:
		return g.PlayerA, true
	}
	return "", false
}

// Hits returns a pointer to p's hit counter, or nil if p is not seated.
func (g *Game) Hits(p Identity) *uint32 {
	switch p {
	case g.PlayerA:
		return &g.HitsA
	case g.PlayerB:
		return &g.HitsB
	}
	return nil
}

func (g *Game) Committed(p Identity) *bool {
	switch p {
	case g.PlayerA:
		return &g.CommittedA
	case g.PlayerB:
		return &g.CommittedB
	}
	return nil
}

// BoardCommitment is written once per (game, player).
type BoardCommitment struct {
	Hash         codec.Commitment `cbor:"1,keyasint" json:"hash"`
	Proof        []byte           `cbor:"2,keyasint" json:"proof"`
	PublicInputs []byte           `cbor:"3,keyasint" json:"public_inputs"`
}

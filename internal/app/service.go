// Package app holds the player-side workflows: choosing a board, committing
// to it, answering shots with proofs, and checking the opponent's proofs.
package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"zkbattleship/internal/codec"
	"zkbattleship/internal/game"
	"zkbattleship/internal/verifier"
	"zkbattleship/internal/zk"
)

func InitBoard() (game.Board, error) {
	return game.GenerateRandomBoard()
}

type CommitResult struct {
	Secret  Secret
	Payload codec.CommitmentPayload
}

// Commit salts the board, proves it legal, and returns the secret to keep and
// the payload to submit.
func Commit(p *zk.Prover, b game.Board) (*CommitResult, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	salt, err := newSalt()
	if err != nil {
		return nil, err
	}
	proof, c, err := p.ProveBoard(b.Flatten(), salt)
	if err != nil {
		return nil, fmt.Errorf("could not prove board: %w", err)
	}
	return &CommitResult{
		Secret: Secret{Board: b, Salt: encodeSalt(salt), Commitment: c},
		Payload: codec.CommitmentPayload{
			Commitment:   c,
			Proof:        proof,
			PublicInputs: codec.BoardPublicInputs(c),
		},
	}, nil
}

// Shoot answers the opponent's shot at (row, col) on the secret board.
func Shoot(p *zk.Prover, sec *Secret, row, col uint32) (*codec.HitProofPayload, error) {
	if row >= codec.BoardSize || col >= codec.BoardSize {
		return nil, fmt.Errorf("row/col out of range")
	}
	salt, err := sec.salt()
	if err != nil {
		return nil, err
	}
	proof, result, err := p.ProveHit(sec.Board.Flatten(), salt, row, col)
	if err != nil {
		return nil, fmt.Errorf("could not prove shot: %w", err)
	}
	return &codec.HitProofPayload{Row: row, Col: col, Result: result, Proof: proof}, nil
}

type VerifyResult struct {
	Valid  bool
	Result uint32
}

// VerifyHit checks a shot answer against the defender's commitment.
func VerifyHit(vk *verifier.VerifyingKey, c codec.Commitment, payload *codec.HitProofPayload) (*VerifyResult, error) {
	if payload.Result != 0 && payload.Result != 1 {
		return nil, fmt.Errorf("invalid hit public output %d", payload.Result)
	}
	v := verifier.New(zerolog.Nop())
	ok, err := v.VerifyHitProof(payload.Proof, c, payload.Row, payload.Col, payload.Result, v.Register(vk))
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Valid: ok, Result: payload.Result}, nil
}

// VerifyBoard checks a commitment payload's board proof.
func VerifyBoard(vk *verifier.VerifyingKey, payload *codec.CommitmentPayload) (bool, error) {
	v := verifier.New(zerolog.Nop())
	return v.VerifyBoardProof(payload.Proof, payload.Commitment, v.Register(vk))
}

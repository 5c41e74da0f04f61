package game

import (
	"errors"
	"fmt"

	"zkbattleship/internal/model"
	"zkbattleship/internal/storage"
	"zkbattleship/internal/storage/operation"
)

// Board commitments are keyed by (game, player) and never overwritten. The
// engine checks the submitted flag first; the insert refusing an existing key
// backs that up.

func hasCommitment(r storage.Reader, gameID uint64, player model.Identity) (bool, error) {
	var exists bool
	if err := operation.HasCommitment(gameID, player, &exists)(r); err != nil {
		return false, fmt.Errorf("could not check commitment: %w", err)
	}
	return exists, nil
}

func storeCommitment(tx storage.Tx, gameID uint64, player model.Identity, c *model.BoardCommitment) error {
	err := operation.InsertCommitment(gameID, player, c)(tx)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return ErrCommitmentAlreadySubmitted
	}
	if err != nil {
		return fmt.Errorf("could not store commitment: %w", err)
	}
	return nil
}

func loadCommitment(r storage.Reader, gameID uint64, player model.Identity) (*model.BoardCommitment, error) {
	var c model.BoardCommitment
	err := operation.RetrieveCommitment(gameID, player, &c)(r)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: game %d, player %s", ErrCommitmentNotFound, gameID, player)
	}
	if err != nil {
		return nil, fmt.Errorf("could not load commitment: %w", err)
	}
	return &c, nil
}

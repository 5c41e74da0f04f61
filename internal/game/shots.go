package game

import (
	"errors"
	"fmt"

	"zkbattleship/internal/model"
	"zkbattleship/internal/storage"
	"zkbattleship/internal/storage/operation"
)

// The shot ledger keeps, per (game, attacker), a dense sequence of shot
// records from index 0 and a tally holding the next index and a 100-cell
// occupancy set. Indices are never reused and a record resolves at most once.

// appendShot records a pending shot at the attacker's next index.
func appendShot(tx storage.Tx, gameID uint64, attacker model.Identity, row, col uint32) (uint32, error) {
	var tally model.ShotTally
	if err := operation.RetrieveShotTally(gameID, attacker, &tally)(tx); err != nil {
		return 0, fmt.Errorf("could not load shot tally: %w", err)
	}
	if tally.HasFired(row, col) {
		return 0, fmt.Errorf("%w: (%d, %d)", ErrCellAlreadyFired, row, col)
	}

	index := tally.MarkFired(row, col)
	shot := model.ShotRecord{Row: row, Col: col, Result: model.Pending}
	if err := operation.InsertShot(gameID, attacker, index, &shot)(tx); err != nil {
		return 0, fmt.Errorf("could not store shot: %w", err)
	}
	if err := operation.UpsertShotTally(gameID, attacker, &tally)(tx); err != nil {
		return 0, fmt.Errorf("could not store shot tally: %w", err)
	}
	return index, nil
}

func loadShot(r storage.Reader, gameID uint64, attacker model.Identity, index uint32) (*model.ShotRecord, error) {
	var shot model.ShotRecord
	err := operation.RetrieveShot(gameID, attacker, index, &shot)(r)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: game %d, attacker %s, index %d", ErrShotNotFound, gameID, attacker, index)
	}
	if err != nil {
		return nil, fmt.Errorf("could not load shot: %w", err)
	}
	return &shot, nil
}

// resolveShot fixes the result of a pending shot.
func resolveShot(tx storage.Tx, gameID uint64, attacker model.Identity, index uint32, shot *model.ShotRecord, result model.ShotResult, proof []byte) error {
	if shot.Result != model.Pending {
		return ErrReplayAttack
	}
	shot.Result = result
	shot.Proof = append([]byte(nil), proof...)
	if err := operation.UpdateShot(gameID, attacker, index, shot)(tx); err != nil {
		return fmt.Errorf("could not update shot: %w", err)
	}
	return nil
}

func shotCount(r storage.Reader, gameID uint64, attacker model.Identity) (uint32, error) {
	var tally model.ShotTally
	if err := operation.RetrieveShotTally(gameID, attacker, &tally)(r); err != nil {
		return 0, fmt.Errorf("could not load shot tally: %w", err)
	}
	return tally.Count, nil
}

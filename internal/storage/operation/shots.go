package operation

import (
	"errors"

	"zkbattleship/internal/model"
	"zkbattleship/internal/storage"
)

func InsertShot(gameID uint64, attacker model.Identity, index uint32, shot *model.ShotRecord) func(storage.Tx) error {
	return insert(makePrefix(codeShot, gameID, attacker, index), shot)
}

func UpdateShot(gameID uint64, attacker model.Identity, index uint32, shot *model.ShotRecord) func(storage.Tx) error {
	return update(makePrefix(codeShot, gameID, attacker, index), shot)
}

func RetrieveShot(gameID uint64, attacker model.Identity, index uint32, shot *model.ShotRecord) func(storage.Reader) error {
	return retrieve(makePrefix(codeShot, gameID, attacker, index), shot)
}

// RetrieveShotTally reads the attacker's tally. A missing tally is the empty
// tally: nobody has fired yet.
func RetrieveShotTally(gameID uint64, attacker model.Identity, tally *model.ShotTally) func(storage.Reader) error {
	return func(r storage.Reader) error {
		err := retrieve(makePrefix(codeShotTally, gameID, attacker), tally)(r)
		if errors.Is(err, storage.ErrNotFound) {
			*tally = model.ShotTally{}
			return nil
		}
		return err
	}
}

func UpsertShotTally(gameID uint64, attacker model.Identity, tally *model.ShotTally) func(storage.Tx) error {
	return upsert(makePrefix(codeShotTally, gameID, attacker), tally)
}

package operation

import (
	"zkbattleship/internal/model"
	"zkbattleship/internal/storage"
)

// InsertAdmin records the host administrator. It fails with
// storage.ErrAlreadyExists once the host has been initialized.
func InsertAdmin(admin model.Identity) func(storage.Tx) error {
	return insert(makePrefix(codeAdmin), admin)
}

func RetrieveAdmin(admin *model.Identity) func(storage.Reader) error {
	return retrieve(makePrefix(codeAdmin), admin)
}

// InsertNextGameID seeds the game id counter.
func InsertNextGameID(next uint64) func(storage.Tx) error {
	return insert(makePrefix(codeNextGameID), next)
}

// AllocateGameID returns the next game id and advances the counter in the
// same transaction.
func AllocateGameID(id *uint64) func(storage.Tx) error {
	return func(tx storage.Tx) error {
		var next uint64
		if err := retrieve(makePrefix(codeNextGameID), &next)(tx); err != nil {
			return err
		}
		if err := update(makePrefix(codeNextGameID), next+1)(tx); err != nil {
			return err
		}
		*id = next
		return nil
	}
}

package operation

import (
	"zkbattleship/internal/model"
	"zkbattleship/internal/storage"
)

func InsertGame(game *model.Game) func(storage.Tx) error {
	return insert(makePrefix(codeGame, game.ID), game)
}

func UpdateGame(game *model.Game) func(storage.Tx) error {
	return update(makePrefix(codeGame, game.ID), game)
}

func RetrieveGame(gameID uint64, game *model.Game) func(storage.Reader) error {
	return retrieve(makePrefix(codeGame, gameID), game)
}

func InsertCommitment(gameID uint64, player model.Identity, c *model.BoardCommitment) func(storage.Tx) error {
	return insert(makePrefix(codeCommitment, gameID, player), c)
}

func RetrieveCommitment(gameID uint64, player model.Identity, c *model.BoardCommitment) func(storage.Reader) error {
	return retrieve(makePrefix(codeCommitment, gameID, player), c)
}

func HasCommitment(gameID uint64, player model.Identity, exists *bool) func(storage.Reader) error {
	return check(makePrefix(codeCommitment, gameID, player), exists)
}

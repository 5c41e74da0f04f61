package game

import (
	"zkbattleship/internal/model"
	"zkbattleship/internal/storage"
)

// Game returns a snapshot of the game.
func (e *Engine) Game(gameID uint64) (*model.Game, error) {
	var game *model.Game
	err := e.store.View(func(r storage.Reader) error {
		var err error
		game, err = loadGame(r, gameID)
		return err
	})
	return game, err
}

func (e *Engine) Shot(gameID uint64, attacker model.Identity, index uint32) (*model.ShotRecord, error) {
	var shot *model.ShotRecord
	err := e.store.View(func(r storage.Reader) error {
		var err error
		shot, err = loadShot(r, gameID, attacker, index)
		return err
	})
	return shot, err
}

// ShotCount returns how many shots attacker has fired in the game. It fails
// only if the game does not exist.
func (e *Engine) ShotCount(gameID uint64, attacker model.Identity) (uint32, error) {
	var n uint32
	err := e.store.View(func(r storage.Reader) error {
		if _, err := loadGame(r, gameID); err != nil {
			return err
		}
		var err error
		n, err = shotCount(r, gameID, attacker)
		return err
	})
	return n, err
}

func (e *Engine) Commitment(gameID uint64, player model.Identity) (*model.BoardCommitment, error) {
	var c *model.BoardCommitment
	err := e.store.View(func(r storage.Reader) error {
		var err error
		c, err = loadCommitment(r, gameID, player)
		return err
	})
	return c, err
}

package game

import (
	"strconv"

	"zkbattleship/internal/codec"
	"zkbattleship/internal/model"
)

const (
	EventGameCreated   = "game_created"
	EventPlayerJoined  = "player_joined"
	EventCommitment    = "commitment"
	EventBoardVerified = "board_verified"
	EventShotFired     = "shot_fired"
	EventHitVerified   = "hit_verified"
	EventGameEnded     = "game_ended"
)

// Event is a structured notification for observers. Events are published
// only after the operation that produced them has committed.
type Event struct {
	Type       string            `json:"type"`
	GameID     uint64            `json:"game_id"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func u32(v uint32) string { return strconv.FormatUint(uint64(v), 10) }

func gameCreated(id uint64, playerA model.Identity) Event {
	return Event{Type: EventGameCreated, GameID: id, Attributes: map[string]string{
		"player_a": string(playerA),
	}}
}

func playerJoined(id uint64, playerB model.Identity, session uint32) Event {
	return Event{Type: EventPlayerJoined, GameID: id, Attributes: map[string]string{
		"player_b": string(playerB),
		"session":  u32(session),
	}}
}

func commitmentAccepted(id uint64, player model.Identity, hash codec.Commitment) Event {
	return Event{Type: EventCommitment, GameID: id, Attributes: map[string]string{
		"player": string(player),
		"hash":   hash.String(),
	}}
}

func boardsVerified(id uint64) Event {
	return Event{Type: EventBoardVerified, GameID: id}
}

func shotFired(id uint64, attacker model.Identity, row, col, index uint32) Event {
	return Event{Type: EventShotFired, GameID: id, Attributes: map[string]string{
		"attacker": string(attacker),
		"row":      u32(row),
		"col":      u32(col),
		"index":    u32(index),
	}}
}

func hitVerified(id uint64, defender model.Identity, index uint32, result model.ShotResult) Event {
	return Event{Type: EventHitVerified, GameID: id, Attributes: map[string]string{
		"defender": string(defender),
		"index":    u32(index),
		"result":   result.String(),
	}}
}

// gameEnded is published when the final hit lands ("winner") and again on
// every EndGame call ("final").
func gameEnded(id uint64, winner model.Identity, reason string) Event {
	return Event{Type: EventGameEnded, GameID: id, Attributes: map[string]string{
		"winner": string(winner),
		"reason": reason,
	}}
}

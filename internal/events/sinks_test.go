package events

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkbattleship/internal/game"
)

func ev(id uint64, typ string) game.Event {
	return game.Event{Type: typ, GameID: id}
}

func TestFeedKeepsRecentEvents(t *testing.T) {
	f, err := NewFeed(2, 3)
	require.NoError(t, err)

	for _, typ := range []string{"a", "b", "c", "d"} {
		f.Publish(ev(1, typ))
	}
	got := f.Recent(1)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].Type)
	assert.Equal(t, "d", got[2].Type)

	// returned slices are copies
	got[0].Type = "x"
	assert.Equal(t, "b", f.Recent(1)[0].Type)
}

func TestFeedEvictsIdleGames(t *testing.T) {
	f, err := NewFeed(2, 8)
	require.NoError(t, err)

	f.Publish(ev(1, game.EventGameCreated))
	f.Publish(ev(2, game.EventGameCreated))
	f.Publish(ev(1, game.EventPlayerJoined))
	f.Publish(ev(3, game.EventGameCreated))

	assert.Len(t, f.Recent(1), 2)
	assert.Empty(t, f.Recent(2))
	assert.Len(t, f.Recent(3), 1)
}

func TestLogAndMulti(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFeed(4, 4)
	require.NoError(t, err)

	sink := Multi{NewLog(zerolog.New(&buf)), f}
	sink.Publish(game.Event{Type: game.EventShotFired, GameID: 9, Attributes: map[string]string{"row": "3"}})

	assert.Contains(t, buf.String(), `"type":"shot_fired"`)
	assert.Contains(t, buf.String(), `"row":"3"`)
	assert.Len(t, f.Recent(9), 1)
}

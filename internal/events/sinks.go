// Package events delivers engine events to observers: the log, and an
// in-memory feed of recent events per game served over HTTP.
package events

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"zkbattleship/internal/game"
)

// Log writes every event as one structured Info line.
type Log struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log.With().Str("component", "events").Logger()}
}

func (l *Log) Publish(ev game.Event) {
	entry := l.log.Info().Str("type", ev.Type).Uint64("game_id", ev.GameID)
	for k, v := range ev.Attributes {
		entry = entry.Str(k, v)
	}
	entry.Msg("event")
}

// Multi publishes to each sink in order.
type Multi []game.EventSink

func (m Multi) Publish(ev game.Event) {
	for _, s := range m {
		s.Publish(ev)
	}
}

// Feed keeps the last perGame events of the most recently active games.
type Feed struct {
	mu      sync.Mutex
	perGame int
	games   *lru.Cache[uint64, []game.Event]
}

func NewFeed(games, perGame int) (*Feed, error) {
	c, err := lru.New[uint64, []game.Event](games)
	if err != nil {
		return nil, err
	}
	return &Feed{perGame: perGame, games: c}, nil
}

func (f *Feed) Publish(ev game.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	evs, _ := f.games.Get(ev.GameID)
	evs = append(evs, ev)
	if len(evs) > f.perGame {
		evs = append([]game.Event(nil), evs[len(evs)-f.perGame:]...)
	}
	f.games.Add(ev.GameID, evs)
}

// Recent returns the retained events of a game, oldest first.
func (f *Feed) Recent(gameID uint64) []game.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	evs, _ := f.games.Peek(gameID)
	return append([]game.Event(nil), evs...)
}

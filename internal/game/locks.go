package game

import "sync"

// gameLocks serializes operations per game id. Entries are dropped when the
// last holder releases, so idle games cost nothing.
type gameLocks struct {
	mu    sync.Mutex
	locks map[uint64]*gameLock
}

type gameLock struct {
	sync.Mutex
	refs int
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[uint64]*gameLock)}
}

func (l *gameLocks) lock(id uint64) (unlock func()) {
	l.mu.Lock()
	gl, ok := l.locks[id]
	if !ok {
		gl = &gameLock{}
		l.locks[id] = gl
	}
	gl.refs++
	l.mu.Unlock()

	gl.Lock()
	return func() {
		gl.Unlock()
		l.mu.Lock()
		gl.refs--
		if gl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

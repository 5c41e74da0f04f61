// Package game runs the battleship protocol: seating two players, admitting
// their board commitments, sequencing shots and proofs, and declaring a
// winner. Every state-changing operation runs as one storage transaction
// under a per-game lock and writes nothing when it is rejected.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"zkbattleship/internal/codec"
	"zkbattleship/internal/model"
	"zkbattleship/internal/storage"
	"zkbattleship/internal/storage/operation"
)

// TotalShipCells is the number of hits that sinks a fleet (5+4+3+3+2).
const TotalShipCells = 17

type Config struct {
	// Self is the identity the host reports to the score registry.
	Self model.Identity
	Keys Keys
}

type Option func(*Engine)

func WithEvents(sink EventSink) Option { return func(e *Engine) { e.events = sink } }

func WithMetrics(m Metrics) Option { return func(e *Engine) { e.metrics = m } }

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

type Engine struct {
	log      zerolog.Logger
	store    storage.Store
	verifier ProofVerifier
	hub      ScoreRegistry
	auth     Authenticator
	events   EventSink
	metrics  Metrics
	now      func() time.Time
	cfg      Config

	locks *gameLocks
	alloc sync.Mutex // guards initialization and id allocation
}

func New(log zerolog.Logger, store storage.Store, v ProofVerifier, hub ScoreRegistry, auth Authenticator, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		log:      log.With().Str("component", "game").Logger(),
		store:    store,
		verifier: v,
		hub:      hub,
		auth:     auth,
		events:   noopEvents{},
		metrics:  noopMetrics{},
		now:      time.Now,
		cfg:      cfg,
		locks:    newGameLocks(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type emitFunc func(Event)

// transact runs fn in a single transaction and returns the events it emitted.
// The event list is rebuilt if the store re-runs fn.
func (e *Engine) transact(fn func(tx storage.Tx, emit emitFunc) error) ([]Event, error) {
	var events []Event
	err := e.store.Update(func(tx storage.Tx) error {
		events = events[:0]
		return fn(tx, func(ev Event) { events = append(events, ev) })
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// apply runs fn under the game's lock and publishes its events once committed.
func (e *Engine) apply(op string, gameID uint64, fn func(tx storage.Tx, emit emitFunc) error) error {
	unlock := e.locks.lock(gameID)
	defer unlock()

	events, err := e.transact(fn)
	e.observe(op, gameID, err)
	if err != nil {
		return err
	}
	e.publish(events)
	return nil
}

func (e *Engine) publish(events []Event) {
	for _, ev := range events {
		e.events.Publish(ev)
	}
}

func (e *Engine) observe(op string, gameID uint64, err error) {
	code, _ := CodeOf(err)
	e.metrics.OperationCompleted(op, code, err == nil)
	if err != nil {
		e.log.Debug().Str("op", op).Uint64("game_id", gameID).Uint32("code", uint32(code)).Err(err).Msg("operation rejected")
		return
	}
	e.log.Info().Str("op", op).Uint64("game_id", gameID).Msg("operation applied")
}

func (e *Engine) requireCaller(ctx context.Context, id model.Identity) error {
	if id == "" {
		return fmt.Errorf("%w: empty identity", ErrNotAuthorized)
	}
	err := e.auth.RequireCallerIs(ctx, id)
	if err == nil || errors.Is(err, ErrNotAuthorized) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrNotAuthorized, err)
}

func requireInitialized(r storage.Reader) error {
	var admin model.Identity
	err := operation.RetrieveAdmin(&admin)(r)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotInitialized
	}
	if err != nil {
		return fmt.Errorf("could not load admin: %w", err)
	}
	return nil
}

func loadGame(r storage.Reader, gameID uint64) (*model.Game, error) {
	var g model.Game
	err := operation.RetrieveGame(gameID, &g)(r)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrGameNotFound, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("could not load game: %w", err)
	}
	return &g, nil
}

// load is the common prologue of every game operation.
func (e *Engine) load(ctx context.Context, tx storage.Tx, caller model.Identity, gameID uint64) (*model.Game, error) {
	if err := e.requireCaller(ctx, caller); err != nil {
		return nil, err
	}
	if err := requireInitialized(tx); err != nil {
		return nil, err
	}
	return loadGame(tx, gameID)
}

// Initialize records the administrator and starts game ids at 1. It can only
// succeed once per store.
func (e *Engine) Initialize(ctx context.Context, admin model.Identity) error {
	e.alloc.Lock()
	defer e.alloc.Unlock()

	_, err := e.transact(func(tx storage.Tx, _ emitFunc) error {
		if err := e.requireCaller(ctx, admin); err != nil {
			return err
		}
		err := operation.InsertAdmin(admin)(tx)
		if errors.Is(err, storage.ErrAlreadyExists) {
			return ErrAlreadyInitialized
		}
		if err != nil {
			return fmt.Errorf("could not store admin: %w", err)
		}
		return operation.InsertNextGameID(1)(tx)
	})
	e.observe("initialize", 0, err)
	return err
}

func (e *Engine) CreateGame(ctx context.Context, playerA model.Identity) (uint64, error) {
	e.alloc.Lock()
	defer e.alloc.Unlock()

	var id uint64
	events, err := e.transact(func(tx storage.Tx, emit emitFunc) error {
		if err := e.requireCaller(ctx, playerA); err != nil {
			return err
		}
		if err := requireInitialized(tx); err != nil {
			return err
		}
		if err := operation.AllocateGameID(&id)(tx); err != nil {
			return fmt.Errorf("could not allocate game id: %w", err)
		}
		game := model.Game{
			ID:        id,
			PlayerA:   playerA,
			Status:    model.WaitingForOpponent,
			CreatedAt: uint64(e.now().Unix()),
		}
		err := operation.InsertGame(&game)(tx)
		if errors.Is(err, storage.ErrAlreadyExists) {
			return fmt.Errorf("%w: %d", ErrGameAlreadyExists, id)
		}
		if err != nil {
			return fmt.Errorf("could not store game: %w", err)
		}
		emit(gameCreated(id, playerA))
		return nil
	})
	e.observe("create_game", id, err)
	if err != nil {
		return 0, err
	}
	e.publish(events)
	return id, nil
}

func (e *Engine) JoinGame(ctx context.Context, gameID uint64, playerB model.Identity) error {
	return e.apply("join_game", gameID, func(tx storage.Tx, emit emitFunc) error {
		game, err := e.load(ctx, tx, playerB, gameID)
		if err != nil {
			return err
		}
		if game.Status != model.WaitingForOpponent {
			return fmt.Errorf("%w: game is %s", ErrInvalidGameStatus, game.Status)
		}
		if playerB == game.PlayerA {
			return ErrSelfPlay
		}

		session := SessionID(gameID)
		game.PlayerB = playerB
		game.Status = model.CommitmentPhase
		game.Session = &session
		if err := operation.UpdateGame(game)(tx); err != nil {
			return fmt.Errorf("could not update game: %w", err)
		}

		if err := e.hub.NotifyStart(ctx, e.cfg.Self, session, game.PlayerA, playerB, 0, 0); err != nil {
			return fmt.Errorf("%w: start: %v", ErrScoreRegistryUnavailable, err)
		}
		emit(playerJoined(gameID, playerB, session))
		return nil
	})
}

// SubmitCommitment admits a player's board commitment once its validity proof
// checks out. The second accepted commitment activates the game with player A
// to move.
func (e *Engine) SubmitCommitment(ctx context.Context, gameID uint64, player model.Identity, hash codec.Commitment, proof, publicInputs []byte) error {
	return e.apply("submit_commitment", gameID, func(tx storage.Tx, emit emitFunc) error {
		game, err := e.load(ctx, tx, player, gameID)
		if err != nil {
			return err
		}
		if game.Status != model.CommitmentPhase {
			return fmt.Errorf("%w: game is %s", ErrInvalidGameStatus, game.Status)
		}
		committed := game.Committed(player)
		if !game.IsPlayer(player) || committed == nil {
			return ErrNotAuthorized
		}
		if *committed {
			return ErrCommitmentAlreadySubmitted
		}
		exists, err := hasCommitment(tx, gameID, player)
		if err != nil {
			return err
		}
		if exists {
			return ErrCommitmentAlreadySubmitted
		}

		if err := e.checkBoardProof(proof, hash); err != nil {
			return err
		}

		c := model.BoardCommitment{
			Hash:         hash,
			Proof:        append([]byte(nil), proof...),
			PublicInputs: append([]byte(nil), publicInputs...),
		}
		if err := storeCommitment(tx, gameID, player, &c); err != nil {
			return err
		}
		*committed = true
		emit(commitmentAccepted(gameID, player, hash))

		if game.CommittedA && game.CommittedB {
			game.Status = model.Active
			game.CurrentTurn = game.PlayerA
			emit(boardsVerified(gameID))
		}
		if err := operation.UpdateGame(game)(tx); err != nil {
			return fmt.Errorf("could not update game: %w", err)
		}
		return nil
	})
}

// FireShot records a pending shot by the player to move and returns its index
// in the attacker's shot sequence. The turn does not change until the
// defender resolves the shot.
func (e *Engine) FireShot(ctx context.Context, gameID uint64, attacker model.Identity, row, col uint32) (uint32, error) {
	var index uint32
	err := e.apply("fire_shot", gameID, func(tx storage.Tx, emit emitFunc) error {
		game, err := e.load(ctx, tx, attacker, gameID)
		if err != nil {
			return err
		}
		if game.Status != model.Active {
			return fmt.Errorf("%w: game is %s", ErrGameNotActive, game.Status)
		}
		if attacker != game.CurrentTurn {
			return ErrNotYourTurn
		}
		if row >= codec.BoardSize || col >= codec.BoardSize {
			return fmt.Errorf("%w: (%d, %d)", ErrInvalidCell, row, col)
		}

		index, err = appendShot(tx, gameID, attacker, row, col)
		if err != nil {
			return err
		}
		emit(shotFired(gameID, attacker, row, col, index))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// SubmitHitProof resolves the attacker's outstanding shot with the defender's
// hit/miss proof. The turn then passes to the defender, hit or miss, unless
// the shot was the attacker's final hit.
func (e *Engine) SubmitHitProof(ctx context.Context, gameID uint64, defender model.Identity, shotIndex, claimedResult uint32, proof []byte) error {
	var finished bool
	err := e.apply("submit_hit_proof", gameID, func(tx storage.Tx, emit emitFunc) error {
		game, err := e.load(ctx, tx, defender, gameID)
		if err != nil {
			return err
		}
		if game.Status != model.Active {
			return fmt.Errorf("%w: game is %s", ErrGameNotActive, game.Status)
		}
		attacker, ok := game.Opponent(defender)
		if !ok {
			return ErrNotAuthorized
		}
		if game.CurrentTurn != attacker {
			return ErrNotYourTurn
		}

		shot, err := loadShot(tx, gameID, attacker, shotIndex)
		if err != nil {
			return err
		}
		if shot.Result != model.Pending {
			return ErrReplayAttack
		}
		result, ok := model.ResultFromClaim(claimedResult)
		if !ok {
			return fmt.Errorf("%w: result must be 0 or 1, got %d", ErrInvalidProof, claimedResult)
		}

		board, err := loadCommitment(tx, gameID, defender)
		if err != nil {
			return err
		}
		if err := e.checkHitProof(proof, board.Hash, shot.Row, shot.Col, claimedResult); err != nil {
			return err
		}

		if err := resolveShot(tx, gameID, attacker, shotIndex, shot, result, proof); err != nil {
			return err
		}
		emit(hitVerified(gameID, defender, shotIndex, result))

		hits := game.Hits(attacker)
		if result == model.Hit {
			*hits++
		}
		if *hits >= TotalShipCells {
			game.Status = model.Finished
			game.Winner = attacker
			game.CurrentTurn = ""
			if game.Session != nil {
				if err := e.hub.NotifyEnd(ctx, *game.Session, attacker); err != nil {
					return fmt.Errorf("%w: end: %v", ErrScoreRegistryUnavailable, err)
				}
			}
			emit(gameEnded(gameID, attacker, "winner"))
		} else {
			game.CurrentTurn = defender
		}

		if err := operation.UpdateGame(game)(tx); err != nil {
			return fmt.Errorf("could not update game: %w", err)
		}
		finished = game.Status == model.Finished
		return nil
	})
	if err == nil && finished {
		e.metrics.GameFinished()
	}
	return err
}

// EndGame lets the winner re-send the end-of-session notification, in case
// the one sent when the game finished was lost. It changes no state.
func (e *Engine) EndGame(ctx context.Context, gameID uint64, caller model.Identity) error {
	return e.apply("end_game", gameID, func(tx storage.Tx, emit emitFunc) error {
		game, err := e.load(ctx, tx, caller, gameID)
		if err != nil {
			return err
		}
		if game.Status != model.Finished {
			return fmt.Errorf("%w: game is %s", ErrInvalidGameStatus, game.Status)
		}
		if caller != game.Winner {
			return ErrNotAuthorized
		}
		if game.Session != nil {
			if err := e.hub.NotifyEnd(ctx, *game.Session, game.Winner); err != nil {
				return fmt.Errorf("%w: end: %v", ErrScoreRegistryUnavailable, err)
			}
		}
		emit(gameEnded(gameID, caller, "final"))
		return nil
	})
}

func (e *Engine) checkBoardProof(proof []byte, hash codec.Commitment) error {
	start := time.Now()
	ok, err := e.verifier.VerifyBoardProof(proof, hash, e.cfg.Keys.Board)
	e.metrics.ProofVerified("board", ok, time.Since(start))
	if err != nil {
		return fmt.Errorf("board proof: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: board proof rejected", ErrInvalidProof)
	}
	return nil
}

func (e *Engine) checkHitProof(proof []byte, hash codec.Commitment, row, col, result uint32) error {
	start := time.Now()
	ok, err := e.verifier.VerifyHitProof(proof, hash, row, col, result, e.cfg.Keys.Hit)
	e.metrics.ProofVerified("hit", ok, time.Since(start))
	if err != nil {
		return fmt.Errorf("hit proof: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: hit proof rejected", ErrInvalidProof)
	}
	return nil
}

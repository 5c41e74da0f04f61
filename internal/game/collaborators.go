package game

import (
	"context"
	"time"

	"zkbattleship/internal/codec"
	"zkbattleship/internal/model"
	"zkbattleship/internal/verifier"
)

// ProofVerifier is satisfied by *verifier.Verifier. A false result with a nil
// error means the proof was well formed but does not verify.
type ProofVerifier interface {
	VerifyBoardProof(proof []byte, c codec.Commitment, ref verifier.KeyRef) (bool, error)
	VerifyHitProof(proof []byte, c codec.Commitment, row, col, result uint32, ref verifier.KeyRef) (bool, error)
}

// Keys selects the verification key for each proof kind.
type Keys struct {
	Board verifier.KeyRef
	Hit   verifier.KeyRef
}

// ScoreRegistry is the external gateway told about session start and end.
// Calls are synchronous: an error aborts the triggering operation.
type ScoreRegistry interface {
	NotifyStart(ctx context.Context, self model.Identity, session uint32, playerA, playerB model.Identity, scoreA, scoreB int64) error
	NotifyEnd(ctx context.Context, session uint32, winner model.Identity) error
}

// Authenticator proves that the caller behind ctx controls identity.
type Authenticator interface {
	RequireCallerIs(ctx context.Context, identity model.Identity) error
}

type EventSink interface {
	Publish(Event)
}

type Metrics interface {
	OperationCompleted(op string, code Code, ok bool)
	ProofVerified(kind string, valid bool, d time.Duration)
	GameFinished()
}

// SessionID derives the score-registry session from a game id by keeping the
// low 32 bits. Ids past 2^32 collide with earlier sessions.
func SessionID(gameID uint64) uint32 {
	return uint32(gameID & 0xFFFFFFFF)
}

type noopEvents struct{}

func (noopEvents) Publish(Event) {}

type noopMetrics struct{}

func (noopMetrics) OperationCompleted(string, Code, bool)     {}
func (noopMetrics) ProofVerified(string, bool, time.Duration) {}
func (noopMetrics) GameFinished()                             {}

package game

import (
	"errors"

	"zkbattleship/internal/verifier"
)

// Code is the stable numeric identity of an error kind. Values are part of
// the external contract and are never renumbered.
type Code uint32

const (
	CodeNotInitialized             Code = 1
	CodeAlreadyInitialized         Code = 2
	CodeGameNotFound               Code = 3
	CodeGameAlreadyExists          Code = 4
	CodeNotAuthorized              Code = 5
	CodeInvalidGameStatus          Code = 6
	CodeCommitmentAlreadySubmitted Code = 8
	CodeCommitmentNotFound         Code = 9
	CodeNotYourTurn                Code = 12
	CodeInvalidCell                Code = 13
	CodeCellAlreadyFired           Code = 14
	CodeShotNotFound               Code = 15
	CodeGameNotActive              Code = 16
	CodeInvalidProof               Code = 17
	CodeSelfPlay                   Code = 18
	CodeReplayAttack               Code = 21
	CodeScoreRegistryUnavailable   Code = 22

	CodeInvalidProofLength        Code = 101
	CodeInvalidPublicInputsLength Code = 102
	CodeInvalidPointEncoding      Code = 104
	CodeUnknownVerificationKey    Code = 105
)

var (
	ErrNotInitialized             = errors.New("not initialized")
	ErrAlreadyInitialized         = errors.New("already initialized")
	ErrGameNotFound               = errors.New("game not found")
	ErrGameAlreadyExists          = errors.New("game already exists")
	ErrNotAuthorized              = errors.New("not authorized")
	ErrInvalidGameStatus          = errors.New("invalid game status")
	ErrCommitmentAlreadySubmitted = errors.New("commitment already submitted")
	ErrCommitmentNotFound         = errors.New("commitment not found")
	ErrNotYourTurn                = errors.New("not your turn")
	ErrInvalidCell                = errors.New("invalid cell")
	ErrCellAlreadyFired           = errors.New("cell already fired")
	ErrShotNotFound               = errors.New("shot not found")
	ErrGameNotActive              = errors.New("game not active")
	ErrInvalidProof               = errors.New("invalid proof")
	ErrSelfPlay                   = errors.New("cannot play against yourself")
	ErrReplayAttack               = errors.New("shot already resolved")
	ErrScoreRegistryUnavailable   = errors.New("score registry unavailable")
)

var codes = []struct {
	err  error
	code Code
}{
	{ErrNotInitialized, CodeNotInitialized},
	{ErrAlreadyInitialized, CodeAlreadyInitialized},
	{ErrGameNotFound, CodeGameNotFound},
	{ErrGameAlreadyExists, CodeGameAlreadyExists},
	{ErrNotAuthorized, CodeNotAuthorized},
	{ErrInvalidGameStatus, CodeInvalidGameStatus},
	{ErrCommitmentAlreadySubmitted, CodeCommitmentAlreadySubmitted},
	{ErrCommitmentNotFound, CodeCommitmentNotFound},
	{ErrNotYourTurn, CodeNotYourTurn},
	{ErrInvalidCell, CodeInvalidCell},
	{ErrCellAlreadyFired, CodeCellAlreadyFired},
	{ErrShotNotFound, CodeShotNotFound},
	{ErrGameNotActive, CodeGameNotActive},
	{ErrInvalidProof, CodeInvalidProof},
	{ErrSelfPlay, CodeSelfPlay},
	{ErrReplayAttack, CodeReplayAttack},
	{ErrScoreRegistryUnavailable, CodeScoreRegistryUnavailable},
	{verifier.ErrInvalidProofLength, CodeInvalidProofLength},
	{verifier.ErrInvalidPublicInputsLength, CodeInvalidPublicInputsLength},
	{verifier.ErrInvalidPointEncoding, CodeInvalidPointEncoding},
	{verifier.ErrUnknownKey, CodeUnknownVerificationKey},
}

// CodeOf returns the code of the first known kind err wraps.
func CodeOf(err error) (Code, bool) {
	if err == nil {
		return 0, false
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code, true
		}
	}
	return 0, false
}

// Temporary reports whether the rejection may succeed later without the
// caller changing anything, e.g. once the opponent has moved.
func Temporary(err error) bool {
	code, _ := CodeOf(err)
	switch code {
	case CodeNotYourTurn, CodeGameNotActive, CodeInvalidGameStatus, CodeScoreRegistryUnavailable:
		return true
	}
	return false
}

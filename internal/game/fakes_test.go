package game

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"zkbattleship/internal/codec"
	"zkbattleship/internal/model"
	"zkbattleship/internal/verifier"
)

var (
	validProof = bytes.Repeat([]byte{7}, verifier.ProofSize)
	bogusProof = bytes.Repeat([]byte{9}, verifier.ProofSize)
)

// fakeVerifier stands in for the pairing check. It knows every registered
// board, so it accepts a hit proof only when the claimed result is the truth.
type fakeVerifier struct {
	mu     sync.Mutex
	boards map[codec.Commitment][]uint8
	calls  int
}

func newFakeVerifier() *fakeVerifier {
	return &fakeVerifier{boards: make(map[codec.Commitment][]uint8)}
}

func (f *fakeVerifier) register(c codec.Commitment, cells []uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.boards[c] = cells
}

func (f *fakeVerifier) check(proof []byte) (bool, error) {
	f.calls++
	if len(proof) != verifier.ProofSize {
		return false, fmt.Errorf("%w: got %d bytes", verifier.ErrInvalidProofLength, len(proof))
	}
	return bytes.Equal(proof, validProof), nil
}

func (f *fakeVerifier) VerifyBoardProof(proof []byte, c codec.Commitment, _ verifier.KeyRef) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ok, err := f.check(proof)
	if err != nil || !ok {
		return ok, err
	}
	_, known := f.boards[c]
	return known, nil
}

func (f *fakeVerifier) VerifyHitProof(proof []byte, c codec.Commitment, row, col, result uint32, _ verifier.KeyRef) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ok, err := f.check(proof)
	if err != nil || !ok {
		return ok, err
	}
	cells, known := f.boards[c]
	if !known {
		return false, nil
	}
	return uint32(cells[codec.CellIndex(row, col)]) == result, nil
}

type startCall struct {
	self           model.Identity
	session        uint32
	playerA        model.Identity
	playerB        model.Identity
	scoreA, scoreB int64
}

type endCall struct {
	session uint32
	winner  model.Identity
}

type recordingHub struct {
	mu     sync.Mutex
	starts []startCall
	ends   []endCall
	err    error
}

func (h *recordingHub) NotifyStart(_ context.Context, self model.Identity, session uint32, a, b model.Identity, scoreA, scoreB int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.starts = append(h.starts, startCall{self, session, a, b, scoreA, scoreB})
	return nil
}

func (h *recordingHub) NotifyEnd(_ context.Context, session uint32, winner model.Identity) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.ends = append(h.ends, endCall{session, winner})
	return nil
}

func (h *recordingHub) fail(err error) {
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
}

type callerKey struct{}

func as(id model.Identity) context.Context {
	return context.WithValue(context.Background(), callerKey{}, id)
}

// ctxAuth accepts a call when the context carries the required identity.
type ctxAuth struct{}

func (ctxAuth) RequireCallerIs(ctx context.Context, id model.Identity) error {
	caller, _ := ctx.Value(callerKey{}).(model.Identity)
	if caller != id {
		return fmt.Errorf("caller %q is not %q", caller, id)
	}
	return nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingEvents) Publish(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recordingEvents) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

type countingMetrics struct {
	mu       sync.Mutex
	ops      map[string]int
	rejected map[Code]int
	verified int
	finished int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{ops: make(map[string]int), rejected: make(map[Code]int)}
}

func (m *countingMetrics) OperationCompleted(op string, code Code, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.ops[op]++
		return
	}
	m.rejected[code]++
}

func (m *countingMetrics) ProofVerified(string, bool, time.Duration) {
	m.mu.Lock()
	m.verified++
	m.mu.Unlock()
}

func (m *countingMetrics) GameFinished() {
	m.mu.Lock()
	m.finished++
	m.mu.Unlock()
}

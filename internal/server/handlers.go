package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"zkbattleship/internal/auth"
	"zkbattleship/internal/codec"
	"zkbattleship/internal/game"
	"zkbattleship/internal/model"
)

const maxBody = 1 << 20

type errorBody struct {
	Error     string    `json:"error"`
	Code      game.Code `json:"code,omitempty"`
	Temporary bool      `json:"temporary,omitempty"`
}

// statusOf maps an engine error to an HTTP status.
func statusOf(code game.Code) int {
	switch code {
	case game.CodeNotAuthorized:
		return http.StatusForbidden
	case game.CodeGameNotFound, game.CodeShotNotFound, game.CodeCommitmentNotFound:
		return http.StatusNotFound
	case game.CodeScoreRegistryUnavailable:
		return http.StatusServiceUnavailable
	case game.CodeNotInitialized, game.CodeAlreadyInitialized, game.CodeGameAlreadyExists,
		game.CodeInvalidGameStatus, game.CodeCommitmentAlreadySubmitted, game.CodeNotYourTurn,
		game.CodeCellAlreadyFired, game.CodeGameNotActive, game.CodeReplayAttack:
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, ok := game.CodeOf(err)
	if !ok {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, statusOf(code), errorBody{Error: err.Error(), Code: code, Temporary: game.Temporary(err)})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// caller is the verified signer, or "" for unsigned requests. The engine
// refuses the empty identity.
func caller(r *http.Request) model.Identity {
	id, _ := auth.CallerFrom(r.Context())
	return id
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		badRequest(w, "bad json: "+err.Error())
		return false
	}
	return true
}

func gameID(r *http.Request) uint64 {
	// the route pattern only admits digits
	id, _ := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	return id
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Initialize(r.Context(), caller(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"admin": caller(r)})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, err := s.engine.CreateGame(r.Context(), caller(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.JoinGame(r.Context(), gameID(r), caller(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGame(w, r)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req codec.CommitmentPayload
	if !decode(w, r, &req) {
		return
	}
	err := s.engine.SubmitCommitment(r.Context(), gameID(r), caller(r), req.Commitment, req.Proof, req.PublicInputs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGame(w, r)
}

type fireRequest struct {
	Row uint32 `json:"row"`
	Col uint32 `json:"col"`
}

func (s *Server) handleFire(w http.ResponseWriter, r *http.Request) {
	var req fireRequest
	if !decode(w, r, &req) {
		return
	}
	idx, err := s.engine.FireShot(r.Context(), gameID(r), caller(r), req.Row, req.Col)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"index": idx})
}

type proveRequest struct {
	Index  uint32 `json:"index"`
	Result uint32 `json:"result"` // 0 miss, 1 hit
	Proof  []byte `json:"proof"`
}

func (s *Server) handleProve(w http.ResponseWriter, r *http.Request) {
	var req proveRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.engine.SubmitHitProof(r.Context(), gameID(r), caller(r), req.Index, req.Result, req.Proof); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGame(w, r)
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.EndGame(r.Context(), gameID(r), caller(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGame(w, r)
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.engine.Game(gameID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleCommitment(w http.ResponseWriter, r *http.Request) {
	c, err := s.engine.Commitment(gameID(r), model.Identity(mux.Vars(r)["player"]))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleShotCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.engine.ShotCount(gameID(r), model.Identity(mux.Vars(r)["player"]))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": n})
}

func (s *Server) handleShot(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.ParseUint(mux.Vars(r)["index"], 10, 32)
	if err != nil {
		badRequest(w, "shot index out of range")
		return
	}
	shot, err := s.engine.Shot(gameID(r), model.Identity(mux.Vars(r)["player"]), uint32(idx))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shot)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "event feed disabled"})
		return
	}
	id := gameID(r)
	if _, err := s.engine.Game(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": s.feed.Recent(id)})
}

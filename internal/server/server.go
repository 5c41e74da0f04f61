// Package server exposes the game engine over a JSON HTTP API. Callers sign
// requests (see package auth); the verified signer is the acting player.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"zkbattleship/internal/auth"
	"zkbattleship/internal/codec"
	"zkbattleship/internal/game"
	"zkbattleship/internal/model"
)

// Engine is the subset of *game.Engine the API drives.
type Engine interface {
	Initialize(ctx context.Context, admin model.Identity) error
	CreateGame(ctx context.Context, playerA model.Identity) (uint64, error)
	JoinGame(ctx context.Context, gameID uint64, playerB model.Identity) error
	SubmitCommitment(ctx context.Context, gameID uint64, player model.Identity, hash codec.Commitment, proof, publicInputs []byte) error
	FireShot(ctx context.Context, gameID uint64, attacker model.Identity, row, col uint32) (uint32, error)
	SubmitHitProof(ctx context.Context, gameID uint64, defender model.Identity, shotIndex, claimedResult uint32, proof []byte) error
	EndGame(ctx context.Context, gameID uint64, caller model.Identity) error

	Game(gameID uint64) (*model.Game, error)
	Shot(gameID uint64, attacker model.Identity, index uint32) (*model.ShotRecord, error)
	ShotCount(gameID uint64, attacker model.Identity) (uint32, error)
	Commitment(gameID uint64, player model.Identity) (*model.BoardCommitment, error)
}

var _ Engine = (*game.Engine)(nil)

// EventFeed serves the recent events of a game.
type EventFeed interface {
	Recent(gameID uint64) []game.Event
}

type RequestObserver interface {
	RequestServed(route string, status int, d time.Duration)
}

type Option func(*Server)

func WithFeed(f EventFeed) Option { return func(s *Server) { s.feed = f } }

func WithObserver(o RequestObserver) Option { return func(s *Server) { s.observer = o } }

// WithAllowedOrigins restricts CORS; the default allows any origin.
func WithAllowedOrigins(origins []string) Option { return func(s *Server) { s.origins = origins } }

type Server struct {
	log      zerolog.Logger
	engine   Engine
	feed     EventFeed
	observer RequestObserver
	origins  []string
	started  time.Time
}

func New(log zerolog.Logger, engine Engine, opts ...Option) *Server {
	s := &Server{
		log:     log.With().Str("component", "server").Logger(),
		engine:  engine,
		origins: []string{"*"},
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the full middleware chain around the API routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.Routes(r)
	r.Use(s.observe)

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", auth.HeaderIdentity, auth.HeaderSignature, HeaderRequestID},
		ExposedHeaders: []string{HeaderRequestID},
	})
	return c.Handler(s.requestID(auth.Middleware(s.log)(r)))
}

func (s *Server) Routes(r *mux.Router) {
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/init", s.handleInit).Methods(http.MethodPost)
	v1.HandleFunc("/games", s.handleCreate).Methods(http.MethodPost)
	v1.HandleFunc("/games/{id:[0-9]+}", s.handleGame).Methods(http.MethodGet)
	v1.HandleFunc("/games/{id:[0-9]+}/join", s.handleJoin).Methods(http.MethodPost)
	v1.HandleFunc("/games/{id:[0-9]+}/commitments", s.handleCommit).Methods(http.MethodPost)
	v1.HandleFunc("/games/{id:[0-9]+}/commitments/{player}", s.handleCommitment).Methods(http.MethodGet)
	v1.HandleFunc("/games/{id:[0-9]+}/shots", s.handleFire).Methods(http.MethodPost)
	v1.HandleFunc("/games/{id:[0-9]+}/shots/{player}", s.handleShotCount).Methods(http.MethodGet)
	v1.HandleFunc("/games/{id:[0-9]+}/shots/{player}/{index:[0-9]+}", s.handleShot).Methods(http.MethodGet)
	v1.HandleFunc("/games/{id:[0-9]+}/proofs", s.handleProve).Methods(http.MethodPost)
	v1.HandleFunc("/games/{id:[0-9]+}/end", s.handleEnd).Methods(http.MethodPost)
	v1.HandleFunc("/games/{id:[0-9]+}/events", s.handleEvents).Methods(http.MethodGet)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"startedAt": s.started.UnixMilli(),
	})
}

// Package hub talks to the external score registry that is told when a
// session starts and who won it.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"zkbattleship/internal/model"
)

const (
	// consecutive failures before the breaker opens
	maxFailures = 3
	// how long an open breaker waits before letting a probe through
	openTimeout = 30 * time.Second
)

type StartRequest struct {
	Self    model.Identity `json:"self"`
	Session uint32         `json:"session"`
	PlayerA model.Identity `json:"player_a"`
	PlayerB model.Identity `json:"player_b"`
	ScoreA  int64          `json:"score_a"`
	ScoreB  int64          `json:"score_b"`
}

type EndRequest struct {
	Session uint32         `json:"session"`
	Winner  model.Identity `json:"winner"`
}

// Client posts start and end notifications as JSON to <base>/start and
// <base>/end. Calls fail fast with gobreaker.ErrOpenState while the registry
// keeps failing.
type Client struct {
	log  zerolog.Logger
	base string
	http *http.Client
	cb   *gobreaker.CircuitBreaker
}

func New(log zerolog.Logger, baseURL string, timeout time.Duration) *Client {
	log = log.With().Str("component", "hub").Str("url", baseURL).Logger()
	return &Client{
		log:  log,
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "score-registry",
			Timeout: openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			},
		}),
	}
}

func (c *Client) NotifyStart(ctx context.Context, self model.Identity, session uint32, playerA, playerB model.Identity, scoreA, scoreB int64) error {
	return c.post(ctx, "/start", StartRequest{
		Self:    self,
		Session: session,
		PlayerA: playerA,
		PlayerB: playerB,
		ScoreA:  scoreA,
		ScoreB:  scoreB,
	})
}

func (c *Client) NotifyEnd(ctx context.Context, session uint32, winner model.Identity) error {
	return c.post(ctx, "/end", EndRequest{Session: session, Winner: winner})
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("could not encode %s request: %w", path, err)
	}
	_, err = c.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode/100 != 2 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("registry returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		}
		return nil, nil
	})
	if err != nil {
		c.log.Debug().Str("path", path).Err(err).Msg("notification failed")
		return fmt.Errorf("%s: %w", path, err)
	}
	c.log.Debug().Str("path", path).Msg("notification delivered")
	return nil
}

// Offline accepts every notification and only logs it. It stands in for the
// registry when none is configured.
type Offline struct {
	Log zerolog.Logger
}

func (o Offline) NotifyStart(_ context.Context, self model.Identity, session uint32, playerA, playerB model.Identity, _, _ int64) error {
	o.Log.Info().Str("self", string(self)).Uint32("session", session).
		Str("player_a", string(playerA)).Str("player_b", string(playerB)).Msg("session started")
	return nil
}

func (o Offline) NotifyEnd(_ context.Context, session uint32, winner model.Identity) error {
	o.Log.Info().Uint32("session", session).Str("winner", string(winner)).Msg("session ended")
	return nil
}

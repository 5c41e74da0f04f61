// Package auth authenticates HTTP callers by ed25519 request signatures. An
// identity is the hex encoding of the caller's public key.
package auth

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"zkbattleship/internal/model"
)

const (
	HeaderIdentity  = "X-Identity"
	HeaderSignature = "X-Signature"

	maxBody = 1 << 20
)

var (
	ErrUnauthenticated = errors.New("request is not signed")
	ErrBadSignature    = errors.New("bad request signature")
	ErrWrongCaller     = errors.New("caller does not control identity")
)

// Message is the byte string a request signature covers.
func Message(method, path string, body []byte) []byte {
	msg := make([]byte, 0, len(method)+len(path)+len(body)+2)
	msg = append(msg, method...)
	msg = append(msg, ' ')
	msg = append(msg, path...)
	msg = append(msg, ' ')
	return append(msg, body...)
}

func IdentityOf(pub ed25519.PublicKey) model.Identity {
	return model.Identity(hex.EncodeToString(pub))
}

// PublicKey parses an identity back into the key it names.
func PublicKey(id model.Identity) (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(string(id))
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("identity %q is not a hex ed25519 public key", id)
	}
	return ed25519.PublicKey(raw), nil
}

// SignRequest sets the identity and signature headers on req. The body, if
// any, is read and replaced so the request can still be sent.
func SignRequest(req *http.Request, priv ed25519.PrivateKey) error {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return err
		}
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
	}
	sig := ed25519.Sign(priv, Message(req.Method, req.URL.Path, body))
	req.Header.Set(HeaderIdentity, string(IdentityOf(priv.Public().(ed25519.PublicKey))))
	req.Header.Set(HeaderSignature, hex.EncodeToString(sig))
	return nil
}

// Verify checks the signature headers of r and returns the signing identity.
// The body is restored for later handlers.
func Verify(r *http.Request) (model.Identity, error) {
	id := model.Identity(r.Header.Get(HeaderIdentity))
	sigHex := r.Header.Get(HeaderSignature)
	if id == "" || sigHex == "" {
		return "", ErrUnauthenticated
	}
	pub, err := PublicKey(id)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return "", fmt.Errorf("%w: malformed signature", ErrBadSignature)
	}

	var body []byte
	if r.Body != nil {
		body, err = io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			return "", fmt.Errorf("could not read body: %w", err)
		}
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
	}
	if !ed25519.Verify(pub, Message(r.Method, r.URL.Path, body), sig) {
		return "", ErrBadSignature
	}
	return id, nil
}

type callerKey struct{}

func WithCaller(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, callerKey{}, id)
}

func CallerFrom(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(callerKey{}).(model.Identity)
	return id, ok && id != ""
}

// Middleware verifies signed requests and stores the caller in the request
// context. Unsigned requests pass through without a caller; a request with a
// bad signature is refused with 401.
func Middleware(log zerolog.Logger) func(http.Handler) http.Handler {
	log = log.With().Str("component", "auth").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := Verify(r)
			switch {
			case errors.Is(err, ErrUnauthenticated):
				next.ServeHTTP(w, r)
			case err != nil:
				log.Debug().Str("path", r.URL.Path).Err(err).Msg("rejected request")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"error":"bad signature"}`+"\n")
			default:
				next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), id)))
			}
		})
	}
}

// ContextAuthenticator accepts a call when the verified caller stored by
// Middleware is the required identity.
type ContextAuthenticator struct{}

func (ContextAuthenticator) RequireCallerIs(ctx context.Context, id model.Identity) error {
	caller, ok := CallerFrom(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if caller != id {
		return fmt.Errorf("%w: %s", ErrWrongCaller, id)
	}
	return nil
}

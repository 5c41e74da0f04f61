package app

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"zkbattleship/internal/codec"
	"zkbattleship/internal/game"
	"zkbattleship/internal/merkle"
)

// Secret is what a player keeps private after committing: the board and the
// salt. The Merkle tree is rebuilt from the cells when needed.
type Secret struct {
	Board      game.Board       `json:"board"`
	Salt       string           `json:"salt"` // 0x-prefixed field element
	Commitment codec.Commitment `json:"commitment"`
}

var ErrSecretMismatch = errors.New("secret does not open its commitment")

func newSalt() (fr.Element, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fr.Element{}, err
	}
	var s fr.Element
	s.SetBytes(buf[:]) // reduced mod r
	return s, nil
}

func encodeSalt(s fr.Element) string {
	b := s.Bytes()
	return "0x" + hex.EncodeToString(b[:])
}

func (s *Secret) salt() (fr.Element, error) {
	var out fr.Element
	if !strings.HasPrefix(s.Salt, "0x") {
		return out, errors.New("salt must be 0x-prefixed hex")
	}
	raw, err := hex.DecodeString(s.Salt[2:])
	if err != nil || len(raw) != fr.Bytes {
		return out, fmt.Errorf("invalid salt %q", s.Salt)
	}
	if err := out.SetBytesCanonical(raw); err != nil {
		return out, fmt.Errorf("invalid salt: %w", err)
	}
	return out, nil
}

// Check recomputes the salted root and compares it with the stored
// commitment.
func (s *Secret) Check() error {
	if err := s.Board.Validate(); err != nil {
		return err
	}
	salt, err := s.salt()
	if err != nil {
		return err
	}
	tree, err := merkle.Build(s.Board.Flatten())
	if err != nil {
		return err
	}
	if codec.CommitmentFromField(merkle.Salt(salt, tree.Root())) != s.Commitment {
		return ErrSecretMismatch
	}
	return nil
}

func SaveJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func LoadJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(v)
}

// LoadSecret reads a secret file and checks it against its commitment.
func LoadSecret(path string) (*Secret, error) {
	var s Secret
	if err := LoadJSON(path, &s); err != nil {
		return nil, err
	}
	if err := s.Check(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

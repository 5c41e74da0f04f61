package game

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"zkbattleship/internal/codec"
)

// Board is a 10x10 grid. Cell: 0=water, 1=ship.
type Board struct {
	Cells [codec.BoardSize][codec.BoardSize]uint8 `json:"cells"`
}

// ShipSizes is the standard fleet; it sums to TotalShipCells.
var ShipSizes = []int{5, 4, 3, 3, 2}

var (
	ErrNonBinaryCell = errors.New("board has non-binary cell")
	ErrShipCount     = errors.New("board must contain exactly 17 ship cells")
)

func (b *Board) Validate() error {
	total := 0
	for r := range b.Cells {
		for c := range b.Cells[r] {
			v := b.Cells[r][c]
			if v != 0 && v != 1 {
				return fmt.Errorf("%w at (%d, %d)", ErrNonBinaryCell, r, c)
			}
			total += int(v)
		}
	}
	if total != TotalShipCells {
		return fmt.Errorf("%w: got %d", ErrShipCount, total)
	}
	return nil
}

// Flatten lays the grid out row-major, the order the circuits index cells in.
func (b *Board) Flatten() []uint8 {
	out := make([]uint8, 0, codec.BoardSize*codec.BoardSize)
	for r := range b.Cells {
		out = append(out, b.Cells[r][:]...)
	}
	return out
}

// BoardFromCells is the inverse of Flatten.
func BoardFromCells(cells []uint8) (Board, error) {
	var b Board
	if len(cells) != codec.BoardSize*codec.BoardSize {
		return b, fmt.Errorf("board needs %d cells, got %d", codec.BoardSize*codec.BoardSize, len(cells))
	}
	for i, v := range cells {
		b.Cells[i/codec.BoardSize][i%codec.BoardSize] = v
	}
	return b, b.Validate()
}

func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("  0123456789\n")
	for r := range b.Cells {
		fmt.Fprintf(&sb, "%d ", r)
		for _, v := range b.Cells[r] {
			if v == 1 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// GenerateRandomBoard places the standard fleet without overlap (no adjacency
// rule). The placement is seeded from crypto/rand since the board is secret.
func GenerateRandomBoard() (Board, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return Board{}, err
	}
	return PlaceShips(rand.New(rand.NewChaCha8(seed)))
}

// PlaceShips places the standard fleet using rng.
func PlaceShips(rng *rand.Rand) (Board, error) {
	var b Board
	tries := 0
	for _, n := range ShipSizes {
		for {
			if tries > 10000 {
				return Board{}, errors.New("failed to place ships")
			}
			tries++
			if b.place(n, rng.IntN(2) == 0, rng.IntN(codec.BoardSize), rng.IntN(codec.BoardSize)) {
				break
			}
		}
	}
	return b, nil
}

func (b *Board) place(n int, vert bool, r, c int) bool {
	dr, dc := 0, 1
	if vert {
		dr, dc = 1, 0
	}
	if r+dr*(n-1) >= codec.BoardSize || c+dc*(n-1) >= codec.BoardSize {
		return false
	}
	for i := 0; i < n; i++ {
		if b.Cells[r+dr*i][c+dc*i] == 1 {
			return false
		}
	}
	for i := 0; i < n; i++ {
		b.Cells[r+dr*i][c+dc*i] = 1
	}
	return true
}

package zk

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"

	"zkbattleship/internal/merkle"
)

const (
	Cells     = 100
	ShipCells = 17 // 5+4+3+3+2
)

// BoardCircuit proves that Commitment is the salted MiMC root of a 10x10
// board of 0/1 cells holding exactly ShipCells ship cells.
type BoardCircuit struct {
	Cells [Cells]frontend.Variable `gnark:",secret"`
	Salt  frontend.Variable        `gnark:",secret"`

	Commitment frontend.Variable `gnark:",public"`
}

func (c *BoardCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	padLeaf := merkle.HashLeaf(0)
	pad := padLeaf.BigInt(new(big.Int))

	level := make([]frontend.Variable, merkle.Leaves)
	total := frontend.Variable(0)
	for i := range level {
		if i >= Cells {
			level[i] = pad
			continue
		}
		api.AssertIsBoolean(c.Cells[i])
		total = api.Add(total, c.Cells[i])

		h.Reset()
		h.Write(c.Cells[i])
		level[i] = h.Sum()
	}
	api.AssertIsEqual(total, ShipCells)

	for len(level) > 1 {
		up := make([]frontend.Variable, len(level)/2)
		for i := range up {
			h.Reset()
			h.Write(level[2*i], level[2*i+1])
			up[i] = h.Sum()
		}
		level = up
	}

	h.Reset()
	h.Write(c.Salt, level[0])
	api.AssertIsEqual(h.Sum(), c.Commitment)
	return nil
}

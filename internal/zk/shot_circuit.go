package zk

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"

	"zkbattleship/internal/merkle"
)

// ShotCircuit proves that the board committed to by Commitment holds Result
// at cell index Cell. Public inputs, in order: Commitment, Cell, Result.
type ShotCircuit struct {
	Bit  frontend.Variable               `gnark:",secret"`
	Path [merkle.Depth]frontend.Variable `gnark:",secret"`
	Dir  [merkle.Depth]frontend.Variable `gnark:",secret"`
	Salt frontend.Variable               `gnark:",secret"`

	Commitment frontend.Variable `gnark:",public"`
	Cell       frontend.Variable `gnark:",public"`
	Result     frontend.Variable `gnark:",public"`
}

func (c *ShotCircuit) Define(api frontend.API) error {
	api.AssertIsBoolean(c.Bit)
	api.AssertIsEqual(c.Result, c.Bit)

	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Reset()
	h.Write(c.Bit)
	curr := h.Sum()

	// walk the path; direction bits spell out the leaf index
	index := frontend.Variable(0)
	for i := 0; i < merkle.Depth; i++ {
		isRight := c.Dir[i]
		api.AssertIsBoolean(isRight)
		index = api.Add(index, api.Mul(isRight, 1<<i))

		left := api.Select(isRight, c.Path[i], curr)
		right := api.Select(isRight, curr, c.Path[i])

		h.Reset()
		h.Write(left, right)
		curr = h.Sum()
	}
	api.AssertIsEqual(c.Cell, index)

	h.Reset()
	h.Write(c.Salt, curr)
	api.AssertIsEqual(h.Sum(), c.Commitment)
	return nil
}

package merkle

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	bnmimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

const (
	Depth  = 7
	Leaves = 1 << Depth // 128, enough for a 10x10 board
)

// hash absorbs each element as a 32-byte big-endian block, matching the
// in-circuit MiMC gadget.
func hash(elems ...*fr.Element) fr.Element {
	h := bnmimc.NewMiMC()
	for _, e := range elems {
		b := e.Bytes()
		h.Write(b[:])
	}
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

func HashLeaf(bit uint8) fr.Element {
	var v fr.Element
	v.SetUint64(uint64(bit))
	return hash(&v)
}

func HashNode(left, right fr.Element) fr.Element {
	return hash(&left, &right)
}

// Salt binds a tree root to a secret so equal boards commit differently.
func Salt(salt, root fr.Element) fr.Element {
	return HashNode(salt, root)
}

// Tree is a fixed-size binary MiMC tree stored level by level:
// Levels[0] are the leaves, Levels[Depth] holds the root.
type Tree struct {
	Levels [][]fr.Element
}

// Build hashes cells into leaves and pads the remainder with the leaf hash of 0.
func Build(cells []uint8) (*Tree, error) {
	if len(cells) > Leaves {
		return nil, errors.New("too many leaves")
	}
	pad := HashLeaf(0)
	leaves := make([]fr.Element, Leaves)
	for i := range leaves {
		if i < len(cells) {
			leaves[i] = HashLeaf(cells[i])
		} else {
			leaves[i] = pad
		}
	}

	levels := [][]fr.Element{leaves}
	for n := Leaves; n > 1; n /= 2 {
		prev := levels[len(levels)-1]
		up := make([]fr.Element, n/2)
		for i := range up {
			up[i] = HashNode(prev[2*i], prev[2*i+1])
		}
		levels = append(levels, up)
	}
	return &Tree{Levels: levels}, nil
}

func (t *Tree) Root() fr.Element { return t.Levels[Depth][0] }

// Path returns sibling hashes and direction bits for leaf idx, bottom up.
// dir[i]=0 means the running node is a left child at level i.
func (t *Tree) Path(idx int) (path [Depth]fr.Element, dir [Depth]uint8, err error) {
	if idx < 0 || idx >= Leaves {
		return path, dir, errors.New("leaf index out of range")
	}
	cur := idx
	for level := 0; level < Depth; level++ {
		if cur%2 == 1 {
			path[level] = t.Levels[level][cur-1]
			dir[level] = 1
		} else {
			path[level] = t.Levels[level][cur+1]
		}
		cur /= 2
	}
	return path, dir, nil
}

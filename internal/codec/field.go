package codec

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// FieldFromBlock reads a little-endian block as an integer reduced into Fr.
func FieldFromBlock(block [FieldSize]byte) fr.Element {
	var be [FieldSize]byte
	for i := range block {
		be[FieldSize-1-i] = block[i]
	}
	var e fr.Element
	e.SetBytes(be[:])
	return e
}

// FieldBlock lays out e as a little-endian block. FieldFromBlock(FieldBlock(e)) == e.
func FieldBlock(e fr.Element) [FieldSize]byte {
	be := e.Bytes()
	var le [FieldSize]byte
	for i := range be {
		le[FieldSize-1-i] = be[i]
	}
	return le
}

// CommitmentFromField encodes a field element (a salted board root) as a commitment.
func CommitmentFromField(e fr.Element) Commitment {
	return Commitment(FieldBlock(e))
}

// Field returns the commitment as the scalar the circuits see.
func (c Commitment) Field() fr.Element {
	return FieldFromBlock(c)
}

package operation

import (
	"encoding/binary"
	"fmt"

	"zkbattleship/internal/model"
)

// Every key starts with a one-byte code naming its record kind, followed by
// the fixed-width or length-prefixed key parts. Codes must never be reused.
const (
	codeAdmin      = 1
	codeNextGameID = 2

	codeGame       = 10
	codeCommitment = 11
	codeShot       = 12
	codeShotTally  = 13
)

func makePrefix(code byte, keys ...interface{}) []byte {
	prefix := []byte{code}
	for _, key := range keys {
		prefix = append(prefix, b(key)...)
	}
	return prefix
}

func b(v interface{}) []byte {
	switch i := v.(type) {
	case uint8:
		return []byte{i}
	case uint32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, i)
		return b
	case uint64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, i)
		return b
	case model.Identity:
		// length-prefixed so (A, B) and (A+B[:1], B[1:]) never collide
		b := make([]byte, 2, 2+len(i))
		binary.BigEndian.PutUint16(b, uint16(len(i)))
		return append(b, i...)
	default:
		panic(fmt.Sprintf("unsupported type to convert (%T)", v))
	}
}

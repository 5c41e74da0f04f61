package operation

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/golang/snappy"
)

var errUncompressedValue = errors.New("could not uncompress data")

var encMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// encodeEntity encodes the entity as deterministic CBOR, then compresses it
// with snappy.
func encodeEntity(entity interface{}) ([]byte, error) {
	val, err := encMode.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("could not encode entity: %w", err)
	}
	return snappy.Encode(nil, val), nil
}

func decodeValue(val []byte, entity interface{}) error {
	raw, err := snappy.Decode(nil, val)
	if err != nil {
		return fmt.Errorf("%s: %w", err, errUncompressedValue)
	}
	if err := cbor.Unmarshal(raw, entity); err != nil {
		return fmt.Errorf("could not decode entity: %w", err)
	}
	return nil
}

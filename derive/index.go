package derive

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// HardenedKeyStart is the first BIP-0032 child index in the hardened range.
const HardenedKeyStart = hdkeychain.HardenedKeyStart

var (
	// ErrHardenedIndex is returned when a child index from the hardened
	// range is used where only normal (public) derivation is allowed.
	ErrHardenedIndex = errors.New("index is in the hardened range")
)

// NormalIndex is a BIP-0032 child index that is guaranteed to be below
// HardenedKeyStart, so it can be used for public derivation from an extended
// public key. The zero value is index 0.
type NormalIndex struct {
	index uint32
}

// NewNormalIndex returns the normal index for the given raw child number, or
// ErrHardenedIndex if the number lies in the hardened range.
func NewNormalIndex(index uint32) (NormalIndex, error) {
	if index >= HardenedKeyStart {
		return NormalIndex{}, fmt.Errorf("%w: %d", ErrHardenedIndex,
			index)
	}

	return NormalIndex{index: index}, nil
}

// NormalIndexFromUint16 returns the normal index for the given number. Every
// 16-bit number is a valid normal index.
func NormalIndexFromUint16(index uint16) NormalIndex {
	return NormalIndex{index: uint32(index)}
}

// MustNormalIndex is like NewNormalIndex but panics if the index is hardened.
// It is meant for constants and tests.
func MustNormalIndex(index uint32) NormalIndex {
	idx, err := NewNormalIndex(index)
	if err != nil {
		panic(err)
	}

	return idx
}

// ParseNormalIndex parses a decimal child number without hardened marker.
func ParseNormalIndex(s string) (NormalIndex, error) {
	index, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return NormalIndex{}, fmt.Errorf("invalid child index %q: %w",
			s, err)
	}

	return NewNormalIndex(uint32(index))
}

// Index returns the raw BIP-0032 child number.
func (n NormalIndex) Index() uint32 {
	return n.index
}

// Next returns the index following n. The second return value is false if n
// is the last normal index.
func (n NormalIndex) Next() (NormalIndex, bool) {
	if n.index+1 >= HardenedKeyStart {
		return n, false
	}

	return NormalIndex{index: n.index + 1}, true
}

// String returns the decimal child number.
func (n NormalIndex) String() string {
	return strconv.FormatUint(uint64(n.index), 10)
}

package locktime

import (
	"encoding/json"
	"fmt"
)

// Height is an nLockTime value that is known to be a block height below
// Threshold. Zero is the anytime lock, which is also the zero value.
type Height struct {
	value uint32
}

// AnytimeHeight returns the lock that is satisfied at any height.
func AnytimeHeight() Height {
	return Height{}
}

// FromHeight returns a lock at the given block height, which must be below
// Threshold.
func FromHeight(height uint32) (Height, error) {
	if height >= Threshold {
		return Height{}, fmt.Errorf("%w: height %d is not below %d",
			ErrInvalidTimelock, height, uint32(Threshold))
	}

	return Height{value: height}, nil
}

// HeightFromConsensus converts a raw nLockTime value, which must be height
// based.
func HeightFromConsensus(value uint32) (Height, error) {
	return HeightFromAbsolute(Absolute(value))
}

// HeightFromAbsolute is like HeightFromConsensus.
func HeightFromAbsolute(lockTime Absolute) (Height, error) {
	if !lockTime.IsHeightBased() {
		return Height{}, fmt.Errorf("%w: %d is a timestamp",
			ErrInvalidTimelock, lockTime)
	}

	return Height{value: uint32(lockTime)}, nil
}

// ParseHeight parses "0", "none" or "height(N)".
func ParseHeight(s string) (Height, error) {
	value, ok, err := parseLock(s, heightPrefix)
	switch {
	case err != nil:
		return Height{}, err

	case !ok:
		return AnytimeHeight(), nil
	}

	height, err := HeightFromConsensus(value)
	if err != nil {
		return Height{}, &ParseError{
			Kind:  InvalidHeight,
			Input: s,
			Value: value,
			Err:   err,
		}
	}

	return height, nil
}

// Consensus returns the value as serialized in a transaction.
func (h Height) Consensus() uint32 {
	return h.value
}

// Absolute returns the lock as a raw lock time.
func (h Height) Absolute() Absolute {
	return Absolute(h.value)
}

// IsAnytime returns true for the lock that doesn't lock.
func (h Height) IsAnytime() bool {
	return h.value == 0
}

// String returns "height(N)", or "none" for the anytime lock.
func (h Height) String() string {
	if h.IsAnytime() {
		return anytimeText
	}

	return fmt.Sprintf("height(%d)", h.value)
}

// MarshalText implements encoding.TextMarshaler.
func (h Height) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Height) UnmarshalText(text []byte) error {
	parsed, err := ParseHeight(string(text))
	if err != nil {
		return err
	}

	*h = parsed

	return nil
}

// MarshalJSON encodes the lock as its plain consensus number.
func (h Height) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.value)
}

// UnmarshalJSON decodes a plain consensus number and checks its range.
func (h *Height) UnmarshalJSON(data []byte) error {
	var value uint32
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	parsed, err := HeightFromConsensus(value)
	if err != nil {
		return err
	}

	*h = parsed

	return nil
}

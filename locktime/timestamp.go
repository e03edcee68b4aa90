package locktime

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/lightningnetwork/lnd/clock"
)

// Timestamp is an nLockTime value that is known to be either zero or a UNIX
// timestamp at or above Threshold. The zero value is the anytime lock.
type Timestamp struct {
	value uint32
}

// AnytimeTimestamp returns the lock that is satisfied at any time.
func AnytimeTimestamp() Timestamp {
	return Timestamp{}
}

// SinceNow returns a lock that is satisfied from the current time of the
// clock on.
func SinceNow(clk clock.Clock) (Timestamp, error) {
	now := clk.Now().Unix()
	if now < 0 || now > math.MaxUint32 {
		return Timestamp{}, fmt.Errorf("%w: current time %d doesn't "+
			"fit into a lock time", ErrInvalidTimelock, now)
	}

	return FromUnixTimestamp(uint32(now))
}

// FromUnixTimestamp returns a lock at the given UNIX timestamp, which must be
// at or above Threshold.
func FromUnixTimestamp(timestamp uint32) (Timestamp, error) {
	if timestamp < Threshold {
		return Timestamp{}, fmt.Errorf("%w: timestamp %d is below %d",
			ErrInvalidTimelock, timestamp, uint32(Threshold))
	}

	return Timestamp{value: timestamp}, nil
}

// TimestampFromConsensus converts a raw nLockTime value. Zero is accepted as
// the anytime lock, every other value must be time based.
func TimestampFromConsensus(value uint32) (Timestamp, error) {
	return TimestampFromAbsolute(Absolute(value))
}

// TimestampFromAbsolute is like TimestampFromConsensus.
func TimestampFromAbsolute(lockTime Absolute) (Timestamp, error) {
	if lockTime == 0 {
		return AnytimeTimestamp(), nil
	}
	if !lockTime.IsTimeBased() {
		return Timestamp{}, fmt.Errorf("%w: %d is a block height",
			ErrInvalidTimelock, lockTime)
	}

	return Timestamp{value: uint32(lockTime)}, nil
}

// ParseTimestamp parses "0", "none" or "time(N)".
func ParseTimestamp(s string) (Timestamp, error) {
	value, ok, err := parseLock(s, timePrefix)
	switch {
	case err != nil:
		return Timestamp{}, err

	case !ok:
		return AnytimeTimestamp(), nil
	}

	timestamp, err := TimestampFromConsensus(value)
	if err != nil {
		return Timestamp{}, &ParseError{
			Kind:  InvalidTimestamp,
			Input: s,
			Value: value,
			Err:   err,
		}
	}

	return timestamp, nil
}

// Consensus returns the value as serialized in a transaction.
func (t Timestamp) Consensus() uint32 {
	return t.value
}

// Absolute returns the lock as a raw lock time.
func (t Timestamp) Absolute() Absolute {
	return Absolute(t.value)
}

// IsAnytime returns true for the lock that doesn't lock.
func (t Timestamp) IsAnytime() bool {
	return t.value == 0
}

// String returns "time(N)", or "none" for the anytime lock.
func (t Timestamp) String() string {
	if t.IsAnytime() {
		return anytimeText
	}

	return fmt.Sprintf("time(%d)", t.value)
}

// MarshalText implements encoding.TextMarshaler.
func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Timestamp) UnmarshalText(text []byte) error {
	parsed, err := ParseTimestamp(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// MarshalJSON encodes the lock as its plain consensus number.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.value)
}

// UnmarshalJSON decodes a plain consensus number and checks its range.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var value uint32
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	parsed, err := TimestampFromConsensus(value)
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

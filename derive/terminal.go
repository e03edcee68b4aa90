package derive

import (
	"fmt"
	"strconv"
	"strings"
)

// keychainLimit is the exclusive upper bound of keychain numbers.
const keychainLimit = 1 << 8

// KeychainRange is the half-open range [Start, End) of keychain numbers a key
// can be derived at. End is wider than a keychain so that keychain 255 can be
// part of a range. Anything past 256 is ignored.
type KeychainRange struct {
	Start uint8
	End   uint16
}

// Contains returns true if the keychain falls inside the range.
func (r KeychainRange) Contains(keychain uint8) bool {
	return keychain >= r.Start && uint16(keychain) < r.End
}

// end returns End capped to the keychain limit.
func (r KeychainRange) end() int {
	if r.End > keychainLimit {
		return keychainLimit
	}

	return int(r.End)
}

// Len returns the number of keychains in the range.
func (r KeychainRange) Len() int {
	if r.end() <= int(r.Start) {
		return 0
	}

	return r.end() - int(r.Start)
}

// Keychains lists every keychain in the range in ascending order.
func (r KeychainRange) Keychains() []uint8 {
	keychains := make([]uint8, 0, r.Len())
	for k := int(r.Start); k < r.end(); k++ {
		keychains = append(keychains, uint8(k))
	}

	return keychains
}

// String renders the range as "start..end".
func (r KeychainRange) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Terminal identifies one derivation leaf below a descriptor: the keychain
// (for example receive or change) and the address index within it.
type Terminal struct {
	Keychain uint8
	Index    NormalIndex
}

// NewTerminal is a short hand for creating a terminal.
func NewTerminal(keychain uint8, index NormalIndex) Terminal {
	return Terminal{
		Keychain: keychain,
		Index:    index,
	}
}

// ParseTerminal parses the "<keychain>/<index>" form produced by String.
func ParseTerminal(s string) (Terminal, error) {
	keychainStr, indexStr, ok := strings.Cut(
		strings.TrimPrefix(s, "/"), "/",
	)
	if !ok {
		return Terminal{}, fmt.Errorf("invalid terminal %q: expected "+
			"<keychain>/<index>", s)
	}

	keychain, err := strconv.ParseUint(keychainStr, 10, 8)
	if err != nil {
		return Terminal{}, fmt.Errorf("invalid terminal keychain "+
			"%q: %w", keychainStr, err)
	}

	index, err := ParseNormalIndex(indexStr)
	if err != nil {
		return Terminal{}, fmt.Errorf("invalid terminal %q: %w", s,
			err)
	}

	return NewTerminal(uint8(keychain), index), nil
}

// Steps returns the two BIP-0032 child numbers the terminal stands for.
func (t Terminal) Steps() []uint32 {
	return []uint32{uint32(t.Keychain), t.Index.Index()}
}

// String renders the terminal as "<keychain>/<index>".
func (t Terminal) String() string {
	return fmt.Sprintf("%d/%s", t.Keychain, t.Index)
}

// MarshalText encodes the terminal as "<keychain>/<index>".
func (t Terminal) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a terminal.
func (t *Terminal) UnmarshalText(text []byte) error {
	terminal, err := ParseTerminal(string(text))
	if err != nil {
		return err
	}

	*t = terminal

	return nil
}

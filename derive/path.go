package derive

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bpwallet/bpstd/fn"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
)

var (
	// ErrInvalidFingerprint is returned when a master key fingerprint is
	// not exactly 8 hex characters.
	ErrInvalidFingerprint = errors.New("invalid key fingerprint")

	// ErrInvalidPath is returned when a derivation path can't be parsed.
	ErrInvalidPath = errors.New("invalid derivation path")
)

// Fingerprint is the first four bytes of the HASH160 of a compressed public
// key, used to identify the master key a derivation starts from.
type Fingerprint [4]byte

// FingerprintOf returns the BIP-0032 fingerprint of the given public key.
func FingerprintOf(pubKey *btcec.PublicKey) Fingerprint {
	var fp Fingerprint
	copy(fp[:], btcutil.Hash160(pubKey.SerializeCompressed())[:4])

	return fp
}

// ParseFingerprint decodes an 8 character hex fingerprint.
func ParseFingerprint(s string) (Fingerprint, error) {
	var fp Fingerprint
	if len(s) != hex.EncodedLen(len(fp)) {
		return fp, fmt.Errorf("%w: %q", ErrInvalidFingerprint, s)
	}

	if _, err := hex.Decode(fp[:], []byte(s)); err != nil {
		return fp, fmt.Errorf("%w: %v", ErrInvalidFingerprint, err)
	}

	return fp, nil
}

// Uint32 returns the fingerprint as the little-endian integer used by the
// PSBT BIP-0032 derivation fields.
func (f Fingerprint) Uint32() uint32 {
	return binary.LittleEndian.Uint32(f[:])
}

// FingerprintFromUint32 is the inverse of Fingerprint.Uint32.
func FingerprintFromUint32(v uint32) Fingerprint {
	var fp Fingerprint
	binary.LittleEndian.PutUint32(fp[:], v)

	return fp
}

// String returns the fingerprint as lowercase hex.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// MarshalText encodes the fingerprint as hex.
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText decodes a hex fingerprint.
func (f *Fingerprint) UnmarshalText(text []byte) error {
	fp, err := ParseFingerprint(string(text))
	if err != nil {
		return err
	}

	*f = fp

	return nil
}

// DerivationPath is a sequence of BIP-0032 child numbers. Hardened steps are
// offset by HardenedKeyStart.
type DerivationPath []uint32

// ParseDerivationPath parses a path such as "84h/0h/0h" or "m/84'/0'/0'". An
// empty string or a lone "m" is the empty path.
func ParseDerivationPath(s string) (DerivationPath, error) {
	s = strings.TrimPrefix(s, "m")
	s = strings.TrimPrefix(s, "/")
	if s == "" {
		return DerivationPath{}, nil
	}

	steps := strings.Split(s, "/")
	path := make(DerivationPath, 0, len(steps))
	for _, step := range steps {
		num := strings.TrimRight(step, "'h")
		hardened := num != step
		if hardened && len(step)-len(num) != 1 {
			return nil, fmt.Errorf("%w: step %q", ErrInvalidPath,
				step)
		}

		index, err := strconv.ParseUint(num, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: step %q: %v",
				ErrInvalidPath, step, err)
		}
		if index >= HardenedKeyStart {
			return nil, fmt.Errorf("%w: step %q out of range",
				ErrInvalidPath, step)
		}

		if hardened {
			index += HardenedKeyStart
		}
		path = append(path, uint32(index))
	}

	return path, nil
}

// Extend returns a new path with the given steps appended. The receiver is
// left untouched.
func (p DerivationPath) Extend(steps ...uint32) DerivationPath {
	path := make(DerivationPath, 0, len(p)+len(steps))
	path = append(path, p...)

	return append(path, steps...)
}

// Clone returns a copy of the path.
func (p DerivationPath) Clone() DerivationPath {
	return fn.CopySlice(p)
}

// Equal returns true if both paths contain the same steps.
func (p DerivationPath) Equal(other DerivationPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}

	return true
}

// String renders the path without "m/" prefix, using "h" as the hardened
// marker.
func (p DerivationPath) String() string {
	var b strings.Builder
	for i, step := range p {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(formatStep(step))
	}

	return b.String()
}

// MarshalText encodes the path in its "84h/0h/0h" form.
func (p DerivationPath) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a path.
func (p *DerivationPath) UnmarshalText(text []byte) error {
	path, err := ParseDerivationPath(string(text))
	if err != nil {
		return err
	}

	*p = path

	return nil
}

// formatStep renders a single child number.
func formatStep(step uint32) string {
	if step >= HardenedKeyStart {
		return strconv.FormatUint(
			uint64(step-HardenedKeyStart), 10,
		) + "h"
	}

	return strconv.FormatUint(uint64(step), 10)
}

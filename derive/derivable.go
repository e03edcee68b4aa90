package derive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

var (
	// ErrInvalidKeychains is returned when the keychain part of a
	// derivable key ("/<0;1>/*") is malformed or not supported.
	ErrInvalidKeychains = errors.New("invalid keychain derivation")
)

// StdKeychains is the receive/change keychain pair used by most wallets.
var StdKeychains = KeychainRange{Start: 0, End: 2}

// XpubDerivable is an extended public key that derives leaf keys two levels
// below itself: first the keychain, then the address index. The keychain
// number is used as-is as the BIP-0032 child number of the first step, so a
// terminal always maps to the path <xpub>/<keychain>/<index>.
//
// The branch key of every keychain is derived once at construction time. That
// leaves a single public derivation step per leaf, which can only fail with a
// negligible probability.
type XpubDerivable struct {
	spec      XpubSpec
	keychains KeychainRange
	branches  []*hdkeychain.ExtendedKey
}

// A compile time check to ensure XpubDerivable satisfies both derivation
// capabilities.
var _ DeriveSet = (*XpubDerivable)(nil)

// NewXpubDerivable creates a derivable key for the given keychain range.
func NewXpubDerivable(spec XpubSpec,
	keychains KeychainRange) (*XpubDerivable, error) {

	switch {
	case keychains.Len() == 0:
		return nil, fmt.Errorf("%w: empty keychain range %v",
			ErrInvalidKeychains, keychains)

	case keychains.End > keychainLimit:
		return nil, fmt.Errorf("%w: keychain range %v past %d",
			ErrInvalidKeychains, keychains, keychainLimit-1)
	}

	branches := make([]*hdkeychain.ExtendedKey, 0, keychains.Len())
	for _, keychain := range keychains.Keychains() {
		branch, err := spec.xpub.Derive(uint32(keychain))
		if err != nil {
			return nil, fmt.Errorf("unable to derive keychain %d: %w",
				keychain, err)
		}

		// The leaf step must still fit into the depth counter.
		if branch.Depth() == ^uint8(0) {
			return nil, hdkeychain.ErrDeriveBeyondMaxDepth
		}

		branches = append(branches, branch)
	}

	log.Debugf("Prepared %d keychain branch(es) for %v", len(branches),
		spec)
	log.Tracef("Key origin of derivable key: %v", spewClosure(spec.origin))

	return &XpubDerivable{
		spec:      spec,
		keychains: keychains,
		branches:  branches,
	}, nil
}

// ParseXpubDerivable parses a key expression of the form
// "[fingerprint/path]xpub.../<0;1>/*" or "xpub.../0/*".
func ParseXpubDerivable(s string) (*XpubDerivable, error) {
	// The key itself never contains a slash, so the derivation suffix
	// starts at the first slash after the origin.
	originStr, rest, hasOrigin, err := splitOrigin(s)
	if err != nil {
		return nil, err
	}

	keyStr, suffix, ok := strings.Cut(rest, "/")
	if !ok {
		return nil, fmt.Errorf("%w: missing /<keychain>/* suffix",
			ErrInvalidKeychains)
	}

	specStr := keyStr
	if hasOrigin {
		specStr = "[" + originStr + "]" + keyStr
	}
	spec, err := ParseXpubSpec(specStr)
	if err != nil {
		return nil, err
	}

	keychains, err := parseKeychains(suffix)
	if err != nil {
		return nil, err
	}

	return NewXpubDerivable(spec, keychains)
}

// parseKeychains parses "<a;b;...>/*" or "n/*" into a contiguous keychain
// range.
func parseKeychains(suffix string) (KeychainRange, error) {
	segment, wildcard, ok := strings.Cut(suffix, "/")
	if !ok || wildcard != "*" {
		return KeychainRange{}, fmt.Errorf("%w: expected "+
			"<keychain>/*, got %q", ErrInvalidKeychains, suffix)
	}

	var alternatives []string
	switch {
	case strings.HasPrefix(segment, "<") &&
		strings.HasSuffix(segment, ">"):

		alternatives = strings.Split(segment[1:len(segment)-1], ";")
		if len(alternatives) < 2 {
			return KeychainRange{}, fmt.Errorf("%w: multipath "+
				"needs at least two alternatives",
				ErrInvalidKeychains)
		}

	default:
		alternatives = []string{segment}
	}

	var keychains KeychainRange
	for i, alt := range alternatives {
		keychain, err := strconv.ParseUint(alt, 10, 8)
		if err != nil {
			return KeychainRange{}, fmt.Errorf("%w: keychain %q: "+
				"%v", ErrInvalidKeychains, alt, err)
		}

		switch {
		case i == 0:
			keychains.Start = uint8(keychain)

		case uint64(keychains.Start)+uint64(i) != keychain:
			return KeychainRange{}, fmt.Errorf("%w: keychains "+
				"must be contiguous and ascending",
				ErrInvalidKeychains)
		}
	}

	// Every alternative fits a keychain, so the end never passes 256.
	keychains.End = uint16(keychains.Start) + uint16(len(alternatives))

	return keychains, nil
}

// Keychains returns the keychains the key can be derived at.
func (x *XpubDerivable) Keychains() KeychainRange {
	return x.keychains
}

// XpubSpec returns the extended key and its origin.
func (x *XpubDerivable) XpubSpec() XpubSpec {
	return x.spec
}

// derivePub performs the final, public derivation step for the leaf.
func (x *XpubDerivable) derivePub(keychain uint8,
	index NormalIndex) *btcec.PublicKey {

	if !x.keychains.Contains(keychain) {
		panic(fmt.Sprintf("keychain %d outside of supported range %v",
			keychain, x.keychains))
	}

	branch := x.branches[keychain-x.keychains.Start]
	child, err := branch.Derive(index.Index())
	if err != nil {
		// Only ErrInvalidChild is possible here since the depth was
		// checked at construction.
		panic(fmt.Sprintf("unable to derive %v/%d/%v: %v", x.spec,
			keychain, index, err))
	}

	pubKey, err := child.ECPubKey()
	if err != nil {
		panic(fmt.Sprintf("derived key without public key: %v", err))
	}

	log.Tracef("Derived key %x at %d/%v", pubKey.SerializeCompressed(),
		keychain, index)

	return pubKey
}

// DeriveCompr derives the compressed public key at the given leaf.
func (x *XpubDerivable) DeriveCompr(keychain uint8,
	index NormalIndex) *btcec.PublicKey {

	return x.derivePub(keychain, index)
}

// DeriveXOnly derives the x-only public key at the given leaf. The returned
// key always has an even Y coordinate.
func (x *XpubDerivable) DeriveXOnly(keychain uint8,
	index NormalIndex) *btcec.PublicKey {

	pubKey := x.derivePub(keychain, index)

	// Round tripping through the BIP-0340 encoding drops the Y parity.
	xOnly, err := schnorr.ParsePubKey(schnorr.SerializePubKey(pubKey))
	if err != nil {
		panic(fmt.Sprintf("unable to normalize x-only key: %v", err))
	}

	return xOnly
}

// Equal returns true if both keys describe the same derivation.
func (x *XpubDerivable) Equal(other *XpubDerivable) bool {
	if x == nil || other == nil {
		return x == other
	}

	return x.keychains == other.keychains && x.spec.Equal(other.spec)
}

// String renders the key expression with its keychain suffix.
func (x *XpubDerivable) String() string {
	var keychains string
	if x.keychains.Len() == 1 {
		keychains = strconv.Itoa(int(x.keychains.Start))
	} else {
		parts := make([]string, 0, x.keychains.Len())
		for _, k := range x.keychains.Keychains() {
			parts = append(parts, strconv.Itoa(int(k)))
		}
		keychains = "<" + strings.Join(parts, ";") + ">"
	}

	return fmt.Sprintf("%v/%s/*", x.spec, keychains)
}

// MarshalText implements encoding.TextMarshaler.
func (x *XpubDerivable) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (x *XpubDerivable) UnmarshalText(text []byte) error {
	parsed, err := ParseXpubDerivable(string(text))
	if err != nil {
		return err
	}

	*x = *parsed

	return nil
}

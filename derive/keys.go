package derive

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// DeriveCompr is implemented by keys that derive a compressed public key at a
// (keychain, index) leaf. It is what segwit v0 templates require.
type DeriveCompr interface {
	// Keychains returns the keychains this key can be derived at.
	Keychains() KeychainRange

	// DeriveCompr derives the public key at the given leaf. The keychain
	// must be within Keychains().
	DeriveCompr(keychain uint8, index NormalIndex) *btcec.PublicKey

	// XpubSpec returns the extended key and origin the key derives from.
	XpubSpec() XpubSpec
}

// DeriveXOnly is implemented by keys that derive an x-only (BIP-0340) public
// key at a (keychain, index) leaf. It is what Taproot templates require.
type DeriveXOnly interface {
	// Keychains returns the keychains this key can be derived at.
	Keychains() KeychainRange

	// DeriveXOnly derives the public key at the given leaf, normalized to
	// an even Y coordinate. The keychain must be within Keychains().
	DeriveXOnly(keychain uint8, index NormalIndex) *btcec.PublicKey

	// XpubSpec returns the extended key and origin the key derives from.
	XpubSpec() XpubSpec
}

// DeriveSet groups both capabilities, so one key can back either script
// family.
type DeriveSet interface {
	DeriveCompr
	DeriveXOnly
}

// CompressedPk is the 33-byte SEC serialization of a public key. It is
// comparable and therefore usable as a map key.
type CompressedPk [btcec.PubKeyBytesLenCompressed]byte

// NewCompressedPk serializes the given public key.
func NewCompressedPk(pubKey *btcec.PublicKey) CompressedPk {
	var pk CompressedPk
	copy(pk[:], pubKey.SerializeCompressed())

	return pk
}

// PubKey parses the serialized key.
func (c CompressedPk) PubKey() (*btcec.PublicKey, error) {
	return btcec.ParsePubKey(c[:])
}

// String returns the key as hex.
func (c CompressedPk) String() string {
	return hex.EncodeToString(c[:])
}

// MarshalText encodes the key as hex.
func (c CompressedPk) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes and validates a hex encoded compressed key.
func (c *CompressedPk) UnmarshalText(text []byte) error {
	raw, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}

	pubKey, err := btcec.ParsePubKey(raw)
	if err != nil {
		return err
	}
	if len(raw) != btcec.PubKeyBytesLenCompressed {
		return fmt.Errorf("expected compressed key, got %d bytes",
			len(raw))
	}

	*c = NewCompressedPk(pubKey)

	return nil
}

// XOnlyPk is the 32-byte BIP-0340 serialization of a public key.
type XOnlyPk [schnorr.PubKeyBytesLen]byte

// NewXOnlyPk serializes the given public key, dropping the Y parity.
func NewXOnlyPk(pubKey *btcec.PublicKey) XOnlyPk {
	var pk XOnlyPk
	copy(pk[:], schnorr.SerializePubKey(pubKey))

	return pk
}

// PubKey parses the serialized key, which yields the even Y point.
func (x XOnlyPk) PubKey() (*btcec.PublicKey, error) {
	return schnorr.ParsePubKey(x[:])
}

// String returns the key as hex.
func (x XOnlyPk) String() string {
	return hex.EncodeToString(x[:])
}

// MarshalText encodes the key as hex.
func (x XOnlyPk) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText decodes and validates a hex encoded x-only key.
func (x *XOnlyPk) UnmarshalText(text []byte) error {
	raw, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}

	pubKey, err := schnorr.ParsePubKey(raw)
	if err != nil {
		return err
	}

	*x = NewXOnlyPk(pubKey)

	return nil
}

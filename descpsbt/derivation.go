package descpsbt

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/bpwallet/bpstd/derive"
	"github.com/bpwallet/bpstd/fn"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

var (
	// ErrPathTooShort is returned when a PSBT derivation path is too short
	// to end in a keychain and an index.
	ErrPathTooShort = errors.New("derivation path has no terminal")

	// ErrHardenedTerminal is returned when the last two steps of a PSBT
	// derivation path can't be a terminal.
	ErrHardenedTerminal = errors.New("derivation path doesn't end in a " +
		"normal keychain and index")
)

type (
	bip32DerivationPredicate func(*psbt.Bip32Derivation) bool

	taprootBip32DerivationPredicate func(*psbt.TaprootBip32Derivation) bool
)

var (
	// bip32DerivationKeyEqual returns a predicate that returns true if the
	// BIP-0032 derivation path's public key matches the given target.
	bip32DerivationKeyEqual = func(target []byte) bip32DerivationPredicate {
		return func(d *psbt.Bip32Derivation) bool {
			return bytes.Equal(d.PubKey, target)
		}
	}

	// taprootBip32DerivationKeyEqual returns a predicate that returns true
	// if the Taproot BIP-0032 derivation path's public key matches the
	// given target.
	taprootBip32DerivationKeyEqual = func(
		target []byte) taprootBip32DerivationPredicate {

		return func(d *psbt.TaprootBip32Derivation) bool {
			return bytes.Equal(d.XOnlyPubKey, target)
		}
	}
)

// Bip32Derivation converts a compressed keyset entry into the PSBT BIP-0032
// derivation record.
func Bip32Derivation(pk derive.CompressedPk,
	origin derive.KeyOrigin) *psbt.Bip32Derivation {

	return &psbt.Bip32Derivation{
		PubKey:               fn.CopySlice(pk[:]),
		MasterKeyFingerprint: origin.MasterFp().Uint32(),
		Bip32Path:            origin.Derivation(),
	}
}

// TaprootBip32Derivation converts an x-only keyset entry into the PSBT
// Taproot BIP-0032 derivation record.
func TaprootBip32Derivation(pk derive.XOnlyPk,
	derivation derive.TapDerivation) *psbt.TaprootBip32Derivation {

	leafHashes := fn.Map(
		derivation.LeafHashes, func(h chainhash.Hash) []byte {
			return fn.CopySlice(h[:])
		},
	)

	return &psbt.TaprootBip32Derivation{
		XOnlyPubKey:          fn.CopySlice(pk[:]),
		LeafHashes:           leafHashes,
		MasterKeyFingerprint: derivation.Origin.MasterFp().Uint32(),
		Bip32Path:            derivation.Origin.Derivation(),
	}
}

// AddBip32Derivation adds the given target BIP-0032 derivation to the list of
// derivations if it is not already present.
func AddBip32Derivation(derivations []*psbt.Bip32Derivation,
	target *psbt.Bip32Derivation) []*psbt.Bip32Derivation {

	if target == nil {
		return derivations
	}

	predicate := bip32DerivationKeyEqual(target.PubKey)
	if fn.Any(derivations, predicate) {
		return derivations
	}

	return append(derivations, target)
}

// AddTaprootBip32Derivation adds the given target Taproot BIP-0032 derivation
// to the list of derivations if it is not already present.
func AddTaprootBip32Derivation(derivations []*psbt.TaprootBip32Derivation,
	target *psbt.TaprootBip32Derivation) []*psbt.TaprootBip32Derivation {

	if target == nil {
		return derivations
	}

	predicate := taprootBip32DerivationKeyEqual(target.XOnlyPubKey)
	if fn.Any(derivations, predicate) {
		return derivations
	}

	return append(derivations, target)
}

// KeyOriginFromBip32Derivation extracts the key and its origin from the given
// PSBT BIP-0032 derivation. The path is expected to end in a terminal:
//
//	m/<origin path>/keychain/index
func KeyOriginFromBip32Derivation(
	d *psbt.Bip32Derivation) (derive.CompressedPk, derive.KeyOrigin, error) {

	if len(d.PubKey) == 0 {
		return derive.CompressedPk{}, derive.KeyOrigin{},
			fmt.Errorf("pubkey is missing")
	}

	pubKey, err := btcec.ParsePubKey(d.PubKey)
	if err != nil {
		return derive.CompressedPk{}, derive.KeyOrigin{},
			fmt.Errorf("error parsing pubkey: %w", err)
	}

	origin, err := keyOriginFromPath(d.MasterKeyFingerprint, d.Bip32Path)
	if err != nil {
		return derive.CompressedPk{}, derive.KeyOrigin{}, err
	}

	return derive.NewCompressedPk(pubKey), origin, nil
}

// TapDerivationFromTaprootBip32Derivation extracts the x-only key and its
// Taproot derivation from the given PSBT Taproot BIP-0032 derivation.
func TapDerivationFromTaprootBip32Derivation(
	d *psbt.TaprootBip32Derivation) (derive.XOnlyPk, derive.TapDerivation,
	error) {

	pubKey, err := schnorr.ParsePubKey(d.XOnlyPubKey)
	if err != nil {
		return derive.XOnlyPk{}, derive.TapDerivation{},
			fmt.Errorf("error parsing x-only pubkey: %w", err)
	}

	origin, err := keyOriginFromPath(d.MasterKeyFingerprint, d.Bip32Path)
	if err != nil {
		return derive.XOnlyPk{}, derive.TapDerivation{}, err
	}

	leafHashes := make([]chainhash.Hash, 0, len(d.LeafHashes))
	for _, leafHash := range d.LeafHashes {
		hash, err := chainhash.NewHash(leafHash)
		if err != nil {
			return derive.XOnlyPk{}, derive.TapDerivation{},
				fmt.Errorf("invalid leaf hash: %w", err)
		}
		leafHashes = append(leafHashes, *hash)
	}

	return derive.NewXOnlyPk(pubKey), derive.TapDerivation{
		LeafHashes: leafHashes,
		Origin:     origin,
	}, nil
}

// keyOriginFromPath splits the terminal off the end of a full derivation
// path.
func keyOriginFromPath(fingerprint uint32,
	path []uint32) (derive.KeyOrigin, error) {

	if len(path) < 2 {
		return derive.KeyOrigin{}, fmt.Errorf("%w: %v", ErrPathTooShort,
			derive.DerivationPath(path))
	}

	keychain, index := path[len(path)-2], path[len(path)-1]
	if keychain > uint32(^uint8(0)) || index >= derive.HardenedKeyStart {
		return derive.KeyOrigin{}, fmt.Errorf("%w: %v",
			ErrHardenedTerminal, derive.DerivationPath(path))
	}

	origin := derive.XpubOrigin{
		MasterFp:   derive.FingerprintFromUint32(fingerprint),
		Derivation: derive.DerivationPath(path[:len(path)-2]),
	}
	terminal := derive.NewTerminal(
		uint8(keychain), derive.MustNormalIndex(index),
	)

	return derive.NewKeyOrigin(origin, terminal), nil
}

package descriptor

import (
	"github.com/bpwallet/bpstd/derive"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// NoVar is the auxiliary variable type of templates that don't have any.
type NoVar struct{}

// ComprKeyset maps compressed public keys to the origin a signer needs to
// find their private keys. Iteration follows insertion order.
type ComprKeyset = orderedmap.OrderedMap[derive.CompressedPk, derive.KeyOrigin]

// XOnlyKeyset maps x-only public keys to their Taproot derivation records.
// Iteration follows insertion order.
type XOnlyKeyset = orderedmap.OrderedMap[derive.XOnlyPk, derive.TapDerivation]

// NewComprKeyset returns an empty compressed keyset.
func NewComprKeyset() *ComprKeyset {
	return orderedmap.New[derive.CompressedPk, derive.KeyOrigin]()
}

// NewXOnlyKeyset returns an empty x-only keyset.
func NewXOnlyKeyset() *XOnlyKeyset {
	return orderedmap.New[derive.XOnlyPk, derive.TapDerivation]()
}

// MergeComprKeyset adds all entries of src to dst. Entries for keys already
// present in dst are overwritten in place, which is a no-op for keysets of
// the same descriptor since a key always maps to the same origin.
func MergeComprKeyset(dst, src *ComprKeyset) {
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		dst.Set(pair.Key, pair.Value)
	}
}

// MergeXOnlyKeyset adds all entries of src to dst.
func MergeXOnlyKeyset(dst, src *XOnlyKeyset) {
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		dst.Set(pair.Key, pair.Value)
	}
}

// DeriveScripts is implemented by everything that resolves a leaf into an
// output script.
type DeriveScripts interface {
	// Keychains returns the keychains scripts can be derived at.
	Keychains() derive.KeychainRange

	// Derive returns the script at the given leaf. It is deterministic
	// and never fails for a keychain within Keychains().
	Derive(keychain uint8, index derive.NormalIndex) DerivedScript
}

// Descriptor is the uniform view on script templates used by the signing and
// PSBT layers. K is the key type, V the type of auxiliary policy variables.
type Descriptor[K, V any] interface {
	DeriveScripts

	// Keys returns the keys the descriptor is built from.
	Keys() []K

	// Vars returns the auxiliary policy variables.
	Vars() []V

	// Xpubs returns the extended keys, with origin, of all keys.
	Xpubs() []derive.XpubSpec

	// ComprKeyset returns the compressed keys used at the terminal
	// together with their origin. It is empty for Taproot templates.
	ComprKeyset(terminal derive.Terminal) *ComprKeyset

	// XOnlyKeyset returns the x-only keys used at the terminal together
	// with their Taproot derivation. It is empty for segwit v0
	// templates.
	XOnlyKeyset(terminal derive.Terminal) *XOnlyKeyset
}

// StdDescriptor is the descriptor interface instantiated with the standard
// derivable key.
type StdDescriptor = Descriptor[*derive.XpubDerivable, NoVar]

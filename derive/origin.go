package derive

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// KeyOrigin tells a signer which extended key and which leaf produced a
// derived public key.
type KeyOrigin struct {
	// Origin is the origin of the extended key the leaf derives from.
	Origin XpubOrigin

	// Terminal is the leaf below the extended key.
	Terminal Terminal
}

// NewKeyOrigin combines the origin of an extended key with a terminal.
func NewKeyOrigin(origin XpubOrigin, terminal Terminal) KeyOrigin {
	return KeyOrigin{
		Origin: XpubOrigin{
			MasterFp:   origin.MasterFp,
			Derivation: origin.Derivation.Clone(),
		},
		Terminal: terminal,
	}
}

// MasterFp returns the fingerprint of the master key.
func (k KeyOrigin) MasterFp() Fingerprint {
	return k.Origin.MasterFp
}

// Derivation returns the full path from the master key to the derived key.
func (k KeyOrigin) Derivation() DerivationPath {
	return k.Origin.Derivation.Extend(k.Terminal.Steps()...)
}

// Equal returns true if both origins point at the same key.
func (k KeyOrigin) Equal(other KeyOrigin) bool {
	return k.Terminal == other.Terminal && k.Origin.Equal(other.Origin)
}

// String renders the origin as "[fingerprint/full/path]".
func (k KeyOrigin) String() string {
	return fmt.Sprintf("[%v/%v]", k.Origin.MasterFp, k.Derivation())
}

// TapKeyRole is the role a key plays in a Taproot output.
type TapKeyRole uint8

const (
	// TapKeyRoleInternal is the internal key of the output, spendable
	// through the key path once tweaked.
	TapKeyRoleInternal TapKeyRole = iota

	// TapKeyRoleScript is a key used inside one or more script leaves.
	TapKeyRoleScript
)

// String returns a human readable name for the role.
func (r TapKeyRole) String() string {
	switch r {
	case TapKeyRoleInternal:
		return "internal"

	case TapKeyRoleScript:
		return "script"

	default:
		return fmt.Sprintf("TapKeyRole(%d)", uint8(r))
	}
}

// TapDerivation is the Taproot flavor of KeyOrigin: besides the origin it
// lists the hashes of the script leaves the key is used in. A key without leaf
// hashes is the internal key of the output.
type TapDerivation struct {
	// LeafHashes are the tap leaf hashes of all script leaves the key
	// appears in.
	LeafHashes []chainhash.Hash

	// Origin is the origin of the key.
	Origin KeyOrigin
}

// NewInternalKeyDerivation returns the derivation record of an internal key.
func NewInternalKeyDerivation(origin XpubOrigin,
	terminal Terminal) TapDerivation {

	return TapDerivation{
		Origin: NewKeyOrigin(origin, terminal),
	}
}

// Role returns the role of the key in the output.
func (t TapDerivation) Role() TapKeyRole {
	if len(t.LeafHashes) == 0 {
		return TapKeyRoleInternal
	}

	return TapKeyRoleScript
}

// IsInternalKey is a short hand for Role() == TapKeyRoleInternal.
func (t TapDerivation) IsInternalKey() bool {
	return t.Role() == TapKeyRoleInternal
}

// Equal returns true if both derivations are identical.
func (t TapDerivation) Equal(other TapDerivation) bool {
	if len(t.LeafHashes) != len(other.LeafHashes) {
		return false
	}
	for i := range t.LeafHashes {
		if t.LeafHashes[i] != other.LeafHashes[i] {
			return false
		}
	}

	return t.Origin.Equal(other.Origin)
}

package descriptor

import (
	"fmt"

	"github.com/bpwallet/bpstd/derive"
)

// TrKey is the key-path only Taproot template over a single internal key.
type TrKey[K derive.DeriveXOnly] struct {
	internalKey K
}

// A compile time check to ensure TrKey satisfies the Descriptor interface.
var _ StdDescriptor = (*TrKey[*derive.XpubDerivable])(nil)

// NewTrKey creates a key-path only Taproot descriptor.
func NewTrKey[K derive.DeriveXOnly](internalKey K) TrKey[K] {
	return TrKey[K]{internalKey: internalKey}
}

// InternalKey returns the wrapped internal key.
func (t TrKey[K]) InternalKey() K {
	return t.internalKey
}

// Keychains returns the keychains of the internal key.
func (t TrKey[K]) Keychains() derive.KeychainRange {
	return t.internalKey.Keychains()
}

// Derive returns the Taproot output of the internal key at the given leaf.
func (t TrKey[K]) Derive(keychain uint8,
	index derive.NormalIndex) DerivedScript {

	return TaprootKeyOnly{
		InternalKey: t.internalKey.DeriveXOnly(keychain, index),
	}
}

// Keys returns the internal key.
func (t TrKey[K]) Keys() []K {
	return []K{t.internalKey}
}

// Vars returns nothing.
func (t TrKey[K]) Vars() []NoVar {
	return nil
}

// Xpubs returns the extended key of the internal key.
func (t TrKey[K]) Xpubs() []derive.XpubSpec {
	return []derive.XpubSpec{t.internalKey.XpubSpec()}
}

// ComprKeyset is always empty for Taproot.
func (t TrKey[K]) ComprKeyset(derive.Terminal) *ComprKeyset {
	return NewComprKeyset()
}

// XOnlyKeyset returns the internal key used at the terminal together with
// its derivation.
func (t TrKey[K]) XOnlyKeyset(terminal derive.Terminal) *XOnlyKeyset {
	pubKey := t.internalKey.DeriveXOnly(terminal.Keychain, terminal.Index)

	keyset := NewXOnlyKeyset()
	keyset.Set(
		derive.NewXOnlyPk(pubKey),
		derive.NewInternalKeyDerivation(
			t.internalKey.XpubSpec().Origin(), terminal,
		),
	)

	return keyset
}

// String renders the descriptor as "tr(KEY)".
func (t TrKey[K]) String() string {
	return fmt.Sprintf("tr(%v)", t.internalKey)
}

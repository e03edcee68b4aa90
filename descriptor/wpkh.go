package descriptor

import (
	"fmt"

	"github.com/bpwallet/bpstd/derive"
)

// Wpkh is the pay-to-witness-pubkey-hash template over a single key.
type Wpkh[K derive.DeriveCompr] struct {
	key K
}

// A compile time check to ensure Wpkh satisfies the Descriptor interface.
var _ StdDescriptor = (*Wpkh[*derive.XpubDerivable])(nil)

// NewWpkh creates a P2WPKH descriptor for the given key.
func NewWpkh[K derive.DeriveCompr](key K) Wpkh[K] {
	return Wpkh[K]{key: key}
}

// Key returns the wrapped key.
func (w Wpkh[K]) Key() K {
	return w.key
}

// Keychains returns the keychains of the wrapped key.
func (w Wpkh[K]) Keychains() derive.KeychainRange {
	return w.key.Keychains()
}

// Derive returns the P2WPKH script of the key at the given leaf.
func (w Wpkh[K]) Derive(keychain uint8,
	index derive.NormalIndex) DerivedScript {

	return BareScript{
		Script: p2wpkhScript(w.key.DeriveCompr(keychain, index)),
	}
}

// Keys returns the single key of the template.
func (w Wpkh[K]) Keys() []K {
	return []K{w.key}
}

// Vars returns nothing, P2WPKH has no policy variables.
func (w Wpkh[K]) Vars() []NoVar {
	return nil
}

// Xpubs returns the extended key of the single key.
func (w Wpkh[K]) Xpubs() []derive.XpubSpec {
	return []derive.XpubSpec{w.key.XpubSpec()}
}

// ComprKeyset returns the key used at the terminal and its origin.
func (w Wpkh[K]) ComprKeyset(terminal derive.Terminal) *ComprKeyset {
	pubKey := w.key.DeriveCompr(terminal.Keychain, terminal.Index)

	keyset := NewComprKeyset()
	keyset.Set(
		derive.NewCompressedPk(pubKey),
		derive.NewKeyOrigin(w.key.XpubSpec().Origin(), terminal),
	)

	return keyset
}

// XOnlyKeyset is always empty for P2WPKH.
func (w Wpkh[K]) XOnlyKeyset(derive.Terminal) *XOnlyKeyset {
	return NewXOnlyKeyset()
}

// String renders the descriptor as "wpkh(KEY)".
func (w Wpkh[K]) String() string {
	return fmt.Sprintf("wpkh(%v)", w.key)
}

package descriptor

import (
	"fmt"

	"github.com/bpwallet/bpstd/derive"
	"github.com/bpwallet/bpstd/fn"
)

// StdKind enumerates the script templates a standard descriptor can hold.
type StdKind uint8

const (
	// StdKindWpkh is a P2WPKH descriptor.
	StdKindWpkh StdKind = iota + 1

	// StdKindTrKey is a key-path only Taproot descriptor.
	StdKindTrKey
)

// String returns the descriptor script name of the kind.
func (k StdKind) String() string {
	switch k {
	case StdKindWpkh:
		return "wpkh"

	case StdKindTrKey:
		return "tr"

	default:
		return fmt.Sprintf("StdKind(%d)", uint8(k))
	}
}

// DescriptorStd is one of the script templates supported by the wallet. S
// provides both derivation capabilities, so either template can be built from
// the same key. The zero value holds no template and must not be used.
type DescriptorStd[S derive.DeriveSet] struct {
	kind  StdKind
	wpkh  Wpkh[S]
	trKey TrKey[S]
}

// A compile time check to ensure DescriptorStd satisfies the Descriptor
// interface.
var _ StdDescriptor = (*DescriptorStd[*derive.XpubDerivable])(nil)

// NewStdWpkh wraps a P2WPKH descriptor.
func NewStdWpkh[S derive.DeriveSet](wpkh Wpkh[S]) DescriptorStd[S] {
	return DescriptorStd[S]{
		kind: StdKindWpkh,
		wpkh: wpkh,
	}
}

// NewStdTrKey wraps a key-path only Taproot descriptor.
func NewStdTrKey[S derive.DeriveSet](trKey TrKey[S]) DescriptorStd[S] {
	return DescriptorStd[S]{
		kind:  StdKindTrKey,
		trKey: trKey,
	}
}

// Kind returns the active template.
func (d DescriptorStd[S]) Kind() StdKind {
	return d.kind
}

// AsWpkh returns the P2WPKH template if it is the active one.
func (d DescriptorStd[S]) AsWpkh() (Wpkh[S], bool) {
	return d.wpkh, d.kind == StdKindWpkh
}

// AsTrKey returns the Taproot template if it is the active one.
func (d DescriptorStd[S]) AsTrKey() (TrKey[S], bool) {
	return d.trKey, d.kind == StdKindTrKey
}

// invalidKind panics on a descriptor that was not created through one of the
// constructors.
func (d DescriptorStd[S]) invalidKind() {
	panic(fmt.Sprintf("descriptor holds no template: %v", d.kind))
}

// Keychains returns the keychains of the active template.
func (d DescriptorStd[S]) Keychains() derive.KeychainRange {
	switch d.kind {
	case StdKindWpkh:
		return d.wpkh.Keychains()

	case StdKindTrKey:
		return d.trKey.Keychains()
	}

	d.invalidKind()
	return derive.KeychainRange{}
}

// Derive returns the script of the active template at the given leaf.
func (d DescriptorStd[S]) Derive(keychain uint8,
	index derive.NormalIndex) DerivedScript {

	switch d.kind {
	case StdKindWpkh:
		return d.wpkh.Derive(keychain, index)

	case StdKindTrKey:
		return d.trKey.Derive(keychain, index)
	}

	d.invalidKind()
	return nil
}

// Keys returns a fresh slice with the keys of the active template.
func (d DescriptorStd[S]) Keys() []S {
	switch d.kind {
	case StdKindWpkh:
		return fn.CopySlice(d.wpkh.Keys())

	case StdKindTrKey:
		return fn.CopySlice(d.trKey.Keys())
	}

	d.invalidKind()
	return nil
}

// Vars returns the policy variables of the active template.
func (d DescriptorStd[S]) Vars() []NoVar {
	switch d.kind {
	case StdKindWpkh:
		return fn.CopySlice(d.wpkh.Vars())

	case StdKindTrKey:
		return fn.CopySlice(d.trKey.Vars())
	}

	d.invalidKind()
	return nil
}

// Xpubs returns a fresh slice with the extended keys of the active template.
func (d DescriptorStd[S]) Xpubs() []derive.XpubSpec {
	switch d.kind {
	case StdKindWpkh:
		return fn.CopySlice(d.wpkh.Xpubs())

	case StdKindTrKey:
		return fn.CopySlice(d.trKey.Xpubs())
	}

	d.invalidKind()
	return nil
}

// ComprKeyset returns the compressed keyset of the active template.
func (d DescriptorStd[S]) ComprKeyset(terminal derive.Terminal) *ComprKeyset {
	switch d.kind {
	case StdKindWpkh:
		return d.wpkh.ComprKeyset(terminal)

	case StdKindTrKey:
		return d.trKey.ComprKeyset(terminal)
	}

	d.invalidKind()
	return nil
}

// XOnlyKeyset returns the x-only keyset of the active template.
func (d DescriptorStd[S]) XOnlyKeyset(terminal derive.Terminal) *XOnlyKeyset {
	switch d.kind {
	case StdKindWpkh:
		return d.wpkh.XOnlyKeyset(terminal)

	case StdKindTrKey:
		return d.trKey.XOnlyKeyset(terminal)
	}

	d.invalidKind()
	return nil
}

// String renders the active template.
func (d DescriptorStd[S]) String() string {
	switch d.kind {
	case StdKindWpkh:
		return d.wpkh.String()

	case StdKindTrKey:
		return d.trKey.String()

	default:
		return fmt.Sprintf("<invalid %v>", d.kind)
	}
}

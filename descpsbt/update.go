package descpsbt

import (
	"github.com/bpwallet/bpstd/derive"
	"github.com/bpwallet/bpstd/descriptor"
	"github.com/bpwallet/bpstd/fn"
	"github.com/btcsuite/btcd/btcutil/psbt"
	lfn "github.com/lightningnetwork/lnd/fn/v2"
)

// derivations converts both keysets of a descriptor at the terminal into PSBT
// derivation records. The internal key, if any, is returned separately.
func derivations[K, V any](d descriptor.Descriptor[K, V],
	terminal derive.Terminal) ([]*psbt.Bip32Derivation,
	[]*psbt.TaprootBip32Derivation, lfn.Option[derive.XOnlyPk]) {

	var (
		bip32       []*psbt.Bip32Derivation
		trBip32     []*psbt.TaprootBip32Derivation
		internalKey = lfn.None[derive.XOnlyPk]()
	)

	compr := d.ComprKeyset(terminal)
	for pair := compr.Oldest(); pair != nil; pair = pair.Next() {
		bip32 = append(bip32, Bip32Derivation(pair.Key, pair.Value))
	}

	xOnly := d.XOnlyKeyset(terminal)
	for pair := xOnly.Oldest(); pair != nil; pair = pair.Next() {
		trBip32 = append(
			trBip32, TaprootBip32Derivation(pair.Key, pair.Value),
		)

		if pair.Value.IsInternalKey() {
			internalKey = lfn.Some(pair.Key)
		}
	}

	return bip32, trBip32, internalKey
}

// UpdateInput adds the key origins of the descriptor at the given terminal to
// the PSBT input, so a signer can find the keys spending it. Derivations that
// are already present are left untouched.
func UpdateInput[K, V any](pIn *psbt.PInput, d descriptor.Descriptor[K, V],
	terminal derive.Terminal) {

	bip32, trBip32, internalKey := derivations(d, terminal)
	for _, derivation := range bip32 {
		pIn.Bip32Derivation = AddBip32Derivation(
			pIn.Bip32Derivation, derivation,
		)
	}
	for _, derivation := range trBip32 {
		pIn.TaprootBip32Derivation = AddTaprootBip32Derivation(
			pIn.TaprootBip32Derivation, derivation,
		)
	}

	internalKey.WhenSome(func(pk derive.XOnlyPk) {
		pIn.TaprootInternalKey = fn.CopySlice(pk[:])
	})
}

// UpdateOutput adds the key origins of the descriptor at the given terminal
// to the PSBT output, which lets a signer recognize it as its own change.
func UpdateOutput[K, V any](pOut *psbt.POutput, d descriptor.Descriptor[K, V],
	terminal derive.Terminal) {

	bip32, trBip32, internalKey := derivations(d, terminal)
	for _, derivation := range bip32 {
		pOut.Bip32Derivation = AddBip32Derivation(
			pOut.Bip32Derivation, derivation,
		)
	}
	for _, derivation := range trBip32 {
		pOut.TaprootBip32Derivation = AddTaprootBip32Derivation(
			pOut.TaprootBip32Derivation, derivation,
		)
	}

	internalKey.WhenSome(func(pk derive.XOnlyPk) {
		pOut.TaprootInternalKey = fn.CopySlice(pk[:])
	})
}

package descriptor

import (
	"errors"
	"fmt"

	"github.com/bpwallet/bpstd/fn"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

var (
	// ErrNoAddress is returned when a derived script has no address
	// representation.
	ErrNoAddress = errors.New("script has no address representation")
)

// DerivedScript is the result of resolving a descriptor at a single
// (keychain, index) leaf. It is a closed set: BareScript and TaprootKeyOnly
// are the only implementations.
type DerivedScript interface {
	// PkScript returns the output script the derived form pays to.
	PkScript() []byte

	// Address encodes the output script as an address of the given
	// network.
	Address(params *chaincfg.Params) (btcutil.Address, error)

	fmt.Stringer

	derivedScript()
}

// BareScript is a derived output that is fully described by its script.
type BareScript struct {
	// Script is the output script.
	Script []byte
}

// PkScript returns a copy of the script.
func (b BareScript) PkScript() []byte {
	return fn.CopySlice(b.Script)
}

// Address returns the single address the script pays to.
func (b BareScript) Address(params *chaincfg.Params) (btcutil.Address,
	error) {

	_, addrs, _, err := txscript.ExtractPkScriptAddrs(b.Script, params)
	if err != nil {
		return nil, err
	}
	if len(addrs) != 1 {
		return nil, fmt.Errorf("%w: %x", ErrNoAddress, b.Script)
	}

	return addrs[0], nil
}

// String returns the script as hex.
func (b BareScript) String() string {
	return fmt.Sprintf("%x", b.Script)
}

func (BareScript) derivedScript() {}

// TaprootKeyOnly is a Taproot output that can only be spent through the key
// path. It keeps the untweaked internal key, the output key commits to it
// with an empty script tree as defined by BIP-0086.
type TaprootKeyOnly struct {
	// InternalKey is the derived x-only internal key.
	InternalKey *btcec.PublicKey
}

// OutputKey returns the tweaked key that appears in the output script.
func (t TaprootKeyOnly) OutputKey() *btcec.PublicKey {
	return txscript.ComputeTaprootKeyNoScript(t.InternalKey)
}

// PkScript returns the segwit v1 output script of the output key.
func (t TaprootKeyOnly) PkScript() []byte {
	script := make([]byte, 0, 2+schnorr.PubKeyBytesLen)
	script = append(script, txscript.OP_1, txscript.OP_DATA_32)

	return append(script, schnorr.SerializePubKey(t.OutputKey())...)
}

// Address returns the P2TR address of the output key.
func (t TaprootKeyOnly) Address(params *chaincfg.Params) (btcutil.Address,
	error) {

	return btcutil.NewAddressTaproot(
		schnorr.SerializePubKey(t.OutputKey()), params,
	)
}

// String renders the internal key as "tr(<hex>)".
func (t TaprootKeyOnly) String() string {
	return fmt.Sprintf("tr(%x)", schnorr.SerializePubKey(t.InternalKey))
}

func (TaprootKeyOnly) derivedScript() {}

// p2wpkhScript returns the segwit v0 script paying to the HASH160 of the
// compressed key.
func p2wpkhScript(pubKey *btcec.PublicKey) []byte {
	script := make([]byte, 0, 2+20)
	script = append(script, txscript.OP_0, txscript.OP_DATA_20)

	return append(script, btcutil.Hash160(pubKey.SerializeCompressed())...)
}

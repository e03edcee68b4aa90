package derive

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

var (
	// ErrPrivateKey is returned when an extended private key is given
	// where only extended public keys are accepted.
	ErrPrivateKey = errors.New("extended private keys are not accepted")

	// ErrOriginDepth is returned when the length of a key origin path
	// doesn't match the depth of the extended key it describes.
	ErrOriginDepth = errors.New("key origin path length doesn't match " +
		"extended key depth")

	// ErrInvalidOrigin is returned when the "[fingerprint/path]" part of a
	// key expression is malformed.
	ErrInvalidOrigin = errors.New("invalid key origin")
)

// XpubOrigin describes where an extended key comes from: the fingerprint of
// the master key and the derivation path from the master to the key.
type XpubOrigin struct {
	// MasterFp is the fingerprint of the master key.
	MasterFp Fingerprint

	// Derivation is the path from the master key to the extended key.
	Derivation DerivationPath
}

// ParseXpubOrigin parses the "fingerprint/path" form found inside the square
// brackets of a key expression.
func ParseXpubOrigin(s string) (XpubOrigin, error) {
	fpStr, pathStr, _ := strings.Cut(s, "/")

	fp, err := ParseFingerprint(fpStr)
	if err != nil {
		return XpubOrigin{}, fmt.Errorf("%w: %v", ErrInvalidOrigin, err)
	}

	path, err := ParseDerivationPath(pathStr)
	if err != nil {
		return XpubOrigin{}, fmt.Errorf("%w: %v", ErrInvalidOrigin, err)
	}

	return XpubOrigin{
		MasterFp:   fp,
		Derivation: path,
	}, nil
}

// Equal returns true if both origins are identical.
func (o XpubOrigin) Equal(other XpubOrigin) bool {
	return o.MasterFp == other.MasterFp &&
		o.Derivation.Equal(other.Derivation)
}

// String renders the origin as "fingerprint/path".
func (o XpubOrigin) String() string {
	if len(o.Derivation) == 0 {
		return o.MasterFp.String()
	}

	return o.MasterFp.String() + "/" + o.Derivation.String()
}

// XpubSpec is an extended public key together with its origin. It is
// immutable once constructed.
type XpubSpec struct {
	origin XpubOrigin
	xpub   *hdkeychain.ExtendedKey
	pubKey *btcec.PublicKey

	// implicitOrigin is set when the origin was made up from the key
	// itself because none was given.
	implicitOrigin bool
}

// NewXpubSpec bundles the extended public key with the given origin. The
// origin path must be exactly as long as the key's depth.
func NewXpubSpec(origin XpubOrigin,
	xpub *hdkeychain.ExtendedKey) (XpubSpec, error) {

	if xpub.IsPrivate() {
		return XpubSpec{}, ErrPrivateKey
	}

	if len(origin.Derivation) != int(xpub.Depth()) {
		return XpubSpec{}, fmt.Errorf("%w: path %v has %d steps, key "+
			"depth is %d", ErrOriginDepth, origin.Derivation,
			len(origin.Derivation), xpub.Depth())
	}

	pubKey, err := xpub.ECPubKey()
	if err != nil {
		return XpubSpec{}, fmt.Errorf("unable to obtain public key: %w",
			err)
	}

	return XpubSpec{
		origin: XpubOrigin{
			MasterFp:   origin.MasterFp,
			Derivation: origin.Derivation.Clone(),
		},
		xpub:   xpub,
		pubKey: pubKey,
	}, nil
}

// NewXpubSpecUnknownOrigin treats the extended key as its own master: the
// origin is the key's own fingerprint with an empty path.
func NewXpubSpecUnknownOrigin(xpub *hdkeychain.ExtendedKey) (XpubSpec,
	error) {

	if xpub.IsPrivate() {
		return XpubSpec{}, ErrPrivateKey
	}

	pubKey, err := xpub.ECPubKey()
	if err != nil {
		return XpubSpec{}, fmt.Errorf("unable to obtain public key: %w",
			err)
	}

	return XpubSpec{
		origin: XpubOrigin{
			MasterFp:   FingerprintOf(pubKey),
			Derivation: DerivationPath{},
		},
		xpub:           xpub,
		pubKey:         pubKey,
		implicitOrigin: true,
	}, nil
}

// ParseXpubSpec parses "[fingerprint/path]xpub..." or a bare "xpub...".
func ParseXpubSpec(s string) (XpubSpec, error) {
	originStr, keyStr, hasOrigin, err := splitOrigin(s)
	if err != nil {
		return XpubSpec{}, err
	}

	xpub, err := hdkeychain.NewKeyFromString(keyStr)
	if err != nil {
		return XpubSpec{}, fmt.Errorf("invalid extended key: %w", err)
	}

	if !hasOrigin {
		return NewXpubSpecUnknownOrigin(xpub)
	}

	origin, err := ParseXpubOrigin(originStr)
	if err != nil {
		return XpubSpec{}, err
	}

	return NewXpubSpec(origin, xpub)
}

// splitOrigin separates an optional "[origin]" prefix from the key.
func splitOrigin(s string) (string, string, bool, error) {
	if !strings.HasPrefix(s, "[") {
		return "", s, false, nil
	}

	originStr, keyStr, ok := strings.Cut(s[1:], "]")
	if !ok {
		return "", "", false, fmt.Errorf("%w: missing closing "+
			"bracket", ErrInvalidOrigin)
	}

	return originStr, keyStr, true, nil
}

// Origin returns the key origin. The returned path is a copy.
func (x XpubSpec) Origin() XpubOrigin {
	return XpubOrigin{
		MasterFp:   x.origin.MasterFp,
		Derivation: x.origin.Derivation.Clone(),
	}
}

// Xpub returns the extended public key.
func (x XpubSpec) Xpub() *hdkeychain.ExtendedKey {
	return x.xpub
}

// PubKey returns the public key of the extended key itself.
func (x XpubSpec) PubKey() *btcec.PublicKey {
	return x.pubKey
}

// Fingerprint returns the fingerprint of the extended key itself, which is
// the parent fingerprint of its children.
func (x XpubSpec) Fingerprint() Fingerprint {
	return FingerprintOf(x.pubKey)
}

// Equal returns true if both specs carry the same key and origin.
func (x XpubSpec) Equal(other XpubSpec) bool {
	if x.xpub == nil || other.xpub == nil {
		return x.xpub == other.xpub
	}

	return x.origin.Equal(other.origin) &&
		x.implicitOrigin == other.implicitOrigin &&
		x.xpub.String() == other.xpub.String()
}

// HasOrigin returns false if the key was created without origin
// information, in which case the key acts as its own master.
func (x XpubSpec) HasOrigin() bool {
	return !x.implicitOrigin
}

// String renders the key as "[fingerprint/path]xpub...", or as the bare key
// if no origin was given.
func (x XpubSpec) String() string {
	if x.implicitOrigin {
		return x.xpub.String()
	}

	return fmt.Sprintf("[%v]%s", x.origin, x.xpub)
}

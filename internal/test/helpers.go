package test

import (
	"math/rand"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/cosmos/go-bip39"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	// Mnemonic is the well known BIP-0039 test mnemonic that the BIP-0084
	// and BIP-0086 reference vectors are based on.
	Mnemonic = "abandon abandon abandon abandon abandon abandon " +
		"abandon abandon abandon abandon abandon about"

	// MasterFingerprint is the fingerprint of the master key of
	// Mnemonic.
	MasterFingerprint = "73c5da0a"
)

// RandBytes returns a slice of random bytes of the given length.
func RandBytes(num int) []byte {
	randBytes := make([]byte, num)
	_, _ = rand.Read(randBytes)
	return randBytes
}

// RandPrivKey returns a fresh random private key.
func RandPrivKey(t require.TestingT) *btcec.PrivateKey {
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return privKey
}

// RandPubKey returns the public key of a fresh random private key.
func RandPubKey(t require.TestingT) *btcec.PublicKey {
	return RandPrivKey(t).PubKey()
}

// Seed returns the BIP-0039 seed of Mnemonic with an empty passphrase.
func Seed() []byte {
	return bip39.NewSeed(Mnemonic, "")
}

// MasterKey returns the BIP-0032 master private key of Mnemonic.
func MasterKey(t require.TestingT) *hdkeychain.ExtendedKey {
	master, err := hdkeychain.NewMaster(Seed(), &chaincfg.MainNetParams)
	require.NoError(t, err)
	return master
}

// AccountPath returns the hardened path m/purpose'/0'/account'.
func AccountPath(purpose, account uint32) []uint32 {
	return []uint32{
		purpose + hdkeychain.HardenedKeyStart,
		hdkeychain.HardenedKeyStart,
		account + hdkeychain.HardenedKeyStart,
	}
}

// AccountXpub derives the account level extended public key
// m/purpose'/0'/account' from the master key of Mnemonic.
func AccountXpub(t require.TestingT, purpose,
	account uint32) *hdkeychain.ExtendedKey {

	key := MasterKey(t)
	for _, step := range AccountPath(purpose, account) {
		var err error
		key, err = key.Derive(step)
		require.NoError(t, err)
	}

	xpub, err := key.Neuter()
	require.NoError(t, err)

	return xpub
}

var (
	// SeedGen draws master key seeds of the recommended length.
	SeedGen = rapid.SliceOfN(
		rapid.Byte(), hdkeychain.RecommendedSeedLen,
		hdkeychain.RecommendedSeedLen,
	)

	// XpubGen draws the extended public key of the master key of a drawn
	// seed, so failing cases shrink and replay with the seed.
	XpubGen = rapid.Custom(func(t *rapid.T) *hdkeychain.ExtendedKey {
		return masterXpub(t, SeedGen.Draw(t, "seed"))
	})
)

// RandXpub returns the extended public key of a random master key.
func RandXpub(t require.TestingT) *hdkeychain.ExtendedKey {
	return masterXpub(t, RandBytes(hdkeychain.RecommendedSeedLen))
}

// masterXpub returns the extended public key of the master key of seed.
func masterXpub(t require.TestingT, seed []byte) *hdkeychain.ExtendedKey {
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	require.NoError(t, err)

	xpub, err := master.Neuter()
	require.NoError(t, err)

	return xpub
}

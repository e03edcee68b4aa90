package derive

import (
	"encoding/json"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

// TestKeyOrigin tests the full derivation path of a leaf key.
func TestKeyOrigin(t *testing.T) {
	t.Parallel()

	origin, err := ParseXpubOrigin("73c5da0a/84h/0h/0h")
	require.NoError(t, err)

	keyOrigin := NewKeyOrigin(origin, NewTerminal(1, MustNormalIndex(9)))
	require.Equal(t, "[73c5da0a/84h/0h/0h/1/9]", keyOrigin.String())
	require.Equal(t, DerivationPath{
		84 + HardenedKeyStart, HardenedKeyStart, HardenedKeyStart, 1, 9,
	}, keyOrigin.Derivation())

	// The key origin owns its path.
	origin.Derivation[0] = 44 + HardenedKeyStart
	require.Equal(t, uint32(84+HardenedKeyStart), keyOrigin.Derivation()[0])

	other := NewKeyOrigin(origin, NewTerminal(1, MustNormalIndex(9)))
	require.False(t, keyOrigin.Equal(other))
}

// TestTapDerivationRole tests the role derived from the leaf hashes.
func TestTapDerivationRole(t *testing.T) {
	t.Parallel()

	origin, err := ParseXpubOrigin("73c5da0a/86h/0h/0h")
	require.NoError(t, err)

	internal := NewInternalKeyDerivation(origin, NewTerminal(0, NormalIndex{}))
	require.True(t, internal.IsInternalKey())
	require.Equal(t, "internal", internal.Role().String())

	script := internal
	script.LeafHashes = []chainhash.Hash{{0x01}}
	require.Equal(t, TapKeyRoleScript, script.Role())
	require.False(t, internal.Equal(script))
	require.True(t, internal.Equal(
		NewInternalKeyDerivation(origin, NewTerminal(0, NormalIndex{})),
	))
}

// TestKeyOriginJSON makes sure key origins have a readable JSON form.
func TestKeyOriginJSON(t *testing.T) {
	t.Parallel()

	origin, err := ParseXpubOrigin("73c5da0a/84h/0h/0h")
	require.NoError(t, err)

	keyOrigin := NewKeyOrigin(origin, NewTerminal(0, MustNormalIndex(4)))
	encoded, err := json.Marshal(keyOrigin)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"Origin": {"MasterFp": "73c5da0a", "Derivation": "84h/0h/0h"},
		"Terminal": "0/4"
	}`, string(encoded))

	var decoded KeyOrigin
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	require.True(t, keyOrigin.Equal(decoded))
}

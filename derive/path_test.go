package derive

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestNormalIndex tests the bounds of the normal index range.
func TestNormalIndex(t *testing.T) {
	t.Parallel()

	idx, err := NewNormalIndex(0)
	require.NoError(t, err)
	require.Equal(t, NormalIndex{}, idx)

	last, err := NewNormalIndex(HardenedKeyStart - 1)
	require.NoError(t, err)

	_, ok := last.Next()
	require.False(t, ok)

	_, err = NewNormalIndex(HardenedKeyStart)
	require.ErrorIs(t, err, ErrHardenedIndex)

	_, err = ParseNormalIndex("2147483648")
	require.ErrorIs(t, err, ErrHardenedIndex)

	_, err = ParseNormalIndex("-1")
	require.Error(t, err)

	next, ok := NormalIndexFromUint16(41).Next()
	require.True(t, ok)
	require.Equal(t, uint32(42), next.Index())
	require.Equal(t, "42", next.String())

	require.Panics(t, func() {
		MustNormalIndex(HardenedKeyStart + 5)
	})
}

// TestNormalIndexParseRoundTrip makes sure every normal index survives a
// format/parse cycle.
func TestNormalIndexParseRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.Uint32Range(0, HardenedKeyStart-1).Draw(t, "index")

		idx := MustNormalIndex(raw)
		parsed, err := ParseNormalIndex(idx.String())
		require.NoError(t, err)
		require.Equal(t, idx, parsed)
	})
}

// TestParseDerivationPath tests the accepted path notations.
func TestParseDerivationPath(t *testing.T) {
	t.Parallel()

	h := uint32(HardenedKeyStart)
	testCases := []struct {
		name     string
		input    string
		expected DerivationPath
		err      error
	}{{
		name:     "empty",
		input:    "",
		expected: DerivationPath{},
	}, {
		name:     "master only",
		input:    "m",
		expected: DerivationPath{},
	}, {
		name:     "h marker",
		input:    "84h/0h/0h",
		expected: DerivationPath{84 + h, h, h},
	}, {
		name:     "apostrophe with prefix",
		input:    "m/86'/1'/0'/1",
		expected: DerivationPath{86 + h, 1 + h, h, 1},
	}, {
		name:  "double marker",
		input: "84h'",
		err:   ErrInvalidPath,
	}, {
		name:  "not a number",
		input: "84h/x",
		err:   ErrInvalidPath,
	}, {
		name:  "raw hardened number",
		input: "2147483648",
		err:   ErrInvalidPath,
	}, {
		name:  "empty step",
		input: "84h//0",
		err:   ErrInvalidPath,
	}}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path, err := ParseDerivationPath(tc.input)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expected, path)
		})
	}
}

// TestDerivationPathRoundTrip makes sure formatted paths parse back into the
// same steps.
func TestDerivationPathRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		path := DerivationPath(rapid.SliceOfN(
			rapid.Uint32(), 0, 8,
		).Draw(t, "path"))

		parsed, err := ParseDerivationPath(path.String())
		require.NoError(t, err)
		require.True(t, path.Equal(parsed))
	})
}

// TestDerivationPathExtend makes sure extending never aliases the receiver.
func TestDerivationPathExtend(t *testing.T) {
	t.Parallel()

	base := make(DerivationPath, 2, 8)
	base[0], base[1] = 84+HardenedKeyStart, HardenedKeyStart

	a := base.Extend(0, 1)
	b := base.Extend(1, 2)

	require.Equal(t, DerivationPath{84 + HardenedKeyStart,
		HardenedKeyStart, 0, 1}, a)
	require.Equal(t, DerivationPath{84 + HardenedKeyStart,
		HardenedKeyStart, 1, 2}, b)
	require.Len(t, base, 2)

	clone := base.Clone()
	clone[0] = 0
	require.Equal(t, uint32(84+HardenedKeyStart), base[0])
}

// TestFingerprint tests fingerprint parsing and the PSBT integer encoding.
func TestFingerprint(t *testing.T) {
	t.Parallel()

	fp, err := ParseFingerprint("73c5da0a")
	require.NoError(t, err)
	require.Equal(t, Fingerprint{0x73, 0xc5, 0xda, 0x0a}, fp)
	require.Equal(t, "73c5da0a", fp.String())

	// The PSBT fields store the fingerprint bytes as a little-endian
	// integer.
	require.Equal(t, uint32(0x0adac573), fp.Uint32())
	require.Equal(t, fp, FingerprintFromUint32(fp.Uint32()))

	_, err = ParseFingerprint("73c5da")
	require.ErrorIs(t, err, ErrInvalidFingerprint)

	_, err = ParseFingerprint("zzc5da0a")
	require.ErrorIs(t, err, ErrInvalidFingerprint)
}

// TestTerminal tests terminal parsing and formatting.
func TestTerminal(t *testing.T) {
	t.Parallel()

	term, err := ParseTerminal("1/25")
	require.NoError(t, err)
	require.Equal(t, NewTerminal(1, MustNormalIndex(25)), term)
	require.Equal(t, "1/25", term.String())
	require.Equal(t, []uint32{1, 25}, term.Steps())

	term, err = ParseTerminal("/0/7")
	require.NoError(t, err)
	require.Equal(t, NewTerminal(0, MustNormalIndex(7)), term)

	_, err = ParseTerminal("0")
	require.Error(t, err)

	_, err = ParseTerminal("256/0")
	require.Error(t, err)

	_, err = ParseTerminal("0/2147483648")
	require.ErrorIs(t, err, ErrHardenedIndex)
}

// TestKeychainRange tests the half-open range semantics.
func TestKeychainRange(t *testing.T) {
	t.Parallel()

	require.Equal(t, 2, StdKeychains.Len())
	require.Equal(t, []uint8{0, 1}, StdKeychains.Keychains())
	require.True(t, StdKeychains.Contains(1))
	require.False(t, StdKeychains.Contains(2))

	empty := KeychainRange{Start: 3, End: 3}
	require.Zero(t, empty.Len())
	require.Empty(t, empty.Keychains())
	require.False(t, empty.Contains(3))

	top := KeychainRange{Start: 255, End: 256}
	require.Equal(t, 1, top.Len())
	require.Equal(t, []uint8{255}, top.Keychains())
	require.True(t, top.Contains(255))

	// Ends past the last keychain are capped.
	wide := KeychainRange{Start: 250, End: 300}
	require.Equal(t, 6, wide.Len())
	require.Equal(t, []uint8{250, 251, 252, 253, 254, 255}, wide.Keychains())
}

package descriptor

import (
	"context"
	"testing"

	"github.com/bpwallet/bpstd/derive"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestDeriveRange makes sure the parallel range derivation matches deriving
// every leaf one by one.
func TestDeriveRange(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		key := derivableGen.Draw(t, "key")

		var d StdDescriptor = NewStdWpkh(NewWpkh(key))
		if rapid.Bool().Draw(t, "taproot") {
			d = NewStdTrKey(NewTrKey(key))
		}

		keychain := uint8(rapid.IntRange(0, 1).Draw(t, "keychain"))
		from := derive.MustNormalIndex(rapid.Uint32Range(
			0, derive.HardenedKeyStart-64,
		).Draw(t, "from"))
		count := rapid.Uint32Range(0, 32).Draw(t, "count")

		scripts, err := DeriveRange(
			context.Background(), d, keychain, from, count,
		)
		require.NoError(t, err)
		require.Len(t, scripts, int(count))

		for i, script := range scripts {
			index := derive.MustNormalIndex(from.Index() + uint32(i))
			require.Equal(
				t, d.Derive(keychain, index).PkScript(),
				script.PkScript(),
			)
		}
	})
}

// TestDeriveRangeErrors tests the rejected range requests.
func TestDeriveRangeErrors(t *testing.T) {
	t.Parallel()

	d := NewStdWpkh(NewWpkh(randDerivable(t)))
	ctx := context.Background()

	_, err := DeriveRange(ctx, d, 2, derive.MustNormalIndex(0), 1)
	require.ErrorIs(t, err, ErrKeychainRange)

	last := derive.MustNormalIndex(derive.HardenedKeyStart - 1)
	scripts, err := DeriveRange(ctx, d, 0, last, 1)
	require.NoError(t, err)
	require.Len(t, scripts, 1)

	_, err = DeriveRange(ctx, d, 0, last, 2)
	require.ErrorIs(t, err, derive.ErrHardenedIndex)

	cancelledCtx, cancel := context.WithCancel(ctx)
	cancel()

	_, err = DeriveRange(cancelledCtx, d, 0, derive.MustNormalIndex(0), 8)
	require.ErrorIs(t, err, context.Canceled)
}

// TestKeysetRange tests aggregating keysets over many terminals.
func TestKeysetRange(t *testing.T) {
	t.Parallel()

	key := randDerivable(t)
	from := derive.MustNormalIndex(10)

	compr, xOnly, err := KeysetRange[*derive.XpubDerivable, NoVar](
		NewTrKey(key), 1, from, 5,
	)
	require.NoError(t, err)
	require.Zero(t, compr.Len())
	require.Equal(t, 5, xOnly.Len())

	// Entries are kept in index order.
	i := from.Index()
	for pair := xOnly.Oldest(); pair != nil; pair = pair.Next() {
		require.Equal(t, i, pair.Value.Origin.Terminal.Index.Index())
		require.Equal(t, uint8(1), pair.Value.Origin.Terminal.Keychain)
		i++
	}

	compr, xOnly, err = KeysetRange[*derive.XpubDerivable, NoVar](
		NewWpkh(key), 0, from, 3,
	)
	require.NoError(t, err)
	require.Equal(t, 3, compr.Len())
	require.Zero(t, xOnly.Len())

	_, _, err = KeysetRange[*derive.XpubDerivable, NoVar](
		NewWpkh(key), 7, from, 3,
	)
	require.ErrorIs(t, err, ErrKeychainRange)
}

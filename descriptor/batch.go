package descriptor

import (
	"context"
	"errors"
	"fmt"

	"github.com/bpwallet/bpstd/derive"
	"github.com/bpwallet/bpstd/fn"
)

var (
	// ErrKeychainRange is returned when a keychain is requested that the
	// descriptor doesn't derive.
	ErrKeychainRange = errors.New("keychain outside of descriptor range")
)

// DeriveRange derives the scripts of count consecutive indices of a keychain,
// starting at from. The leaves are derived concurrently, the result is in
// index order.
func DeriveRange(ctx context.Context, d DeriveScripts, keychain uint8,
	from derive.NormalIndex, count uint32) ([]DerivedScript, error) {

	if !d.Keychains().Contains(keychain) {
		return nil, fmt.Errorf("%w: keychain %d, range %v",
			ErrKeychainRange, keychain, d.Keychains())
	}

	end := uint64(from.Index()) + uint64(count)
	if end > derive.HardenedKeyStart {
		return nil, fmt.Errorf("%w: range %v+%d", derive.ErrHardenedIndex,
			from, count)
	}

	positions := make([]uint32, count)
	for i := range positions {
		positions[i] = uint32(i)
	}

	log.Debugf("Deriving %d script(s) at %d/%v..%d", count, keychain, from,
		end)

	scripts := make([]DerivedScript, count)
	err := fn.ParSlice(ctx, positions, func(ctx context.Context,
		pos uint32) error {

		if err := ctx.Err(); err != nil {
			return err
		}

		index := derive.MustNormalIndex(from.Index() + pos)
		scripts[pos] = d.Derive(keychain, index)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return scripts, nil
}

// KeysetRange collects the keysets of count consecutive indices of a
// keychain into one compressed and one x-only keyset, in index order.
func KeysetRange[K, V any](d Descriptor[K, V], keychain uint8,
	from derive.NormalIndex, count uint32) (*ComprKeyset, *XOnlyKeyset,
	error) {

	if !d.Keychains().Contains(keychain) {
		return nil, nil, fmt.Errorf("%w: keychain %d, range %v",
			ErrKeychainRange, keychain, d.Keychains())
	}

	if uint64(from.Index())+uint64(count) > derive.HardenedKeyStart {
		return nil, nil, fmt.Errorf("%w: range %v+%d",
			derive.ErrHardenedIndex, from, count)
	}

	compr, xOnly := NewComprKeyset(), NewXOnlyKeyset()
	for i := uint32(0); i < count; i++ {
		terminal := derive.NewTerminal(
			keychain, derive.MustNormalIndex(from.Index()+i),
		)

		MergeComprKeyset(compr, d.ComprKeyset(terminal))
		MergeXOnlyKeyset(xOnly, d.XOnlyKeyset(terminal))
	}

	return compr, xOnly, nil
}

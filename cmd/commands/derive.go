package commands

import (
	"encoding/hex"
	"fmt"
	"math"

	"github.com/bpwallet/bpstd/derive"
	"github.com/bpwallet/bpstd/descriptor"
	"github.com/urfave/cli"
)

const (
	defaultDeriveCount = 10
)

func deriveCommand(state *appState) cli.Command {
	return cli.Command{
		Name:      "derive",
		ShortName: "d",
		Usage:     "Derive addresses of one keychain.",
		Description: `
	Derives a range of consecutive addresses of a keychain of the
	descriptor, together with their output scripts.
	`,
		Flags: []cli.Flag{
			cli.UintFlag{
				Name:  "keychain",
				Usage: "the keychain to derive, 0 is receive and 1 change by convention",
			},
			cli.UintFlag{
				Name:  "from",
				Usage: "the first address index to derive",
			},
			cli.UintFlag{
				Name:  "count",
				Value: defaultDeriveCount,
				Usage: "the number of addresses to derive",
			},
		},
		Action: state.deriveAddresses,
	}
}

// derivedAddress is a single entry of the derive command output.
type derivedAddress struct {
	Terminal derive.Terminal `json:"terminal"`
	Address  string          `json:"address"`
	PkScript string          `json:"pk_script"`
}

func (s *appState) deriveAddresses(ctx *cli.Context) error {
	std, err := s.descriptor()
	if err != nil {
		return err
	}

	params, err := s.chainParams()
	if err != nil {
		return err
	}

	keychain := ctx.Uint("keychain")
	if keychain > math.MaxUint8 {
		return fmt.Errorf("keychain %d out of range", keychain)
	}

	from, err := derive.NewNormalIndex(uint32(ctx.Uint("from")))
	if err != nil {
		return err
	}

	count := ctx.Uint("count")
	if count > math.MaxUint32 {
		return fmt.Errorf("count %d out of range", count)
	}

	ctxc, cancel := s.shutdownContext()
	defer cancel()

	scripts, err := descriptor.DeriveRange(
		ctxc, std, uint8(keychain), from, uint32(count),
	)
	if err != nil {
		return err
	}

	addresses := make([]derivedAddress, 0, len(scripts))
	for i, script := range scripts {
		addr, err := script.Address(params)
		if err != nil {
			return err
		}

		index := derive.MustNormalIndex(from.Index() + uint32(i))
		addresses = append(addresses, derivedAddress{
			Terminal: derive.NewTerminal(uint8(keychain), index),
			Address:  addr.EncodeAddress(),
			PkScript: hex.EncodeToString(script.PkScript()),
		})
	}

	return s.printJSON(addresses)
}

func keysetCommand(state *appState) cli.Command {
	return cli.Command{
		Name:      "keyset",
		ShortName: "k",
		Usage:     "Show the keys and key origins used at a terminal.",
		Description: `
	Prints the compressed and x-only keys the descriptor uses at the given
	terminal, together with the key origin information a signer needs.
	`,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "terminal",
				Value: "0/0",
				Usage: "the terminal in the form <keychain>/<index>",
			},
			cli.UintFlag{
				Name:  "count",
				Value: 1,
				Usage: "the number of consecutive terminals to include",
			},
		},
		Action: state.showKeyset,
	}
}

// keysetResponse is the output of the keyset command.
type keysetResponse struct {
	Compressed *descriptor.ComprKeyset `json:"compressed"`
	XOnly      *descriptor.XOnlyKeyset `json:"x_only"`
}

func (s *appState) showKeyset(ctx *cli.Context) error {
	std, err := s.descriptor()
	if err != nil {
		return err
	}

	terminal, err := derive.ParseTerminal(ctx.String("terminal"))
	if err != nil {
		return err
	}

	count := ctx.Uint("count")
	if count > math.MaxUint32 {
		return fmt.Errorf("count %d out of range", count)
	}

	compr, xOnly, err := descriptor.KeysetRange[
		*derive.XpubDerivable, descriptor.NoVar,
	](std, terminal.Keychain, terminal.Index, uint32(count))
	if err != nil {
		return err
	}

	return s.printJSON(keysetResponse{
		Compressed: compr,
		XOnly:      xOnly,
	})
}

package commands

import (
	"errors"
	"fmt"

	"github.com/bpwallet/bpstd/locktime"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/urfave/cli"
)

const (
	lockKindAnytime   = "anytime"
	lockKindTimestamp = "timestamp"
	lockKindHeight    = "height"
)

func locktimeCommand(state *appState) cli.Command {
	return cli.Command{
		Name:      "locktime",
		ShortName: "l",
		Usage:     "Parse or create an absolute lock time.",
		ArgsUsage: "[none | time(N) | height(N)]",
		Description: `
	Parses the given lock time and prints its kind together with the value
	serialized in a transaction. With --now a lock time at the current
	time is created instead.
	`,
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "now",
				Usage: "create a lock time at the current time",
			},
		},
		Action: state.parseLockTime,
	}
}

// lockTimeResponse is the output of the locktime command.
type lockTimeResponse struct {
	Kind      string `json:"kind"`
	Consensus uint32 `json:"consensus"`
	Text      string `json:"text"`
}

func (s *appState) parseLockTime(ctx *cli.Context) error {
	if ctx.Bool("now") {
		timestamp, err := locktime.SinceNow(clock.NewDefaultClock())
		if err != nil {
			return err
		}

		return s.printJSON(timestampResponse(timestamp))
	}

	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "locktime")
	}

	resp, err := parseLockTime(ctx.Args().First())
	if err != nil {
		return err
	}

	return s.printJSON(resp)
}

// parseLockTime parses text as a timestamp lock, falling back to a height
// lock if the text isn't of the time form.
func parseLockTime(text string) (*lockTimeResponse, error) {
	timestamp, err := locktime.ParseTimestamp(text)
	if err == nil {
		return timestampResponse(timestamp), nil
	}

	var parseErr *locktime.ParseError
	if !errors.As(err, &parseErr) ||
		parseErr.Kind != locktime.InvalidDescriptor {

		return nil, err
	}

	height, err := locktime.ParseHeight(text)
	if err != nil {
		return nil, fmt.Errorf("unable to parse lock time: %w", err)
	}

	resp := &lockTimeResponse{
		Kind:      lockKindHeight,
		Consensus: height.Consensus(),
		Text:      height.String(),
	}
	if height.IsAnytime() {
		resp.Kind = lockKindAnytime
	}

	return resp, nil
}

func timestampResponse(timestamp locktime.Timestamp) *lockTimeResponse {
	resp := &lockTimeResponse{
		Kind:      lockKindTimestamp,
		Consensus: timestamp.Consensus(),
		Text:      timestamp.String(),
	}
	if timestamp.IsAnytime() {
		resp.Kind = lockKindAnytime
	}

	return resp
}

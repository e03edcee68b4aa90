package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bpwallet/bpstd/derive"
	"github.com/bpwallet/bpstd/descriptor"
	"github.com/bpwallet/bpstd/internal/test"
	"github.com/btcsuite/btclog/v2"
	"github.com/lightningnetwork/lnd/signal"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

const defaultTimeout = 5 * time.Second

// TestCommandShortNamesUnique ensures that all command short names are unique
// within their respective command groups at the same level to avoid conflicts.
func TestCommandShortNamesUnique(t *testing.T) {
	// Create a new app to get all commands.
	app := NewApp()

	// Helper function to check short names within a group of commands at
	// the same level.
	//
	// Note that we define using var here to avoid recursion issues.
	var checkLevel func(commands []cli.Command, groupPath string)
	checkLevel = func(commands []cli.Command, groupPath string) {
		shortNames := make(map[string][]string)

		// Check short names only at this level (not recursively).
		for _, cmd := range commands {
			// Check if command has a short name.
			if cmd.ShortName == "" {
				continue
			}

			// Command has a short name, so we add it to the map.
			commandPath := groupPath
			if commandPath != "" {
				commandPath += " "
			}

			commandPath += cmd.Name
			shortNames[cmd.ShortName] = append(
				shortNames[cmd.ShortName], commandPath,
			)
		}

		// Check for duplicates at this level.
		var duplicates []string
		for shortName, paths := range shortNames {
			if len(paths) > 1 {
				duplicates = append(duplicates, shortName)
			}
		}

		// Fail the test if any duplicates were found at this level.
		require.Empty(t, duplicates, "Found duplicate short names at "+
			"command level '%s'", groupPath)

		// Log all short names for reference (only in verbose mode).
		if testing.Verbose() {
			t.Logf("Level '%s' has %d unique short names:",
				groupPath, len(shortNames))
			for shortName, paths := range shortNames {
				t.Logf("  %s -> %s", shortName, paths[0])
			}
		}

		// Recursively check subcommands at their respective levels.
		for _, cmd := range commands {
			if len(cmd.Subcommands) > 0 {
				// Formulate subgroup path.
				subGroupPath := groupPath
				if subGroupPath != "" {
					subGroupPath += " "
				}
				subGroupPath += cmd.Name

				// Recursively check subcommands.
				checkLevel(cmd.Subcommands, subGroupPath)
			}
		}
	}

	// Check top-level commands.
	checkLevel(app.Commands, "")
}

// runApp runs the app with the given arguments and returns what it printed.
func runApp(t *testing.T, args ...string) []byte {
	t.Helper()

	configFile := filepath.Join(t.TempDir(), defaultConfigFileName)
	require.NoError(t, os.WriteFile(
		configFile, []byte("network=mainnet\ndebuglevel=off\n"), 0600,
	))

	var out, logOut bytes.Buffer
	app := NewApp(WithOutput(&out), WithLogOutput(&logOut))
	err := app.Run(append(
		[]string{"bpderive", "--configfile", configFile}, args...,
	))
	require.NoError(t, err)

	return out.Bytes()
}

// accountDescriptor returns the descriptor of the first account of the test
// mnemonic.
func accountDescriptor(t *testing.T, template string, purpose uint32) string {
	return fmt.Sprintf(
		"%s([%s/%dh/0h/0h]%s/<0;1>/*)", template, test.MasterFingerprint,
		purpose, test.AccountXpub(t, purpose, 0),
	)
}

// TestDeriveCommand tests the addresses printed by the derive command.
func TestDeriveCommand(t *testing.T) {
	testCases := []struct {
		name       string
		descriptor string
		address    string
	}{{
		name:       "wpkh",
		descriptor: accountDescriptor(t, "wpkh", 84),
		address:    "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu",
	}, {
		name:       "tr",
		descriptor: accountDescriptor(t, "tr", 86),
		address: "bc1p5cyxnuxmeuwuvkwfem96lqzszd02n6xdcjrs20cac6" +
			"yqjjwudpxqkedrcr",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := runApp(
				t, "--descriptor", tc.descriptor, "derive",
				"--count", "3",
			)

			var addresses []derivedAddress
			require.NoError(t, json.Unmarshal(out, &addresses))
			require.Len(t, addresses, 3)
			require.Equal(t, tc.address, addresses[0].Address)

			for i, addr := range addresses {
				require.Equal(
					t, fmt.Sprintf("0/%d", i),
					addr.Terminal.String(),
				)
			}
		})
	}
}

// TestKeysetCommand tests the key origins printed by the keyset command.
func TestKeysetCommand(t *testing.T) {
	out := runApp(
		t, "--descriptor", accountDescriptor(t, "wpkh", 84), "keyset",
		"--terminal", "1/0", "--count", "2",
	)

	var resp struct {
		Compressed map[derive.CompressedPk]derive.KeyOrigin `json:"compressed"`
		XOnly      map[derive.XOnlyPk]derive.TapDerivation `json:"x_only"`
	}
	require.NoError(t, json.Unmarshal(out, &resp))
	require.Empty(t, resp.XOnly)
	require.Len(t, resp.Compressed, 2)

	terminals := make(map[string]bool)
	for _, origin := range resp.Compressed {
		require.Equal(t, test.MasterFingerprint, origin.MasterFp().String())
		require.Equal(
			t, "84h/0h/0h", origin.Origin.Derivation.String(),
		)
		terminals[origin.Terminal.String()] = true
	}
	require.Equal(t, map[string]bool{"1/0": true, "1/1": true}, terminals)
}

// TestDeriveCommandErrors tests the failures of the derive command.
func TestDeriveCommandErrors(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), defaultConfigFileName)
	require.NoError(t, os.WriteFile(configFile, nil, 0600))

	run := func(args ...string) error {
		app := NewApp(
			WithOutput(&bytes.Buffer{}), WithLogOutput(&bytes.Buffer{}),
		)
		return app.Run(append(
			[]string{"bpderive", "--configfile", configFile,
				"--debuglevel", "off"}, args...,
		))
	}

	require.ErrorIs(t, run("derive"), errNoDescriptor)

	desc := accountDescriptor(t, "wpkh", 84)
	require.ErrorIs(
		t, run("--descriptor", desc, "derive", "--keychain", "2"),
		descriptor.ErrKeychainRange,
	)
	require.Error(t, run("--descriptor", desc, "--network", "foo", "derive"))
	require.ErrorIs(
		t, run("--descriptor", "sh(wpkh(xpub))", "derive"),
		descriptor.ErrUnsupportedTemplate,
	)
	require.ErrorContains(
		t, run("--debuglevel", "DRVE=loud", "--descriptor", desc,
			"derive"),
		"error parsing debug level",
	)
}

// TestLogOutput makes sure log messages go to the log writer and never into
// the JSON results.
func TestLogOutput(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), defaultConfigFileName)
	require.NoError(t, os.WriteFile(configFile, nil, 0600))

	var out, logOut bytes.Buffer
	app := NewApp(WithOutput(&out), WithLogOutput(&logOut))
	err := app.Run([]string{
		"bpderive", "--configfile", configFile, "--debuglevel",
		"DRVE=trace,DESC=debug", "--descriptor",
		accountDescriptor(t, "wpkh", 84), "derive", "--count", "2",
	})
	require.NoError(t, err)

	var addresses []derivedAddress
	require.NoError(t, json.Unmarshal(out.Bytes(), &addresses))
	require.Len(t, addresses, 2)

	require.Contains(t, logOut.String(), "DRVE: Derived key")
	require.Contains(t, logOut.String(), "DESC: Deriving 2 script(s)")
}

// TestShutdownContext makes sure a shutdown request cancels the context
// long running commands use.
func TestShutdownContext(t *testing.T) {
	// Without an interceptor nothing cancels the context early.
	state := &appState{opts: defaultAppOpts()}
	ctxc, cancel := state.shutdownContext()
	require.NoError(t, ctxc.Err())
	cancel()
	require.ErrorIs(t, ctxc.Err(), context.Canceled)

	// The interceptor can only be created once per process. Its logger
	// may still point at the buffer of an earlier test.
	signal.UseLogger(btclog.Disabled)
	interceptor, err := signal.Intercept()
	require.NoError(t, err)

	WithInterceptor(interceptor)(state.opts)
	ctxc, cancel = state.shutdownContext()
	defer cancel()
	require.NoError(t, ctxc.Err())

	interceptor.RequestShutdown()
	select {
	case <-ctxc.Done():
	case <-time.After(defaultTimeout):
		t.Fatalf("context not canceled after shutdown request")
	}
}

// TestParseLockTime tests the lock time kinds recognized by the locktime
// command.
func TestParseLockTime(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		text     string
		expected *lockTimeResponse
		err      bool
	}{{
		text: "none",
		expected: &lockTimeResponse{
			Kind: lockKindAnytime,
			Text: "none",
		},
	}, {
		text: "time(500000000)",
		expected: &lockTimeResponse{
			Kind:      lockKindTimestamp,
			Consensus: 500_000_000,
			Text:      "time(500000000)",
		},
	}, {
		text: "HEIGHT(840000)",
		expected: &lockTimeResponse{
			Kind:      lockKindHeight,
			Consensus: 840_000,
			Text:      "height(840000)",
		},
	}, {
		text: "time(100)",
		err:  true,
	}, {
		text: "height(500000000)",
		err:  true,
	}, {
		text: "after(5)",
		err:  true,
	}}

	for _, tc := range testCases {
		resp, err := parseLockTime(tc.text)
		if tc.err {
			require.Error(t, err, tc.text)
			continue
		}

		require.NoError(t, err, tc.text)
		require.Equal(t, tc.expected, resp)
	}
}

// TestLoadConfigFile tests reading the INI configuration file.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configFile := filepath.Join(dir, defaultConfigFileName)
	require.NoError(t, os.WriteFile(configFile, []byte(
		"network=signet\ndescriptor=wpkh(xpub)\nunknown=1\n",
	), 0600))

	cfg, err := LoadConfigFile(configFile)
	require.NoError(t, err)
	require.Equal(t, "signet", cfg.Network)
	require.Equal(t, defaultLogLevel, cfg.DebugLevel)
	require.Equal(t, "wpkh(xpub)", cfg.descriptorText().UnwrapOr(""))

	params, err := ChainParams(cfg.Network)
	require.NoError(t, err)
	require.Equal(t, "signet", params.Name)

	_, err = LoadConfigFile(filepath.Join(dir, "missing.conf"))
	require.Error(t, err)

	cfg, err = LoadConfigFile(DefaultConfigFile)
	if err == nil {
		require.NotEmpty(t, cfg.Network)
	}

	empty := DefaultConfig()
	require.True(t, empty.descriptorText().IsNone())
}

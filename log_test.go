package bpstd

import (
	"bytes"
	"testing"

	"github.com/bpwallet/bpstd/derive"
	"github.com/bpwallet/bpstd/descriptor"
	"github.com/bpwallet/bpstd/internal/test"
	"github.com/btcsuite/btclog/v2"
	"github.com/lightningnetwork/lnd/build"
	lfn "github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/signal"
	"github.com/stretchr/testify/require"
)

// TestDebugLevels tests applying debug level specifications to the
// registered subsystems.
func TestDebugLevels(t *testing.T) {
	var buf bytes.Buffer
	root := build.NewSubLoggerManager(btclog.NewDefaultHandler(&buf))
	SetupLoggers(root, lfn.None[signal.Interceptor]())
	t.Cleanup(func() {
		derive.DisableLog()
		descriptor.DisableLog()
		signal.UseLogger(btclog.Disabled)
	})

	require.Equal(
		t, []string{"DESC", "DRVE", "SGNL"}, root.SupportedSubsystems(),
	)

	loggers := root.SubLoggers()
	drve, desc := loggers[derive.Subsystem], loggers[descriptor.Subsystem]
	require.NoError(t, build.ParseAndSetDebugLevels("debug", root))
	require.Equal(t, btclog.LevelDebug, desc.Level())
	require.Equal(t, btclog.LevelDebug, drve.Level())

	err := build.ParseAndSetDebugLevels("info,DRVE=trace,DESC=off", root)
	require.NoError(t, err)
	require.Equal(t, btclog.LevelTrace, drve.Level())
	require.Equal(t, btclog.LevelOff, desc.Level())
	require.Equal(t, btclog.LevelInfo, loggers[SignalSubsystem].Level())

	require.Error(t, build.ParseAndSetDebugLevels("loud", root))
	require.Error(t, build.ParseAndSetDebugLevels("RPCS=debug", root))
	require.Error(t, build.ParseAndSetDebugLevels("DRVE=loud", root))
	require.Error(t, build.ParseAndSetDebugLevels("DRVE,DESC", root))

	// The derive package now logs through the manager's handler.
	spec, err := derive.NewXpubSpecUnknownOrigin(test.RandXpub(t))
	require.NoError(t, err)
	_, err = derive.NewXpubDerivable(spec, derive.StdKeychains)
	require.NoError(t, err)
	require.Contains(t, buf.String(), "DRVE: Key origin of derivable key")
}

// TestVersion makes sure the version is a valid semantic version followed by
// the best commit information available.
func TestVersion(t *testing.T) {
	commit, commitHash := Commit, CommitHash
	t.Cleanup(func() {
		Commit, CommitHash = commit, commitHash
	})

	require.Regexp(t, `^\d+\.\d+\.\d+(-[0-9a-z.]+)?`, Version())

	Commit, CommitHash = "", ""
	require.Equal(t, semanticVersion(), Version())

	CommitHash = "0123abcd"
	require.Equal(
		t, semanticVersion()+" commit_hash=0123abcd", Version(),
	)

	Commit = "v0.11.0-beta-3-g0123abc"
	require.Equal(
		t, semanticVersion()+" commit=v0.11.0-beta-3-g0123abc",
		Version(),
	)
}

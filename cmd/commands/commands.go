package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bpwallet/bpstd"
	"github.com/bpwallet/bpstd/derive"
	"github.com/bpwallet/bpstd/descriptor"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btclog/v2"
	"github.com/lightningnetwork/lnd/build"
	lfn "github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/signal"
	"github.com/urfave/cli"
)

const (
	// Environment variables names that can be used to set the global flags.
	envVarConfigFile = "BPDERIVE_CONFIGFILE"
	envVarNetwork    = "BPDERIVE_NETWORK"
	envVarDescriptor = "BPDERIVE_DESCRIPTOR"
)

// appOpts contains the options of the app.
type appOpts struct {
	out         io.Writer
	logOut      io.Writer
	interceptor lfn.Option[signal.Interceptor]
}

// AppOption is a function type that can be used to set options for the app.
type AppOption func(*appOpts)

// defaultAppOpts returns the default app options.
func defaultAppOpts() *appOpts {
	return &appOpts{
		out:    os.Stdout,
		logOut: os.Stderr,
	}
}

// WithOutput is an option modifier function that sets the writer command
// results are printed to.
func WithOutput(w io.Writer) AppOption {
	return func(opts *appOpts) {
		opts.out = w
	}
}

// WithLogOutput is an option modifier function that sets the writer log
// messages are written to.
func WithLogOutput(w io.Writer) AppOption {
	return func(opts *appOpts) {
		opts.logOut = w
	}
}

// WithInterceptor is an option modifier function that lets commands stop
// early once the interceptor receives a shutdown request.
func WithInterceptor(interceptor signal.Interceptor) AppOption {
	return func(opts *appOpts) {
		opts.interceptor = lfn.Some(interceptor)
	}
}

// appState is the state shared by all commands once the global flags and
// the configuration file are processed.
type appState struct {
	opts *appOpts
	cfg  *Config
}

// NewApp creates a new bpderive app with all the available commands.
func NewApp(options ...AppOption) cli.App {
	opts := defaultAppOpts()
	for _, option := range options {
		option(opts)
	}
	state := &appState{opts: opts}

	app := cli.NewApp()
	app.Name = "bpderive"
	app.Version = bpstd.Version()
	app.Usage = "derive addresses and key origins from wallet descriptors"
	app.Writer = opts.out
	app.ErrWriter = opts.logOut
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:      "configfile, C",
			Value:     DefaultConfigFile,
			Usage:     "Path to the configuration file.",
			TakesFile: true,
			EnvVar:    envVarConfigFile,
		},
		cli.StringFlag{
			Name: "network, n",
			Usage: "The network to encode addresses for, e.g. " +
				"mainnet, testnet, etc.",
			EnvVar: envVarNetwork,
		},
		cli.StringFlag{
			Name:   "descriptor",
			Usage:  "The wallet descriptor to derive from.",
			EnvVar: envVarDescriptor,
		},
		cli.StringFlag{
			Name:  "debuglevel",
			Usage: "The debug level specification for logging.",
		},
	}
	app.Before = state.setup

	app.Commands = []cli.Command{
		deriveCommand(state),
		keysetCommand(state),
		locktimeCommand(state),
	}

	return *app
}

// setup loads the configuration file, applies the global flags on top of it
// and initializes logging.
func (s *appState) setup(ctx *cli.Context) error {
	cfg, err := LoadConfigFile(ctx.String("configfile"))
	if err != nil {
		return err
	}

	if ctx.IsSet("network") {
		cfg.Network = ctx.String("network")
	}
	if ctx.IsSet("descriptor") {
		cfg.Descriptor = ctx.String("descriptor")
	}
	if ctx.IsSet("debuglevel") {
		cfg.DebugLevel = ctx.String("debuglevel")
	}

	// Log messages go to their own writer so they never mix with the
	// JSON results.
	root := build.NewSubLoggerManager(
		btclog.NewDefaultHandler(s.opts.logOut),
	)
	bpstd.SetupLoggers(root, s.opts.interceptor)

	// Parse, validate, and set debug log level(s).
	err = build.ParseAndSetDebugLevels(cfg.DebugLevel, root)
	if err != nil {
		return fmt.Errorf("error parsing debug level: %w", err)
	}

	s.cfg = cfg

	return nil
}

// descriptor parses the configured descriptor.
func (s *appState) descriptor() (descriptor.DescriptorStd[*derive.XpubDerivable],
	error) {

	text, err := s.cfg.descriptorText().UnwrapOrErr(errNoDescriptor)
	if err != nil {
		return descriptor.DescriptorStd[*derive.XpubDerivable]{}, err
	}

	return descriptor.ParseStd(text)
}

// shutdownContext returns a context that is canceled once the interceptor, if
// any, receives a shutdown request.
func (s *appState) shutdownContext() (context.Context, context.CancelFunc) {
	ctxc, cancel := context.WithCancel(context.Background())

	s.opts.interceptor.WhenSome(func(interceptor signal.Interceptor) {
		// Make sure the context is canceled if the user requests
		// shutdown.
		go func() {
			select {
			case <-interceptor.ShutdownChannel():
				cancel()

			case <-ctxc.Done():
			}
		}()
	})

	return ctxc, cancel
}

// chainParams returns the parameters of the configured network.
func (s *appState) chainParams() (*chaincfg.Params, error) {
	return ChainParams(s.cfg.Network)
}

// printJSON writes the indented JSON form of resp to the output.
func (s *appState) printJSON(resp interface{}) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("unable to encode response: %w", err)
	}

	var out bytes.Buffer
	_ = json.Indent(&out, b, "", "\t")
	out.WriteString("\n")
	_, err = out.WriteTo(s.opts.out)

	return err
}

// Fatal prints the error and exits.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "[bpderive] %v\n", err)
	os.Exit(1)
}

package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/jessevdk/go-flags"
	lfn "github.com/lightningnetwork/lnd/fn/v2"
)

const (
	defaultConfigFileName = "bpderive.conf"
	defaultNetwork        = "mainnet"
	defaultLogLevel       = "info"
)

var (
	// DefaultAppDir is the default directory where bpderive looks for its
	// configuration file, for example ~/.bpderive on Linux.
	DefaultAppDir = btcutil.AppDataDir("bpderive", false)

	// DefaultConfigFile is the default full path of the configuration
	// file.
	DefaultConfigFile = filepath.Join(DefaultAppDir, defaultConfigFileName)

	// errNoDescriptor is returned when neither the command line nor the
	// configuration file name a descriptor.
	errNoDescriptor = errors.New("no descriptor given, use --descriptor " +
		"or set descriptor in the configuration file")
)

// Config holds the defaults that can be stored in the configuration file.
// Command line flags take precedence over them.
type Config struct {
	Network    string `long:"network" description:"The network to derive addresses for {mainnet, testnet, regtest, signet, simnet}"`
	Descriptor string `long:"descriptor" description:"The wallet descriptor, for example wpkh([fp/84h/0h/0h]xpub.../<0;1>/*)"`
	DebugLevel string `long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical, off} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Network:    defaultNetwork,
		DebugLevel: defaultLogLevel,
	}
}

// LoadConfigFile reads the INI configuration file at the given path on top of
// the defaults. A missing file is only an error if it isn't the default one.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if !fileExists(path) {
		if path != DefaultConfigFile {
			return nil, fmt.Errorf("specified config file does "+
				"not exist in %s", path)
		}

		return &cfg, nil
	}

	fileParser := flags.NewParser(&cfg, flags.IgnoreUnknown)
	err := flags.NewIniParser(fileParser).ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to parse config file %s: %w",
			path, err)
	}

	return &cfg, nil
}

// descriptorText returns the descriptor, if one is configured.
func (c *Config) descriptorText() lfn.Option[string] {
	if c.Descriptor == "" {
		return lfn.None[string]()
	}

	return lfn.Some(c.Descriptor)
}

// ChainParams returns the parameters of the given network name.
func ChainParams(network string) (*chaincfg.Params, error) {
	switch network {
	case "mainnet", "bitcoin":
		return &chaincfg.MainNetParams, nil

	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil

	case "regtest":
		return &chaincfg.RegressionNetParams, nil

	case "signet":
		return &chaincfg.SigNetParams, nil

	case "simnet":
		return &chaincfg.SimNetParams, nil

	default:
		return nil, fmt.Errorf("unknown network %q", network)
	}
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

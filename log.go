package bpstd

import (
	"github.com/bpwallet/bpstd/derive"
	"github.com/bpwallet/bpstd/descriptor"
	"github.com/btcsuite/btclog/v2"
	"github.com/lightningnetwork/lnd/build"
	lfn "github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/signal"
)

// SignalSubsystem is the logging code of the signal interceptor.
const SignalSubsystem = "SGNL"

// genSubLogger creates a logger for a subsystem. We provide an instance of a
// signal.Interceptor to be able to shutdown in the case of a critical error.
func genSubLogger(root *build.SubLoggerManager,
	interceptor lfn.Option[signal.Interceptor]) func(string) btclog.Logger {

	// Create a shutdown function which will request shutdown from our
	// interceptor if there is one and it is listening.
	shutdown := func() {
		interceptor.WhenSome(func(i signal.Interceptor) {
			if !i.Listening() {
				return
			}

			i.RequestShutdown()
		})
	}

	// Return a function which will create a sublogger from our root logger
	// without shutdown fn.
	return func(tag string) btclog.Logger {
		return root.GenSubLogger(tag, shutdown)
	}
}

// SetupLoggers initializes all package-global logger variables.
func SetupLoggers(root *build.SubLoggerManager,
	interceptor lfn.Option[signal.Interceptor]) {

	AddSubLogger(root, derive.Subsystem, interceptor, derive.UseLogger)
	AddSubLogger(
		root, descriptor.Subsystem, interceptor, descriptor.UseLogger,
	)
	AddSubLogger(root, SignalSubsystem, interceptor, signal.UseLogger)
}

// AddSubLogger is a helper method to conveniently create and register the
// logger of one or more sub systems.
func AddSubLogger(root *build.SubLoggerManager, subsystem string,
	interceptor lfn.Option[signal.Interceptor],
	useLoggers ...func(btclog.Logger)) {

	// genSubLogger will return a callback for creating a logger instance,
	// which we will give to the root logger.
	genLogger := genSubLogger(root, interceptor)

	// Create and register just a single logger to prevent them from
	// overwriting each other internally.
	logger := build.NewSubLogger(subsystem, genLogger)
	SetSubLogger(root, subsystem, logger, useLoggers...)
}

// SetSubLogger is a helper method to conveniently register the logger of a sub
// system.
func SetSubLogger(root *build.SubLoggerManager, subsystem string,
	logger btclog.Logger, useLoggers ...func(btclog.Logger)) {

	root.RegisterSubLogger(subsystem, logger)
	for _, useLogger := range useLoggers {
		useLogger(logger)
	}
}

// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Copyright (C) 2015-2022 The Lightning Network Developers

package main

import (
	"os"

	"github.com/bpwallet/bpstd/cmd/commands"
	"github.com/lightningnetwork/lnd/signal"
)

func main() {
	// Hook interceptor for os signals.
	shutdownInterceptor, err := signal.Intercept()
	if err != nil {
		commands.Fatal(err)
	}

	// Set up the main CLI app.
	app := commands.NewApp(commands.WithInterceptor(shutdownInterceptor))
	if err := app.Run(os.Args); err != nil {
		commands.Fatal(err)
	}
}

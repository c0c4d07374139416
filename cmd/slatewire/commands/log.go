package commands

import (
	"os"

	"github.com/btcsuite/btclog"

	"github.com/mimblenet/slatewire/exchange"
	"github.com/mimblenet/slatewire/relay"
	"github.com/mimblenet/slatewire/transport"
)

func setupLogging(verbose bool) {
	backend := btclog.NewBackend(os.Stderr)

	level := btclog.LevelInfo
	if verbose {
		level = btclog.LevelDebug
	}

	for tag, use := range map[string]func(btclog.Logger){
		"EXCH": exchange.UseLogger,
		"RELY": relay.UseLogger,
		"TRNS": transport.UseLogger,
	} {
		logger := backend.Logger(tag)
		logger.SetLevel(level)
		use(logger)
	}
}

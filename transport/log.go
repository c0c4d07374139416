package transport

import "github.com/btcsuite/btclog"

// log is a logger that is initialized as disabled. The package emits no
// output until the caller installs a logger.
var log = btclog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// DisableLog disables all library log output.
func DisableLog() {
	log = btclog.Disabled
}

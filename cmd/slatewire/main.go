package main

import (
	"os"

	"github.com/mimblenet/slatewire/cmd/slatewire/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

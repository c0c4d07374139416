package commands

import (
	"github.com/spf13/cobra"

	"github.com/mimblenet/slatewire/address"
)

// address: print the wallet's relay address and its 6-code abbreviation.
func addressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Show the wallet's relay address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := eng.MyAddress()
			if err != nil {
				return err
			}
			return printJSON(struct {
				Address      string `json:"address"`
				Abbreviation string `json:"abbreviation"`
			}{
				Address:      addr,
				Abbreviation: address.Abbreviation(addr),
			})
		},
	}
}

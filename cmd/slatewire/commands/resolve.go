package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// resolve <abbrev>: look up the full relay address behind a 6-code suffix.
func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <abbreviation>",
		Short: "Resolve a 6-code abbreviation to a full relay address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := eng.ResolveAddress(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printJSON(struct {
				Address string `json:"address"`
			}{Address: addr})
		},
	}
}

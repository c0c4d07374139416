package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// receive <file>: counter-sign a proposal slate file. The reply is written
// alongside the input with a ".response" suffix.
func receiveCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "receive <file>",
		Short: "Counter-sign a proposal slate file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng.SetReceiveMessage(message)
			reply, err := eng.ReceiveFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s.response\n", args[0])
			return printJSON(reply)
		},
	}

	cmd.Flags().StringVar(&message, "message", "", "message to attach to the contribution")
	return cmd
}

// finalize <file>: complete a counter-signed slate file and broadcast it.
func finalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <file>",
		Short: "Finalize a counter-signed slate file and broadcast it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			final, err := eng.FinalizeFile(args[0])
			if err != nil {
				return err
			}
			return printJSON(final)
		},
	}
}

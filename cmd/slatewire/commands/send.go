package commands

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mimblenet/slatewire/exchange"
	"github.com/mimblenet/slatewire/transport"
)

// send <amount> <destination>: run the full interactive exchange. The
// destination is an http(s) URL, a full relay address or a 6-code
// abbreviation.
func sendCmd() *cobra.Command {
	var (
		strategy string
		message  string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send <amount> <destination>",
		Short: "Send funds to a peer wallet and broadcast the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			final, err := eng.Send(ctx, exchange.SendArgs{
				Amount:      amount,
				Destination: args[1],
				Strategy:    strategy,
				Message:     message,
			})
			if err != nil {
				return err
			}
			return printJSON(final)
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "smallest", "output selection strategy, all or smallest")
	cmd.Flags().StringVar(&message, "message", "", "message to attach to the transaction")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall exchange deadline")
	return cmd
}

// propose <amount> <file>: start a file-based exchange by writing the locked
// proposal slate to disk.
func proposeCmd() *cobra.Command {
	var (
		strategy string
		message  string
	)

	cmd := &cobra.Command{
		Use:   "propose <amount> <file>",
		Short: "Write a proposal slate to a file for offline exchange",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}

			proposal, err := eng.InitSend(amount, strategy, message)
			if err != nil {
				return err
			}
			if err := transport.WriteSlateFile(args[1], proposal); err != nil {
				return err
			}
			return printJSON(proposal)
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "smallest", "output selection strategy, all or smallest")
	cmd.Flags().StringVar(&message, "message", "", "message to attach to the transaction")
	return cmd
}

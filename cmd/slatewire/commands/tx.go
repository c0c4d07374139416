package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// post <id>: rebroadcast a stored transaction.
func postCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post <id>",
		Short: "Rebroadcast a stored transaction by slate id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			if err := eng.PostByID(id); err != nil {
				return err
			}
			fmt.Println("posted")
			return nil
		},
	}
}

// cancel <id>: abandon an unposted transaction and release its funds.
func cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an unposted transaction by slate id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			if err := eng.Cancel(id); err != nil {
				return err
			}
			fmt.Println("cancelled")
			return nil
		},
	}
}

// txs [id]: list stored transactions, or show one.
func txsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "txs [id]",
		Short: "List stored transactions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return err
				}
				rec, err := eng.Tx(id)
				if err != nil {
					return err
				}
				return printJSON(rec)
			}

			recs, err := eng.Txs()
			if err != nil {
				return err
			}
			return printJSON(recs)
		},
	}
}

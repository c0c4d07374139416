package commands

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mimblenet/slatewire/transport"
)

// listen: subscribe on the relay and counter-sign inbound proposals until
// interrupted.
func listenCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive transactions over the relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng.SetReceiveMessage(message)
			l, err := eng.Listen()
			if err != nil {
				return err
			}
			defer l.Close()

			fmt.Printf("listening on %s\n", l.Address())

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			return nil
		},
	}

	cmd.Flags().StringVar(&message, "message", "", "message to attach to contributions")
	return cmd
}

// serve: receive transactions over direct HTTP instead of the relay.
func serveCmd() *cobra.Command {
	var (
		listenAddr string
		message    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Receive transactions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng.SetReceiveMessage(message)
			mux := http.NewServeMux()
			mux.Handle(transport.ReceivePath, transport.ServeReceive(eng.Receive))

			fmt.Printf("serving on %s%s\n", listenAddr, transport.ReceivePath)
			return http.ListenAndServe(listenAddr, mux)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", ":3415", "address to listen on")
	cmd.Flags().StringVar(&message, "message", "", "message to attach to contributions")
	return cmd
}

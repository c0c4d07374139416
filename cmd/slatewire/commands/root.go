package commands

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mimblenet/slatewire/exchange"
	"github.com/mimblenet/slatewire/relay"
	"github.com/mimblenet/slatewire/storage/filesystem"
	"github.com/mimblenet/slatewire/wallet"
	"github.com/mimblenet/slatewire/wallet/memwallet"
)

var (
	home        string
	chainName   string
	seedHex     string
	nodeURL     string
	nodeSecret  string
	relayURL    string
	outputsPath string
	debug       bool

	eng *exchange.Engine
)

func Execute() error {
	root := &cobra.Command{
		Use:           "slatewire",
		Short:         "Interactive transaction wallet with relay and direct HTTP exchange",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "data dir (default ~/.slatewire)")
	root.PersistentFlags().StringVar(&chainName, "chain", exchange.ChainMainnet, "chain type, mainnet or floonet")
	root.PersistentFlags().StringVar(&seedHex, "seed", "", "hex encoded wallet seed")
	root.PersistentFlags().StringVar(&nodeURL, "node", "http://127.0.0.1:3413", "chain node API URL")
	root.PersistentFlags().StringVar(&nodeSecret, "node-secret", "", "chain node API secret")
	root.PersistentFlags().StringVar(&relayURL, "relay", relay.DefaultConfig.RelayURL, "relay websocket URL")
	root.PersistentFlags().StringVar(&outputsPath, "outputs", "", "JSON file of spendable outputs to load")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "verbose logging")

	root.AddCommand(addressCmd(), resolveCmd(), sendCmd(), proposeCmd(),
		receiveCmd(), finalizeCmd(), postCmd(), cancelCmd(), txsCmd(),
		listenCmd(), serveCmd())
	return root.Execute()
}

func setup() error {
	setupLogging(debug)

	if home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		home = filepath.Join(dir, ".slatewire")
	}
	if err := os.MkdirAll(home, 0o700); err != nil {
		return err
	}

	if seedHex == "" {
		return errors.New("wallet seed required (--seed)")
	}
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return fmt.Errorf("invalid seed: %w", err)
	}

	w, err := memwallet.New(seed)
	if err != nil {
		return err
	}
	if outputsPath != "" {
		if err := loadOutputs(w, outputsPath); err != nil {
			return err
		}
	}

	node, err := wallet.NewHTTPNode(http.DefaultClient, nodeURL, nodeSecret)
	if err != nil {
		return err
	}

	db := filesystem.NewFilesystemStorage(filepath.Join(home, "transactions.json"))

	cfg := exchange.DefaultConfig
	cfg.Chain = chainName

	eng, err = exchange.New(cfg, w, node, db)
	if err != nil {
		return err
	}
	eng.SetRelayConfig(relay.Config{RelayURL: relayURL})
	return nil
}

func loadOutputs(w *memwallet.Wallet, path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var outputs []memwallet.Output
	if err := json.Unmarshal(buf, &outputs); err != nil {
		return fmt.Errorf("invalid outputs file: %w", err)
	}
	for _, out := range outputs {
		w.AddOutput(out)
	}
	return nil
}

func printJSON(v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}

package exchange

import (
	"errors"

	"github.com/mimblenet/slatewire/address"
)

const (
	ChainMainnet = "mainnet"
	ChainFloonet = "floonet"
)

var ErrUnsupportedChain = errors.New("unsupported chain type")

type Config struct {
	Chain   string
	Account string

	// MinimumConfirmations applies to balance reporting and receive-side
	// checks.
	MinimumConfirmations uint64

	// SendingMinimumConfirmations applies to output selection when
	// building a proposal.
	SendingMinimumConfirmations uint64
}

var DefaultConfig = Config{
	Chain:                ChainMainnet,
	Account:              "default",
	MinimumConfirmations: 10,
}

// HRP returns the relay address prefix for the configured chain.
func (c Config) HRP() (string, error) {
	switch c.Chain {
	case ChainMainnet:
		return address.HRPMainnet, nil
	case ChainFloonet:
		return address.HRPFloonet, nil
	default:
		return "", ErrUnsupportedChain
	}
}

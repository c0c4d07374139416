// Package exchange drives a transaction slate through propose, lock,
// exchange, finalize and broadcast, over either transport, with rollback on
// every failure path before finalization.
package exchange

import (
	"context"
	"net/http"

	"github.com/lightningnetwork/lnd/clock"

	"github.com/mimblenet/slatewire/address"
	"github.com/mimblenet/slatewire/relay"
	"github.com/mimblenet/slatewire/storage"
	"github.com/mimblenet/slatewire/wallet"
)

// Participant slots are fixed: the sender always contributes first.
const (
	senderParticipantID   = 0
	receiverParticipantID = 1
)

type Engine struct {
	cfg  Config
	w    wallet.Wallet
	node wallet.NodeClient
	db   storage.Storage

	httpClient *http.Client
	relayCfg   relay.Config
	clk        clock.Clock
	recvMsg    string

	dialRelay func(sinks relay.Sinks) (*relay.Listener, error)
}

func New(cfg Config, w wallet.Wallet, node wallet.NodeClient,
	db storage.Storage) (*Engine, error) {

	if _, err := cfg.HRP(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:        cfg,
		w:          w,
		node:       node,
		db:         db,
		httpClient: http.DefaultClient,
		relayCfg:   relay.DefaultConfig,
		clk:        clock.NewDefaultClock(),
	}
	e.dialRelay = e.defaultDialRelay
	return e, nil
}

// SetRelayConfig replaces the relay endpoint configuration.
func (e *Engine) SetRelayConfig(cfg relay.Config) {
	e.relayCfg = cfg
}

// SetHTTPClient replaces the client used by the HTTP transport.
func (e *Engine) SetHTTPClient(c *http.Client) {
	e.httpClient = c
}

// SetClock replaces the engine clock.
func (e *Engine) SetClock(clk clock.Clock) {
	e.clk = clk
}

// SetReceiveMessage sets the signed message attached to this wallet's
// contribution when counter-signing inbound slates.
func (e *Engine) SetReceiveMessage(msg string) {
	e.recvMsg = msg
}

func (e *Engine) defaultDialRelay(sinks relay.Sinks) (*relay.Listener, error) {
	key, err := e.w.SigningKey()
	if err != nil {
		return nil, err
	}
	addr, err := e.MyAddress()
	if err != nil {
		return nil, err
	}
	return relay.Connect(key, addr, sinks, e.relayCfg, e.clk), nil
}

// MyAddress returns the wallet's relay address. It is derived from the
// signing key and stable across calls.
func (e *Engine) MyAddress() (string, error) {
	key, err := e.w.SigningKey()
	if err != nil {
		return "", err
	}
	hrp, err := e.cfg.HRP()
	if err != nil {
		return "", err
	}
	return address.Derive(key, hrp)
}

// ResolveAddress maps a 6-code abbreviation to the single full relay address
// claiming it. The format check runs before any relay traffic.
func (e *Engine) ResolveAddress(ctx context.Context, suffix string) (string, error) {
	if !address.ValidAbbreviation(suffix) {
		return "", address.ErrInvalidFormat
	}

	l, err := e.dialRelay(relay.Sinks{QueryResponses: true})
	if err != nil {
		return "", err
	}
	defer l.Close()

	if err := l.WaitConnected(relay.ConnectWait); err != nil {
		return "", err
	}

	return address.NewDirectory(l).Resolve(ctx, suffix)
}

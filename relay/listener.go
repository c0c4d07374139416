// Package relay maintains the session with the relay service and bridges
// inbound relay traffic to local consumers over ordered FIFO channels.
package relay

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/gorilla/websocket"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/queue"

	"github.com/mimblenet/slatewire/slate"
)

type ConnState int32

const (
	StateDisconnected ConnState = 0
	StateConnecting   ConnState = 1
	StateConnected    ConnState = 2
	StateFailed       ConnState = 3
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

const (
	// ConnectWait bounds how long callers wait for the relay session to
	// come up. The relay is a best-effort rendezvous point, so blocking
	// indefinitely on it is never acceptable.
	ConnectWait = 5 * time.Second

	// QueryWindow bounds the wait for an address query response.
	QueryWindow = 10 * time.Second
)

var ErrConnectTimeout = errors.New("relay connect timeout, please try again later")
var ErrQueryTimeout = errors.New("relay server no response, please try again later")
var ErrNotConnected = errors.New("relay session is not connected")
var ErrClosed = errors.New("relay listener closed")

type Config struct {
	// RelayURL is the websocket endpoint of the relay service.
	RelayURL string

	HandshakeTimeout time.Duration
}

var DefaultConfig = Config{
	RelayURL:         "wss://relay.mimblenet.io:443",
	HandshakeTimeout: 10 * time.Second,
}

// Sinks selects which inbound deliveries this listener consumes. A payer
// session consumes counter-signed replies, a payee session consumes
// proposals, and an address query session consumes query responses.
type Sinks struct {
	PayerReplies   bool
	PayeeProposals bool
	QueryResponses bool
}

// Inbound is a slate delivered by the relay together with the sender's
// address, which is where any reply must be published.
type Inbound struct {
	From  string
	Slate *slate.Slate
}

// Listener owns one relay session. It starts in Connecting and moves to
// Connected once the challenge handshake completes, or Failed if the dial or
// handshake does not.
type Listener struct {
	cfg   Config
	key   *btcec.PrivateKey
	addr  string
	sinks Sinks
	clk   clock.Clock

	state       atomic.Int32
	connectedCh chan struct{}
	failErr     error
	failedCh    chan struct{}

	mu   sync.Mutex
	conn *websocket.Conn

	replies   *queue.ConcurrentQueue
	proposals *queue.ConcurrentQueue
	queries   *queue.ConcurrentQueue

	closeOnce sync.Once
	quit      chan struct{}
	wg        sync.WaitGroup
}

// Connect begins the relay session asynchronously and returns immediately in
// Connecting. Callers that need the session up must use WaitConnected.
func Connect(key *btcec.PrivateKey, ownAddr string, sinks Sinks, cfg Config,
	clk clock.Clock) *Listener {

	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = DefaultConfig.HandshakeTimeout
	}

	l := &Listener{
		cfg:         cfg,
		key:         key,
		addr:        ownAddr,
		sinks:       sinks,
		clk:         clk,
		connectedCh: make(chan struct{}),
		failedCh:    make(chan struct{}),
		replies:     queue.NewConcurrentQueue(16),
		proposals:   queue.NewConcurrentQueue(16),
		queries:     queue.NewConcurrentQueue(16),
		quit:        make(chan struct{}),
	}
	l.replies.Start()
	l.proposals.Start()
	l.queries.Start()
	l.state.Store(int32(StateConnecting))

	l.wg.Add(1)
	go l.run()

	return l
}

func (l *Listener) run() {
	defer l.wg.Done()

	dialer := websocket.Dialer{
		HandshakeTimeout: l.cfg.HandshakeTimeout,
	}
	conn, _, err := dialer.Dial(l.cfg.RelayURL, nil)
	if err != nil {
		l.fail(fmt.Errorf("relay dial %s: %w", l.cfg.RelayURL, err))
		return
	}

	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()

	select {
	case <-l.quit:
		// Close ran before the conn was stored; it is ours to clean up.
		conn.Close()
		return
	default:
	}

	l.readLoop(conn)
}

// fail moves the session to Failed. Only the first failure wins; later calls
// (a broken write surfacing through several paths) are no-ops.
func (l *Listener) fail(err error) {
	if !l.state.CompareAndSwap(int32(StateConnecting), int32(StateFailed)) {
		return
	}
	l.failErr = err
	close(l.failedCh)
	log.Errorf("relay session failed: %v", err)
}

func (l *Listener) setConnected() {
	if l.state.CompareAndSwap(int32(StateConnecting), int32(StateConnected)) {
		close(l.connectedCh)
		log.Infof("relay session connected as %s", l.addr)
	}
}

func (l *Listener) readLoop(conn *websocket.Conn) {
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			select {
			case <-l.quit:
			default:
				if l.State() == StateConnecting {
					l.fail(fmt.Errorf("relay handshake: %w", err))
				} else {
					log.Warnf("relay read loop ended: %v", err)
				}
			}
			return
		}

		switch env.Type {
		case typeChallenge:
			l.handleChallenge(env.Challenge)

		case typeSlate:
			s, err := slate.Parse(env.Payload)
			if err != nil {
				log.Warnf("dropping malformed inbound slate from %s: %v",
					env.From, err)
				continue
			}
			l.routeSlate(&Inbound{From: env.From, Slate: s})

		case typeRelayAddrs:
			if !l.sinks.QueryResponses {
				continue
			}
			l.queries.ChanIn() <- env.Addresses

		case typeError:
			log.Warnf("relay error message: %s", env.Reason)

		default:
			log.Debugf("ignoring relay message type %q", env.Type)
		}
	}
}

// handleChallenge signs the relay's challenge with the wallet key and
// subscribes to the listener's own address. Subscription acceptance is
// implicit: the relay drops unauthenticated subscribers at the socket level.
func (l *Listener) handleChallenge(challenge string) {
	h := sha256.Sum256([]byte(challenge))
	sig := ecdsa.Sign(l.key, h[:])

	err := l.writeJSON(envelope{
		Type:      typeSubscribe,
		From:      l.addr,
		Signature: hex.EncodeToString(sig.Serialize()),
	})
	if err != nil {
		l.fail(fmt.Errorf("relay subscribe: %w", err))
		return
	}
	l.setConnected()
}

func (l *Listener) routeSlate(in *Inbound) {
	switch {
	case l.sinks.PayerReplies:
		l.replies.ChanIn() <- in
	case l.sinks.PayeeProposals:
		l.proposals.ChanIn() <- in
	default:
		log.Debugf("no sink for inbound slate %s from %s",
			in.Slate.ID, in.From)
	}
}

func (l *Listener) writeJSON(env envelope) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return ErrNotConnected
	}
	return l.conn.WriteJSON(env)
}

func (l *Listener) State() ConnState {
	return ConnState(l.state.Load())
}

func (l *Listener) IsConnected() bool {
	return l.State() == StateConnected
}

// Address returns the listener's own relay address.
func (l *Listener) Address() string {
	return l.addr
}

// WaitConnected blocks until the session is Connected, the session fails, or
// the timeout elapses. It is a single cancellable suspension point rather
// than a poll loop; the timeout semantics match the documented 5 s bound when
// called with ConnectWait.
func (l *Listener) WaitConnected(timeout time.Duration) error {
	select {
	case <-l.connectedCh:
		return nil
	case <-l.failedCh:
		return fmt.Errorf("relay connect failed: %w", l.failErr)
	case <-l.quit:
		return ErrClosed
	case <-l.clk.TickAfter(timeout):
		return ErrConnectTimeout
	}
}

// Publish sends a slate to the destination address. Fire and forget: a nil
// return means the relay accepted the message, not that the destination saw
// it.
func (l *Listener) Publish(s *slate.Slate, dest string) error {
	if !l.IsConnected() {
		return ErrNotConnected
	}

	payload, err := s.Marshal()
	if err != nil {
		return err
	}
	err = l.writeJSON(envelope{
		Type:    typePostSlate,
		From:    l.addr,
		To:      dest,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("relay publish: %w", err)
	}
	log.Debugf("published slate %s to %s", s.ID, dest)
	return nil
}

// QueryAbbreviation broadcasts a resolution request for a 6-code suffix and
// waits for the response batch. The first response completes the query
// immediately; only the no-response case waits out the full window.
func (l *Listener) QueryAbbreviation(ctx context.Context, suffix string) ([]string, error) {
	if !l.IsConnected() {
		return nil, ErrNotConnected
	}

	err := l.writeJSON(envelope{
		Type:   typeRetrieveRelayAddr,
		From:   l.addr,
		Abbrev: suffix,
	})
	if err != nil {
		return nil, fmt.Errorf("relay address query: %w", err)
	}

	select {
	case v := <-l.queries.ChanOut():
		addrs, _ := v.([]string)
		return addrs, nil
	case <-l.clk.TickAfter(QueryWindow):
		return nil, ErrQueryTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.quit:
		return nil, ErrClosed
	}
}

// Replies delivers counter-signed slates for a payer session, in arrival
// order. Items are *Inbound.
func (l *Listener) Replies() <-chan interface{} {
	return l.replies.ChanOut()
}

// Proposals delivers inbound proposals for a payee session, in arrival
// order. Items are *Inbound.
func (l *Listener) Proposals() <-chan interface{} {
	return l.proposals.ChanOut()
}

// Close tears the session down and waits for the background workers to
// finish.
func (l *Listener) Close() {
	l.closeOnce.Do(func() {
		close(l.quit)

		l.mu.Lock()
		if l.conn != nil {
			l.conn.Close()
		}
		l.mu.Unlock()

		l.wg.Wait()

		l.replies.Stop()
		l.proposals.Stop()
		l.queries.Stop()
	})
}

package exchange

import (
	"github.com/mimblenet/slatewire/relay"
	"github.com/mimblenet/slatewire/slate"
)

// Listen connects to the relay and counter-signs inbound proposals until the
// returned listener is closed. The caller owns the listener.
func (e *Engine) Listen() (*relay.Listener, error) {
	l, err := e.dialRelay(relay.Sinks{PayeeProposals: true})
	if err != nil {
		return nil, err
	}

	if err := l.WaitConnected(relay.ConnectWait); err != nil {
		l.Close()
		return nil, err
	}

	l.DispatchProposals(func(s *slate.Slate) error {
		return s.VerifyMessages()
	}, e.Receive)

	log.Infof("listening on relay address %s", l.Address())
	return l, nil
}

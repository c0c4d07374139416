package transport

import (
	"context"
	"fmt"

	"github.com/mimblenet/slatewire/relay"
	"github.com/mimblenet/slatewire/slate"
)

// RelayAdapter exchanges a slate through a connected relay session. The
// reply wait has no timeout of its own: the relay connection's liveness is
// the bound, and callers limit the wait through ctx.
type RelayAdapter struct {
	l *relay.Listener
}

func NewRelayAdapter(l *relay.Listener) *RelayAdapter {
	return &RelayAdapter{l: l}
}

func (a *RelayAdapter) SendAndAwait(ctx context.Context, dest Destination,
	s *slate.Slate) (*slate.Slate, *slate.TxProof, error) {

	if err := a.l.Publish(s, dest.Address); err != nil {
		return nil, nil, err
	}

	for {
		select {
		case v, ok := <-a.l.Replies():
			if !ok {
				return nil, nil, fmt.Errorf("%w: relay reply channel closed",
					ErrTransport)
			}
			in, ok := v.(*relay.Inbound)
			if !ok || in.Slate.ID != s.ID {
				// Not ours; another exchange may be in flight.
				continue
			}

			proof := &slate.TxProof{
				SlateID:         s.ID,
				Amount:          s.Amount,
				SenderAddress:   a.l.Address(),
				ReceiverAddress: dest.Address,
			}
			return in.Slate, proof, nil

		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
}

var _ Adapter = &RelayAdapter{}

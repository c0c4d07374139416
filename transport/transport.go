// Package transport moves a slate to the counterparty and brings the
// counter-signed reply back, over either a synchronous HTTP round trip or
// the asynchronous relay service.
package transport

import (
	"context"
	"errors"

	"github.com/mimblenet/slatewire/slate"
)

var ErrTransport = errors.New("transport failure")
var ErrInvalidDestination = errors.New("unrecognized destination address")

// Adapter sends a proposal and awaits the counter-signed reply. The relay
// variant additionally produces a TxProof binding both addresses; the HTTP
// variant never does.
type Adapter interface {
	SendAndAwait(ctx context.Context, dest Destination, s *slate.Slate) (*slate.Slate, *slate.TxProof, error)
}

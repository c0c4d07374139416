package transport

import (
	"context"
	"strings"

	"github.com/mimblenet/slatewire/address"
)

type Kind int

const (
	KindHTTP Kind = iota
	KindRelay
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "HTTP"
	case KindRelay:
		return "RELAY"
	default:
		return "UNKNOWN"
	}
}

// Destination is a parsed send target. Parsing happens once at the call
// boundary; everything downstream switches on Kind instead of re-inspecting
// the raw string.
type Destination struct {
	Kind Kind

	// URL is the peer wallet endpoint for KindHTTP.
	URL string

	// Address is the full relay address for KindRelay.
	Address string
}

// Resolver resolves a 6-code abbreviation to a full relay address.
type Resolver interface {
	Resolve(ctx context.Context, suffix string) (string, error)
}

// ParseDestination classifies a raw destination string. An http or https URL
// selects the HTTP transport; a 6-code abbreviation is resolved through the
// directory; anything decoding as a full relay address is used as is.
func ParseDestination(ctx context.Context, raw string, r Resolver) (Destination, error) {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return Destination{Kind: KindHTTP, URL: raw}, nil
	}

	if address.ValidAbbreviation(raw) {
		if r == nil {
			return Destination{}, ErrInvalidDestination
		}
		full, err := r.Resolve(ctx, raw)
		if err != nil {
			return Destination{}, err
		}
		return Destination{Kind: KindRelay, Address: full}, nil
	}

	if _, _, err := address.Decode(raw); err == nil {
		return Destination{Kind: KindRelay, Address: raw}, nil
	}

	return Destination{}, ErrInvalidDestination
}

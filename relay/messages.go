package relay

import "encoding/json"

// Wire message types exchanged with the relay service. The relay is a plain
// rendezvous: it authenticates a subscriber by challenge signature and then
// routes messages by address without reading payloads.
const (
	typeChallenge         = "Challenge"
	typeSubscribe         = "Subscribe"
	typePostSlate         = "PostSlate"
	typeSlate             = "Slate"
	typeRetrieveRelayAddr = "RetrieveRelayAddr"
	typeRelayAddrs        = "RelayAddrs"
	typeError             = "Error"
)

type envelope struct {
	Type      string          `json:"type"`
	From      string          `json:"from,omitempty"`
	To        string          `json:"to,omitempty"`
	Challenge string          `json:"challenge,omitempty"`
	Signature string          `json:"signature,omitempty"`
	Abbrev    string          `json:"abbrev,omitempty"`
	Addresses []string        `json:"addresses,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

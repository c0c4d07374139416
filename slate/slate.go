// Package slate implements the shared negotiation record that two wallets
// use to jointly construct a transaction.
package slate

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

type Status int

const (
	StatusProposed      Status = 1
	StatusSent          Status = 2
	StatusCounterSigned Status = 3
	StatusFinalized     Status = 4
	StatusPosted        Status = 5
	StatusCancelled     Status = 6
)

func (s Status) String() string {
	switch s {
	case StatusProposed:
		return "PROPOSED"
	case StatusSent:
		return "SENT"
	case StatusCounterSigned:
		return "COUNTERSIGNED"
	case StatusFinalized:
		return "FINALIZED"
	case StatusPosted:
		return "POSTED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

const (
	Version = 2

	// MaxParticipants is fixed: a slate with two contributions is
	// finalizable and accepts no further ones.
	MaxParticipants = 2
)

var ErrTooManyParticipants = errors.New("slate already has two participants")
var ErrDuplicateParticipant = errors.New("duplicate participant id")
var ErrNotFinalizable = errors.New("slate is missing a participant contribution")

// Participant is one party's cryptographic contribution to the slate.
type Participant struct {
	ID          uint64 `json:"id"`
	PublicKey   []byte `json:"publicKey"`
	PublicNonce []byte `json:"publicNonce"`
	PartialSig  []byte `json:"partialSig,omitempty"`
	Message     string `json:"message,omitempty"`
	MessageSig  []byte `json:"messageSig,omitempty"`
}

// Slate is the negotiation record exchanged between the two endpoints. No
// instance is shared across a network or channel boundary: every hop
// transmits a copy.
type Slate struct {
	ID           uuid.UUID     `json:"id"`
	Version      uint16        `json:"version"`
	Amount       uint64        `json:"amount"`
	Fee          uint64        `json:"fee"`
	Height       uint64        `json:"height"`
	Participants []Participant `json:"participants"`
	Status       Status        `json:"status"`
	Tx           []byte        `json:"tx,omitempty"`
}

func New(amount uint64) *Slate {
	return &Slate{
		ID:      uuid.New(),
		Version: Version,
		Amount:  amount,
		Status:  StatusProposed,
	}
}

// Clone returns an owned copy suitable for handing across a channel or
// transport boundary.
func (s *Slate) Clone() *Slate {
	c := *s
	c.Participants = make([]Participant, len(s.Participants))
	copy(c.Participants, s.Participants)
	if s.Tx != nil {
		c.Tx = append([]byte(nil), s.Tx...)
	}
	return &c
}

func (s *Slate) AddParticipant(p Participant) error {
	if len(s.Participants) >= MaxParticipants {
		return ErrTooManyParticipants
	}
	for _, existing := range s.Participants {
		if existing.ID == p.ID {
			return ErrDuplicateParticipant
		}
	}
	s.Participants = append(s.Participants, p)
	return nil
}

func (s *Slate) Participant(id uint64) *Participant {
	for i := range s.Participants {
		if s.Participants[i].ID == id {
			return &s.Participants[i]
		}
	}
	return nil
}

// Finalizable reports whether both contributions are present.
func (s *Slate) Finalizable() bool {
	return len(s.Participants) == MaxParticipants
}

func (s *Slate) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

func Parse(buf []byte) (*Slate, error) {
	var s Slate
	if err := json.Unmarshal(buf, &s); err != nil {
		return nil, err
	}
	if s.ID == uuid.Nil {
		return nil, errors.New("slate is missing an id")
	}
	return &s, nil
}

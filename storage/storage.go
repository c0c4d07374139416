// Package storage persists the wallet's view of each transaction: the slate,
// its lifecycle status, the outputs locked behind it and the raw transaction
// once finalized.
package storage

import (
	"errors"
	"time"

	"github.com/mimblenet/slatewire/slate"
	"github.com/mimblenet/slatewire/wallet"
)

var ErrNotFound = errors.New("record not found")
var ErrExists = errors.New("record already exists")

type Record struct {
	// ID is the slate's canonical UUID string.
	ID string

	Slate     slate.Slate
	Status    slate.Status
	Outputs   wallet.OutputSet
	Tx        []byte
	Proof     *slate.TxProof
	Confirmed bool
	CreatedAt time.Time
}

type Storage interface {
	Get(id string) (*Record, error)
	List() ([]Record, error)
	Create(rec Record) error
	Update(rec Record) error
}

// Package wallet defines the contracts the exchange engine consumes from the
// surrounding wallet: fund locking, contribution signing, finalization and
// chain access. The engine never reaches past these interfaces.
package wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/google/uuid"

	"github.com/mimblenet/slatewire/slate"
)

// OutputSet identifies the wallet outputs backing one proposal.
type OutputSet []string

type Wallet interface {
	// SigningKey returns the wallet's stable signing key. The relay
	// address is derived from it and never regenerated.
	SigningKey() (*btcec.PrivateKey, error)

	// SelectOutputs picks outputs covering amount under the given
	// selection strategy ("all" or "smallest") and confirmation
	// threshold.
	SelectOutputs(amount uint64, strategy string, minConf uint64) (OutputSet, error)

	// LockOutputs marks the set as spent-in-flight so a concurrent
	// proposal cannot select it. All-or-nothing. The slate id records
	// which proposal owns the lock.
	LockOutputs(set OutputSet, slateID uuid.UUID) error

	// UnlockOutputs releases a previously locked set.
	UnlockOutputs(set OutputSet)

	// Contribute appends this wallet's participant entry to the slate
	// and returns the updated copy.
	Contribute(s *slate.Slate, participantID uint64, message string) (*slate.Slate, error)

	// Finalize combines both contributions into a fully signed
	// transaction, populating s.Tx.
	Finalize(s *slate.Slate) (*slate.Slate, error)
}

// NodeClient is the narrow view of a chain node.
type NodeClient interface {
	PostTx(tx []byte) error
	Height() (uint64, error)
}

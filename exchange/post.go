package exchange

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mimblenet/slatewire/slate"
	"github.com/mimblenet/slatewire/storage"
)

// Post broadcasts a finalized slate. If the node rejects it, every other
// unconfirmed finalized transaction is reposted first, on the theory that the
// rejection is an unmet dependency, and the broadcast is retried exactly once.
// A retry failure, or a failure with nothing to repost, cancels the
// transaction.
func (e *Engine) Post(s *slate.Slate) (*slate.Slate, error) {
	err := e.node.PostTx(s.Tx)
	if err == nil {
		return e.markPosted(s)
	}

	log.Warnf("broadcast of %s rejected: %v", s.ID, err)

	if e.repostUnconfirmed(s.ID.String()) {
		retryErr := e.node.PostTx(s.Tx)
		if retryErr == nil {
			return e.markPosted(s)
		}
		err = retryErr
	}

	if cerr := e.Cancel(s.ID); cerr != nil {
		log.Warnf("cancel after failed broadcast of %s: %v", s.ID, cerr)
	}
	return nil, fmt.Errorf("%w: %v", ErrBroadcast, err)
}

// PostByID rebroadcasts a stored transaction. The stored raw transaction is
// pushed as-is; nothing is re-signed.
func (e *Engine) PostByID(id uuid.UUID) error {
	rec, err := e.db.Get(id.String())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrStorageNotFound
		}
		return err
	}
	if rec.Confirmed {
		return ErrAlreadyConfirmed
	}
	if len(rec.Tx) == 0 {
		return ErrStorageNotFound
	}

	if err := e.node.PostTx(rec.Tx); err != nil {
		return fmt.Errorf("%w: %v", ErrBroadcast, err)
	}

	rec.Status = slate.StatusPosted
	rec.Slate.Status = slate.StatusPosted
	return e.db.Update(*rec)
}

// Tx returns the stored record for a transaction.
func (e *Engine) Tx(id uuid.UUID) (*storage.Record, error) {
	rec, err := e.db.Get(id.String())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrStorageNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Txs returns all stored records, oldest first.
func (e *Engine) Txs() ([]storage.Record, error) {
	return e.db.List()
}

// repostUnconfirmed pushes every stored unconfirmed finalized transaction
// except the one being retried. It reports whether any push succeeded.
func (e *Engine) repostUnconfirmed(except string) bool {
	recs, err := e.db.List()
	if err != nil {
		log.Warnf("listing transactions for repost: %v", err)
		return false
	}

	any := false
	for _, rec := range recs {
		if rec.ID == except || rec.Confirmed || len(rec.Tx) == 0 {
			continue
		}
		if rec.Status != slate.StatusFinalized && rec.Status != slate.StatusPosted {
			continue
		}
		if err := e.node.PostTx(rec.Tx); err != nil {
			log.Debugf("repost of %s failed: %v", rec.ID, err)
			continue
		}
		log.Infof("reposted unconfirmed transaction %s", rec.ID)
		any = true
	}
	return any
}

func (e *Engine) markPosted(s *slate.Slate) (*slate.Slate, error) {
	posted := s.Clone()
	posted.Status = slate.StatusPosted

	rec, err := e.db.Get(posted.ID.String())
	if err != nil {
		return nil, err
	}
	rec.Slate = *posted.Clone()
	rec.Status = slate.StatusPosted
	if err := e.db.Update(*rec); err != nil {
		return nil, err
	}

	log.Infof("broadcast transaction %s", posted.ID)
	return posted, nil
}

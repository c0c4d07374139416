package exchange

import (
	"errors"

	"github.com/google/uuid"
	"github.com/mimblenet/slatewire/slate"
	"github.com/mimblenet/slatewire/storage"
)

// Cancel abandons an unposted transaction and releases any funds locked
// behind it. Cancelling an already-cancelled transaction is a no-op; a posted
// transaction cannot be cancelled.
func (e *Engine) Cancel(id uuid.UUID) error {
	rec, err := e.db.Get(id.String())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrStorageNotFound
		}
		return err
	}

	switch rec.Status {
	case slate.StatusCancelled:
		return nil
	case slate.StatusPosted:
		return ErrCancelPosted
	}

	if len(rec.Outputs) > 0 {
		e.w.UnlockOutputs(rec.Outputs)
	}

	rec.Status = slate.StatusCancelled
	rec.Slate.Status = slate.StatusCancelled
	if err := e.db.Update(*rec); err != nil {
		return err
	}

	log.Infof("cancelled transaction %s", id)
	return nil
}

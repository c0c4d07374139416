package exchange

import (
	"errors"
	"fmt"

	"github.com/mimblenet/slatewire/slate"
	"github.com/mimblenet/slatewire/storage"
	"github.com/mimblenet/slatewire/transport"
)

// Receive counter-signs an incoming proposal. The returned slate carries both
// participant entries and is ready for the sender to finalize.
func (e *Engine) Receive(s *slate.Slate) (*slate.Slate, error) {
	if err := s.VerifyMessages(); err != nil {
		return nil, err
	}

	reply, err := e.w.Contribute(s, receiverParticipantID, e.recvMsg)
	if err != nil {
		return nil, err
	}
	reply.Status = slate.StatusCounterSigned

	log.Infof("received slate %s (%d), counter-signed", reply.ID, reply.Amount)

	rec := storage.Record{
		ID:        reply.ID.String(),
		Slate:     *reply.Clone(),
		Status:    slate.StatusCounterSigned,
		CreatedAt: e.clk.Now(),
	}
	if err := e.db.Create(rec); err != nil && !errors.Is(err, storage.ErrExists) {
		return nil, err
	}

	return reply, nil
}

// ReceiveFile counter-signs a proposal read from path and writes the reply
// alongside it with a ".response" suffix.
func (e *Engine) ReceiveFile(path string) (*slate.Slate, error) {
	s, err := transport.ReadSlateFile(path)
	if err != nil {
		return nil, err
	}
	reply, err := e.Receive(s)
	if err != nil {
		return nil, err
	}
	if err := transport.WriteSlateFile(path+".response", reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// Finalize completes a counter-signed slate on the sender side and broadcasts
// it. A finalization failure cancels the transaction and releases its funds.
func (e *Engine) Finalize(s *slate.Slate) (*slate.Slate, error) {
	if err := s.VerifyMessages(); err != nil {
		return nil, err
	}

	final, err := e.finalize(s, nil)
	if err != nil {
		if cerr := e.Cancel(s.ID); cerr != nil {
			log.Warnf("cancel after failed finalize of %s: %v", s.ID, cerr)
		}
		return nil, err
	}

	return e.Post(final)
}

// FinalizeFile finalizes and broadcasts a counter-signed slate read from path.
func (e *Engine) FinalizeFile(path string) (*slate.Slate, error) {
	s, err := transport.ReadSlateFile(path)
	if err != nil {
		return nil, err
	}
	return e.Finalize(s)
}

// finalize assembles the full signature and stores the resulting raw
// transaction and proof against the record.
func (e *Engine) finalize(s *slate.Slate, proof *slate.TxProof) (*slate.Slate, error) {
	final, err := e.w.Finalize(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFinalize, err)
	}

	rec, err := e.db.Get(final.ID.String())
	if err != nil {
		return nil, err
	}
	rec.Slate = *final.Clone()
	rec.Status = slate.StatusFinalized
	rec.Tx = append([]byte(nil), final.Tx...)
	rec.Proof = proof
	if err := e.db.Update(*rec); err != nil {
		return nil, err
	}

	return final, nil
}

package exchange

import (
	"context"
	"strings"

	"github.com/mimblenet/slatewire/address"
	"github.com/mimblenet/slatewire/relay"
	"github.com/mimblenet/slatewire/slate"
	"github.com/mimblenet/slatewire/storage"
	"github.com/mimblenet/slatewire/transport"
	"github.com/mimblenet/slatewire/wallet"
)

type SendArgs struct {
	Amount      uint64
	Destination string

	// Strategy is the output selection strategy, "all" or "smallest".
	Strategy string

	// Message rides on the sender's participant entry, signed.
	Message string
}

// Send drives a transaction from proposal to broadcast. The destination
// string selects the transport: an http or https URL goes direct, anything
// else goes through the relay.
func (e *Engine) Send(ctx context.Context, args SendArgs) (*slate.Slate, error) {
	if strings.HasPrefix(args.Destination, "http://") ||
		strings.HasPrefix(args.Destination, "https://") {
		return e.sendHTTP(ctx, args)
	}
	return e.sendRelay(ctx, args)
}

func (e *Engine) sendHTTP(ctx context.Context, args SendArgs) (*slate.Slate, error) {
	dest := transport.Destination{Kind: transport.KindHTTP, URL: args.Destination}
	adapter := transport.NewHTTPAdapter(e.httpClient)
	return e.exchange(ctx, args, dest, adapter)
}

func (e *Engine) sendRelay(ctx context.Context, args SendArgs) (*slate.Slate, error) {
	// The session is scoped to this exchange: resolution, the proposal
	// and the reply all travel over it. Connect before locking any funds
	// so a relay outage cannot strand a lock.
	l, err := e.dialRelay(relay.Sinks{PayerReplies: true, QueryResponses: true})
	if err != nil {
		return nil, err
	}
	defer l.Close()

	if err := l.WaitConnected(relay.ConnectWait); err != nil {
		return nil, err
	}

	dest, err := transport.ParseDestination(ctx, args.Destination,
		address.NewDirectory(l))
	if err != nil {
		return nil, err
	}

	adapter := transport.NewRelayAdapter(l)
	return e.exchange(ctx, args, dest, adapter)
}

// exchange runs propose -> send -> verify -> finalize -> post. Any failure
// after the fund lock and before finalization rolls the lock back; the slate
// is never left locked without a recoverable record.
func (e *Engine) exchange(ctx context.Context, args SendArgs,
	dest transport.Destination, adapter transport.Adapter) (*slate.Slate, error) {

	proposal, outputs, err := e.propose(args)
	if err != nil {
		return nil, err
	}

	abort := func() {
		e.w.UnlockOutputs(outputs)
		e.markCancelled(proposal.ID.String())
	}

	log.Infof("sending slate %s (%d) to %s via %s",
		proposal.ID, proposal.Amount, args.Destination, dest.Kind)

	sent := proposal.Clone()
	sent.Status = slate.StatusSent
	reply, proof, err := adapter.SendAndAwait(ctx, dest, sent)
	if err != nil {
		abort()
		return nil, err
	}

	if err := reply.VerifyMessages(); err != nil {
		abort()
		return nil, err
	}

	final, err := e.finalize(reply, proof)
	if err != nil {
		abort()
		return nil, err
	}

	return e.Post(final)
}

// InitSend builds a proposal slate and locks the funds behind it without
// sending it anywhere. File-based exchanges start here.
func (e *Engine) InitSend(amount uint64, strategy, message string) (*slate.Slate, error) {
	s, _, err := e.propose(SendArgs{
		Amount:   amount,
		Strategy: strategy,
		Message:  message,
	})
	return s, err
}

func (e *Engine) propose(args SendArgs) (*slate.Slate, wallet.OutputSet, error) {
	outputs, err := e.w.SelectOutputs(args.Amount, args.Strategy,
		e.cfg.SendingMinimumConfirmations)
	if err != nil {
		return nil, nil, err
	}

	proposal, err := e.w.Contribute(slate.New(args.Amount),
		senderParticipantID, args.Message)
	if err != nil {
		return nil, nil, err
	}

	if err := e.w.LockOutputs(outputs, proposal.ID); err != nil {
		return nil, nil, err
	}

	rec := storage.Record{
		ID:        proposal.ID.String(),
		Slate:     *proposal.Clone(),
		Status:    slate.StatusProposed,
		Outputs:   outputs,
		CreatedAt: e.clk.Now(),
	}
	if err := e.db.Create(rec); err != nil {
		e.w.UnlockOutputs(outputs)
		return nil, nil, err
	}

	return proposal, outputs, nil
}

// markCancelled is a best-effort record update on a rollback path.
func (e *Engine) markCancelled(id string) {
	rec, err := e.db.Get(id)
	if err != nil {
		return
	}
	rec.Status = slate.StatusCancelled
	rec.Slate.Status = slate.StatusCancelled
	if err := e.db.Update(*rec); err != nil {
		log.Warnf("failed to mark slate %s cancelled: %v", id, err)
	}
}

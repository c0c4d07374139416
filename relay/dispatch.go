package relay

import "github.com/mimblenet/slatewire/slate"

// ReceiveHandler applies the local receive operation to an inbound proposal
// and returns the counter-signed slate to publish back to the sender.
type ReceiveHandler func(s *slate.Slate) (*slate.Slate, error)

// DispatchProposals starts the background worker that drains inbound
// proposals for the lifetime of the listener. Failures on individual slates
// are logged and swallowed: a malformed or hostile inbound slate must never
// terminate the loop or affect other slates in flight. The loop ends only
// when the listener is torn down.
func (l *Listener) DispatchProposals(verify func(*slate.Slate) error,
	handle ReceiveHandler) {

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			select {
			case v := <-l.proposals.ChanOut():
				in, ok := v.(*Inbound)
				if !ok {
					continue
				}
				l.handleProposal(in, verify, handle)
			case <-l.quit:
				return
			}
		}
	}()
}

func (l *Listener) handleProposal(in *Inbound, verify func(*slate.Slate) error,
	handle ReceiveHandler) {

	if err := verify(in.Slate); err != nil {
		log.Warnf("dropping inbound slate %s from %s: %v",
			in.Slate.ID, in.From, err)
		return
	}

	reply, err := handle(in.Slate)
	if err != nil {
		log.Warnf("receive failed for slate %s from %s: %v",
			in.Slate.ID, in.From, err)
		return
	}

	// Republishing the result is fire and forget.
	if err := l.Publish(reply, in.From); err != nil {
		log.Debugf("slate %s: republish to %s failed: %v",
			in.Slate.ID, in.From, err)
		return
	}
	log.Infof("slate %s sent back to %s", in.Slate.ID, in.From)
}

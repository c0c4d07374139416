package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mimblenet/slatewire/slate"
	"github.com/mimblenet/slatewire/storage"
	"github.com/mimblenet/slatewire/storage/memory"
	"github.com/mimblenet/slatewire/transport"
	"github.com/mimblenet/slatewire/wallet/memwallet"
)

func testSeed(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

type fakeNode struct {
	mu     sync.Mutex
	posted [][]byte
	postFn func(tx []byte) error
}

func (n *fakeNode) PostTx(tx []byte) error {
	n.mu.Lock()
	n.posted = append(n.posted, append([]byte(nil), tx...))
	fn := n.postFn
	n.mu.Unlock()

	if fn != nil {
		return fn(tx)
	}
	return nil
}

func (n *fakeNode) Height() (uint64, error) {
	return 100, nil
}

func (n *fakeNode) postCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.posted)
}

func newTestEngine(t *testing.T, seed byte) (*Engine, *memwallet.Wallet, *fakeNode) {
	t.Helper()

	w, err := memwallet.New(testSeed(seed))
	require.NoError(t, err)

	node := &fakeNode{}
	e, err := New(DefaultConfig, w, node, memory.NewMemoryStorage())
	require.NoError(t, err)
	return e, w, node
}

func fund(w *memwallet.Wallet) {
	w.AddOutput(memwallet.Output{ID: "out-1", Value: 600_000, Confirmations: 20})
	w.AddOutput(memwallet.Output{ID: "out-2", Value: 500_000, Confirmations: 20})
}

func TestSendHTTPFlow(t *testing.T) {
	sender, sw, node := newTestEngine(t, 1)
	fund(sw)
	recv, _, _ := newTestEngine(t, 2)
	recv.SetReceiveMessage("thanks")

	srv := httptest.NewServer(transport.ServeReceive(recv.Receive))
	defer srv.Close()

	final, err := sender.Send(context.Background(), SendArgs{
		Amount:      1_000_000,
		Destination: srv.URL,
		Strategy:    "all",
		Message:     "rent",
	})
	require.NoError(t, err)
	require.Equal(t, slate.StatusPosted, final.Status)
	require.Len(t, final.Participants, 2)
	require.Equal(t, 1, node.postCount())

	// Both signed messages survive the round trip.
	require.Equal(t, "rent", final.Participant(0).Message)
	require.Equal(t, "thanks", final.Participant(1).Message)

	// Spent outputs stay locked once the transaction is in flight.
	require.Equal(t, 2, sw.Locks().LockedCount())

	rec, err := sender.Tx(final.ID)
	require.NoError(t, err)
	require.Equal(t, slate.StatusPosted, rec.Status)
	require.NotEmpty(t, rec.Tx)

	// The receiver keeps its own counter-signed record.
	rrec, err := recv.Tx(final.ID)
	require.NoError(t, err)
	require.Equal(t, slate.StatusCounterSigned, rrec.Status)
}

func TestSendUnreachablePeerReleasesLocks(t *testing.T) {
	sender, sw, node := newTestEngine(t, 1)
	fund(sw)

	_, err := sender.Send(context.Background(), SendArgs{
		Amount:      1_000_000,
		Destination: "http://127.0.0.1:1",
		Strategy:    "all",
	})
	require.ErrorIs(t, err, transport.ErrTransport)
	require.Zero(t, sw.Locks().LockedCount())
	require.Zero(t, node.postCount())

	recs, err := sender.Txs()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, slate.StatusCancelled, recs[0].Status)
}

func TestSendBadReplyReleasesLocks(t *testing.T) {
	sender, sw, node := newTestEngine(t, 1)
	fund(sw)
	recvW, err := memwallet.New(testSeed(2))
	require.NoError(t, err)

	// A peer that counter-signs but corrupts its message signature.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		s, err := slate.Parse(buf)
		require.NoError(t, err)

		reply, err := recvW.Contribute(s, 1, "gotcha")
		require.NoError(t, err)
		reply.Participants[len(reply.Participants)-1].MessageSig = []byte("bogus")
		json.NewEncoder(w).Encode(reply)
	}))
	defer srv.Close()

	_, err = sender.Send(context.Background(), SendArgs{
		Amount:      1_000_000,
		Destination: srv.URL,
		Strategy:    "all",
	})
	require.ErrorIs(t, err, slate.ErrMessageSignature)
	require.Zero(t, sw.Locks().LockedCount())
	require.Zero(t, node.postCount())

	recs, err := sender.Txs()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, slate.StatusCancelled, recs[0].Status)
}

func TestSendInsufficientFunds(t *testing.T) {
	sender, sw, _ := newTestEngine(t, 1)
	fund(sw)

	_, err := sender.Send(context.Background(), SendArgs{
		Amount:      10_000_000,
		Destination: "http://127.0.0.1:1",
		Strategy:    "all",
	})
	require.ErrorIs(t, err, memwallet.ErrInsufficientFunds)
	require.Zero(t, sw.Locks().LockedCount())

	recs, err := sender.Txs()
	require.NoError(t, err)
	require.Empty(t, recs)
}

// counterSign plays the receiving wallet against a proposal, off-engine.
func counterSign(t *testing.T, proposal *slate.Slate, seed byte) *slate.Slate {
	t.Helper()
	w, err := memwallet.New(testSeed(seed))
	require.NoError(t, err)
	reply, err := w.Contribute(proposal, 1, "")
	require.NoError(t, err)
	reply.Status = slate.StatusCounterSigned
	return reply
}

func TestPostRepostsUnconfirmedThenRetries(t *testing.T) {
	sender, sw, node := newTestEngine(t, 1)
	fund(sw)

	oldTx := []byte(`{"old":true}`)
	require.NoError(t, sender.db.Create(storage.Record{
		ID:        uuid.New().String(),
		Status:    slate.StatusFinalized,
		Tx:        oldTx,
		CreatedAt: time.Now().Add(-time.Hour),
	}))

	proposal, err := sender.InitSend(1_000_000, "all", "")
	require.NoError(t, err)
	reply := counterSign(t, proposal, 2)

	var calls int
	node.postFn = func(tx []byte) error {
		calls++
		if calls == 1 {
			return errors.New("pool rejected: missing dependency")
		}
		return nil
	}

	final, err := sender.Finalize(reply)
	require.NoError(t, err)
	require.Equal(t, slate.StatusPosted, final.Status)

	// First push fails, the old unconfirmed tx is reposted, then the
	// original push is retried once.
	require.Equal(t, 3, node.postCount())
	require.Equal(t, oldTx, node.posted[1])
	require.Equal(t, node.posted[0], node.posted[2])
}

func TestPostFailureNothingToRepostCancels(t *testing.T) {
	sender, sw, node := newTestEngine(t, 1)
	fund(sw)

	proposal, err := sender.InitSend(1_000_000, "all", "")
	require.NoError(t, err)
	reply := counterSign(t, proposal, 2)

	node.postFn = func([]byte) error {
		return errors.New("pool rejected")
	}

	_, err = sender.Finalize(reply)
	require.ErrorIs(t, err, ErrBroadcast)

	// No repost candidates, so no retry either.
	require.Equal(t, 1, node.postCount())
	require.Zero(t, sw.Locks().LockedCount())

	rec, err := sender.Tx(proposal.ID)
	require.NoError(t, err)
	require.Equal(t, slate.StatusCancelled, rec.Status)
}

func TestPostRetryExhaustedCancels(t *testing.T) {
	sender, sw, node := newTestEngine(t, 1)
	fund(sw)

	oldTx := []byte(`{"old":true}`)
	require.NoError(t, sender.db.Create(storage.Record{
		ID:        uuid.New().String(),
		Status:    slate.StatusFinalized,
		Tx:        oldTx,
		CreatedAt: time.Now().Add(-time.Hour),
	}))

	proposal, err := sender.InitSend(1_000_000, "all", "")
	require.NoError(t, err)
	reply := counterSign(t, proposal, 2)

	node.postFn = func(tx []byte) error {
		if bytes.Equal(tx, oldTx) {
			return nil
		}
		return errors.New("pool rejected")
	}

	_, err = sender.Finalize(reply)
	require.ErrorIs(t, err, ErrBroadcast)

	// Fail, repost the old tx, retry once, give up.
	require.Equal(t, 3, node.postCount())
	require.Zero(t, sw.Locks().LockedCount())

	rec, err := sender.Tx(proposal.ID)
	require.NoError(t, err)
	require.Equal(t, slate.StatusCancelled, rec.Status)
}

func TestCancel(t *testing.T) {
	sender, sw, _ := newTestEngine(t, 1)
	fund(sw)

	proposal, err := sender.InitSend(1_000_000, "all", "")
	require.NoError(t, err)
	require.Equal(t, 2, sw.Locks().LockedCount())

	require.NoError(t, sender.Cancel(proposal.ID))
	require.Zero(t, sw.Locks().LockedCount())

	rec, err := sender.Tx(proposal.ID)
	require.NoError(t, err)
	require.Equal(t, slate.StatusCancelled, rec.Status)

	// Cancelling again is a no-op.
	require.NoError(t, sender.Cancel(proposal.ID))

	require.ErrorIs(t, sender.Cancel(uuid.New()), ErrStorageNotFound)
}

func TestCancelPosted(t *testing.T) {
	sender, sw, _ := newTestEngine(t, 1)
	fund(sw)
	recv, _, _ := newTestEngine(t, 2)

	srv := httptest.NewServer(transport.ServeReceive(recv.Receive))
	defer srv.Close()

	final, err := sender.Send(context.Background(), SendArgs{
		Amount:      1_000_000,
		Destination: srv.URL,
		Strategy:    "all",
	})
	require.NoError(t, err)

	require.ErrorIs(t, sender.Cancel(final.ID), ErrCancelPosted)
	require.Equal(t, 2, sw.Locks().LockedCount())
}

func TestPostByID(t *testing.T) {
	sender, _, node := newTestEngine(t, 1)

	require.ErrorIs(t, sender.PostByID(uuid.New()), ErrStorageNotFound)

	confirmed := uuid.New()
	require.NoError(t, sender.db.Create(storage.Record{
		ID:        confirmed.String(),
		Status:    slate.StatusPosted,
		Tx:        []byte("raw"),
		Confirmed: true,
	}))
	require.ErrorIs(t, sender.PostByID(confirmed), ErrAlreadyConfirmed)

	noTx := uuid.New()
	require.NoError(t, sender.db.Create(storage.Record{
		ID:     noTx.String(),
		Status: slate.StatusProposed,
	}))
	require.ErrorIs(t, sender.PostByID(noTx), ErrStorageNotFound)

	ok := uuid.New()
	require.NoError(t, sender.db.Create(storage.Record{
		ID:     ok.String(),
		Status: slate.StatusFinalized,
		Tx:     []byte("raw"),
	}))
	require.NoError(t, sender.PostByID(ok))
	require.Equal(t, 1, node.postCount())

	rec, err := sender.Tx(ok)
	require.NoError(t, err)
	require.Equal(t, slate.StatusPosted, rec.Status)
}

func TestReceiveIdempotent(t *testing.T) {
	recv, _, _ := newTestEngine(t, 2)
	sw, err := memwallet.New(testSeed(1))
	require.NoError(t, err)

	proposal, err := sw.Contribute(slate.New(500), 0, "hello")
	require.NoError(t, err)

	first, err := recv.Receive(proposal.Clone())
	require.NoError(t, err)
	require.Equal(t, slate.StatusCounterSigned, first.Status)
	require.Len(t, first.Participants, 2)

	// A redelivered proposal counter-signs again without erroring.
	second, err := recv.Receive(proposal.Clone())
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, second.Participants, 2)
}

func TestReceiveRejectsTamperedMessage(t *testing.T) {
	recv, _, _ := newTestEngine(t, 2)
	sw, err := memwallet.New(testSeed(1))
	require.NoError(t, err)

	proposal, err := sw.Contribute(slate.New(500), 0, "hello")
	require.NoError(t, err)
	proposal.Participants[0].Message = "pay me instead"

	_, err = recv.Receive(proposal)
	require.ErrorIs(t, err, slate.ErrMessageSignature)

	recs, err := recv.Txs()
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestFileExchangeFlow(t *testing.T) {
	sender, sw, node := newTestEngine(t, 1)
	fund(sw)
	recv, _, _ := newTestEngine(t, 2)

	path := filepath.Join(t.TempDir(), "tx.slate")

	proposal, err := sender.InitSend(1_000_000, "all", "invoice 7")
	require.NoError(t, err)
	require.NoError(t, transport.WriteSlateFile(path, proposal))

	reply, err := recv.ReceiveFile(path)
	require.NoError(t, err)
	require.Len(t, reply.Participants, 2)

	final, err := sender.FinalizeFile(path + ".response")
	require.NoError(t, err)
	require.Equal(t, slate.StatusPosted, final.Status)
	require.Equal(t, 1, node.postCount())
}

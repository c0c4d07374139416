package memwallet

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mimblenet/slatewire/slate"
	"github.com/mimblenet/slatewire/wallet"
)

var testSeed = []byte("0123456789abcdef0123456789abcdef")

func testWallet(t *testing.T) *Wallet {
	t.Helper()

	w, err := New(testSeed)
	require.NoError(t, err)
	w.AddOutput(Output{ID: "out-1", Value: 600000, Confirmations: 12})
	w.AddOutput(Output{ID: "out-2", Value: 500000, Confirmations: 12})
	w.AddOutput(Output{ID: "out-3", Value: 100, Confirmations: 0})
	return w
}

func TestSelectOutputsSmallest(t *testing.T) {
	w := testWallet(t)

	set, err := w.SelectOutputs(400000, "smallest", 1)
	require.NoError(t, err)
	require.Equal(t, 1, len(set))
	require.Equal(t, "out-2", set[0])
}

func TestSelectOutputsAll(t *testing.T) {
	w := testWallet(t)

	set, err := w.SelectOutputs(1000000, "all", 1)
	require.NoError(t, err)
	require.Equal(t, 2, len(set))
}

func TestSelectOutputsRespectsConfirmations(t *testing.T) {
	w := testWallet(t)

	// Only out-3 has zero confirmations and it cannot cover the amount
	// once the others require a confirmation.
	_, err := w.SelectOutputs(1200000, "all", 1)
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestSelectOutputsUnknownStrategy(t *testing.T) {
	w := testWallet(t)

	_, err := w.SelectOutputs(100, "largest", 0)
	require.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestSelectSkipsLockedOutputs(t *testing.T) {
	w := testWallet(t)

	require.NoError(t, w.LockOutputs(wallet.OutputSet{"out-2"}, uuid.New()))
	set, err := w.SelectOutputs(400000, "smallest", 1)
	require.NoError(t, err)
	require.Equal(t, []string{"out-1"}, []string(set))
}

func TestContributeAndFinalize(t *testing.T) {
	sender := testWallet(t)
	receiver, err := New([]byte("fedcba9876543210fedcba9876543210"))
	require.NoError(t, err)

	s := slate.New(1000000)
	s, err = sender.Contribute(s, 0, "sender note")
	require.NoError(t, err)
	require.NoError(t, s.VerifyMessages())

	s, err = receiver.Contribute(s, 1, "")
	require.NoError(t, err)
	require.True(t, s.Finalizable())

	final, err := sender.Finalize(s)
	require.NoError(t, err)
	require.Equal(t, slate.StatusFinalized, final.Status)
	require.NotEmpty(t, final.Tx)
}

func TestFinalizeRequiresBothContributions(t *testing.T) {
	w := testWallet(t)

	s := slate.New(1000)
	s, err := w.Contribute(s, 0, "")
	require.NoError(t, err)

	_, err = w.Finalize(s)
	require.ErrorIs(t, err, slate.ErrNotFinalizable)
}

func TestFinalizeRejectsForgedContribution(t *testing.T) {
	w := testWallet(t)

	s := slate.New(1000)
	s, err := w.Contribute(s, 0, "")
	require.NoError(t, err)

	forged := s.Participants[0]
	forged.ID = 1
	forged.PartialSig = []byte("not a signature")
	require.NoError(t, s.AddParticipant(forged))

	_, err = w.Finalize(s)
	require.ErrorIs(t, err, ErrInvalidContribution)
}

func TestContributionDeterministicPerSlate(t *testing.T) {
	w := testWallet(t)

	s := slate.New(1000)
	a, err := w.Contribute(s.Clone(), 0, "")
	require.NoError(t, err)
	b, err := w.Contribute(s.Clone(), 0, "")
	require.NoError(t, err)

	require.Equal(t, a.Participants[0].PublicNonce, b.Participants[0].PublicNonce)
}

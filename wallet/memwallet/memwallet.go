// Package memwallet is an in-process wallet backing the exchange engine. It
// keeps outputs in memory and derives keys from a single seed, which is
// enough for the protocol engine, its tests and the CLI.
package memwallet

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/google/uuid"

	"github.com/mimblenet/slatewire/slate"
	"github.com/mimblenet/slatewire/wallet"
)

var ErrInsufficientFunds = errors.New("insufficient funds")
var ErrUnknownStrategy = errors.New("unknown selection strategy")
var ErrInvalidContribution = errors.New("invalid participant contribution")

// Output is a spendable wallet output.
type Output struct {
	ID            string
	Value         uint64
	Confirmations uint64
}

type Wallet struct {
	mu      sync.Mutex
	ek      *hdkeychain.ExtendedKey
	key     *btcec.PrivateKey
	outputs map[string]Output
	locks   *wallet.LockRegistry
}

func New(seed []byte) (*Wallet, error) {
	ek, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}

	child, err := ek.Derive(0)
	if err != nil {
		return nil, err
	}
	key, err := child.ECPrivKey()
	if err != nil {
		return nil, err
	}

	return &Wallet{
		ek:      ek,
		key:     key,
		outputs: make(map[string]Output),
		locks:   wallet.NewLockRegistry(),
	}, nil
}

// AddOutput funds the wallet.
func (w *Wallet) AddOutput(out Output) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.outputs[out.ID] = out
}

func (w *Wallet) SigningKey() (*btcec.PrivateKey, error) {
	return w.key, nil
}

// Locks exposes the registry so callers can observe lock state.
func (w *Wallet) Locks() *wallet.LockRegistry {
	return w.locks
}

func (w *Wallet) SelectOutputs(amount uint64, strategy string, minConf uint64) (wallet.OutputSet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var candidates []Output
	for _, out := range w.outputs {
		if out.Confirmations < minConf {
			continue
		}
		if _, locked := w.locks.Owner(out.ID); locked {
			continue
		}
		candidates = append(candidates, out)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Value < candidates[j].Value
	})

	var set wallet.OutputSet
	var total uint64
	switch strategy {
	case "all":
		for _, out := range candidates {
			set = append(set, out.ID)
			total += out.Value
		}
	case "smallest", "":
		for _, out := range candidates {
			set = append(set, out.ID)
			total += out.Value
			if total >= amount {
				break
			}
		}
	default:
		return nil, ErrUnknownStrategy
	}

	if total < amount {
		return nil, ErrInsufficientFunds
	}
	return set, nil
}

func (w *Wallet) LockOutputs(set wallet.OutputSet, slateID uuid.UUID) error {
	return w.locks.Lock(set, slateID)
}

func (w *Wallet) UnlockOutputs(set wallet.OutputSet) {
	w.locks.Unlock(set)
}

func (w *Wallet) Contribute(s *slate.Slate, participantID uint64, message string) (*slate.Slate, error) {
	nonce := w.nonceFor(s.ID)

	p := slate.Participant{
		ID:          participantID,
		PublicKey:   w.key.PubKey().SerializeCompressed(),
		PublicNonce: nonce.PubKey().SerializeCompressed(),
		PartialSig:  ecdsa.Sign(w.key, kernelHash(s)).Serialize(),
		Message:     message,
	}
	if message != "" {
		p.MessageSig = slate.SignMessage(w.key, s.ID[:], message)
	}

	out := s.Clone()
	if err := out.AddParticipant(p); err != nil {
		return nil, err
	}
	return out, nil
}

func (w *Wallet) Finalize(s *slate.Slate) (*slate.Slate, error) {
	if !s.Finalizable() {
		return nil, slate.ErrNotFinalizable
	}

	h := kernelHash(s)
	for _, p := range s.Participants {
		pub, err := btcec.ParsePubKey(p.PublicKey)
		if err != nil {
			return nil, ErrInvalidContribution
		}
		sig, err := ecdsa.ParseDERSignature(p.PartialSig)
		if err != nil {
			return nil, ErrInvalidContribution
		}
		if !sig.Verify(h, pub) {
			return nil, ErrInvalidContribution
		}
	}

	tx, err := assembleTx(s)
	if err != nil {
		return nil, err
	}

	out := s.Clone()
	out.Tx = tx
	out.Status = slate.StatusFinalized
	return out, nil
}

// nonceFor derives a per-slate nonce deterministically from the wallet key,
// so a replayed slate reproduces the same contribution.
func (w *Wallet) nonceFor(id uuid.UUID) *btcec.PrivateKey {
	h := sha256.New()
	h.Write(w.key.Serialize())
	h.Write(id[:])
	priv, _ := btcec.PrivKeyFromBytes(h.Sum(nil))
	return priv
}

func kernelHash(s *slate.Slate) []byte {
	h := sha256.New()
	h.Write(s.ID[:])
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], s.Amount)
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], s.Fee)
	h.Write(buf[:])
	return h.Sum(nil)
}

type rawTx struct {
	SlateID uuid.UUID `json:"slateId"`
	Amount  uint64    `json:"amount"`
	Fee     uint64    `json:"fee"`
	Sigs    [][]byte  `json:"sigs"`
}

func assembleTx(s *slate.Slate) ([]byte, error) {
	tx := rawTx{
		SlateID: s.ID,
		Amount:  s.Amount,
		Fee:     s.Fee,
	}
	for _, p := range s.Participants {
		tx.Sigs = append(tx.Sigs, p.PartialSig)
	}
	return json.Marshal(tx)
}

// Make sure Wallet implements the wallet contract.
var _ wallet.Wallet = &Wallet{}

package slate

import (
	"crypto/sha256"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

var ErrMessageSignature = errors.New("message signature verification failed")

// SignMessage signs a participant message with the wallet's key. The
// signature binds the message to the slate it rides on.
func SignMessage(key *btcec.PrivateKey, slateID []byte, message string) []byte {
	h := messageHash(slateID, message)
	return ecdsa.Sign(key, h).Serialize()
}

// VerifyMessages checks every embedded participant message signature. A
// participant without a message carries no signature and passes.
func (s *Slate) VerifyMessages() error {
	for _, p := range s.Participants {
		if p.Message == "" {
			continue
		}
		if err := verifyOne(&p, s.ID[:]); err != nil {
			return err
		}
	}
	return nil
}

func verifyOne(p *Participant, slateID []byte) error {
	if len(p.MessageSig) == 0 {
		return ErrMessageSignature
	}
	pub, err := btcec.ParsePubKey(p.PublicKey)
	if err != nil {
		return ErrMessageSignature
	}
	sig, err := ecdsa.ParseDERSignature(p.MessageSig)
	if err != nil {
		return ErrMessageSignature
	}
	if !sig.Verify(messageHash(slateID, p.Message), pub) {
		return ErrMessageSignature
	}
	return nil
}

func messageHash(slateID []byte, message string) []byte {
	h := sha256.New()
	h.Write(slateID)
	h.Write([]byte(message))
	return h.Sum(nil)
}

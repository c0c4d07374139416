// Package address contains utilities for handling relay addresses.
package address

import (
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Chain HRPs. A relay address is the bech32 encoding of the wallet's public
// signing key under the chain's prefix.
const (
	HRPMainnet = "gn"
	HRPFloonet = "tn"
)

// AbbrevLen is the length of the human-typable suffix of a full address.
const AbbrevLen = 6

// The bech32 data charset. It excludes 1, b, i and o to avoid visual
// ambiguity, which is what makes the 6-code suffix safe to read out.
const charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var ErrInvalidFormat = errors.New("invalid 6-code address")
var ErrNotFound = errors.New("wrong address, or destination is offline")
var ErrConflict = errors.New("address conflict, multiple matched addresses found")
var ErrNoSigningKey = errors.New("wallet has no usable signing key")

// Derive returns the wallet's relay address for the given chain prefix. It is
// a pure function of the signing key: the same key always derives the same
// address.
func Derive(key *btcec.PrivateKey, hrp string) (string, error) {
	if key == nil {
		return "", ErrNoSigningKey
	}
	return Encode(key.PubKey(), hrp)
}

// Encode a public key as a relay address.
func Encode(pub *btcec.PublicKey, hrp string) (string, error) {
	conv, err := bech32.ConvertBits(pub.SerializeCompressed(), 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, conv)
}

// Decode a relay address into its chain prefix and public key.
func Decode(addr string) (hrp string, pub *btcec.PublicKey, err error) {
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return "", nil, ErrInvalidFormat
	}
	conv, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, ErrInvalidFormat
	}
	pub, err = btcec.ParsePubKey(conv)
	if err != nil {
		return "", nil, ErrInvalidFormat
	}
	return hrp, pub, nil
}

// Abbreviation returns the 6-code suffix of a full relay address.
func Abbreviation(addr string) string {
	if len(addr) < AbbrevLen {
		return ""
	}
	return addr[len(addr)-AbbrevLen:]
}

// ValidAbbreviation reports whether s is exactly six characters from the
// restricted alphabet.
func ValidAbbreviation(s string) bool {
	if len(s) != AbbrevLen {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(charset, r) {
			return false
		}
	}
	return true
}

package utils

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/stellar/go/strkey"
)

// NormalizeAddress trims and uppercases a Stellar account id and checks that
// it decodes as a public key (G...). An empty input returns an empty address.
func NormalizeAddress(address string) (string, error) {
	address = strings.ToUpper(strings.TrimSpace(address))
	if address == "" {
		return "", nil
	}
	if err := ValidateAddress(address); err != nil {
		return "", err
	}
	return address, nil
}

// ValidateAddress reports whether address is a well-formed Stellar account id.
func ValidateAddress(address string) error {
	if _, err := strkey.Decode(strkey.VersionByteAccountID, address); err != nil {
		return fmt.Errorf("invalid stellar account id: %w", err)
	}
	return nil
}

// NewDepositAddress returns a muxed account address (M...) over the treasury
// account with a random id. Payments to it settle in the treasury and carry
// the id, which identifies the wallet they belong to.
func NewDepositAddress(treasury string) (string, error) {
	var m strkey.MuxedAccount
	if err := m.SetAccountID(treasury); err != nil {
		return "", fmt.Errorf("invalid treasury account: %w", err)
	}

	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return "", fmt.Errorf("generate deposit id: %w", err)
	}
	m.SetID(n.Uint64() + 1)

	return m.Address()
}

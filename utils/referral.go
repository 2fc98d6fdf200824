package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// referralAlphabet omits characters that are easy to misread (0/O, 1/I).
const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const ReferralCodeLength = 8

// NewReferralCode returns a random, human-friendly referral code. Callers
// check it for collisions.
func NewReferralCode() (string, error) {
	buf := make([]byte, ReferralCodeLength)
	max := big.NewInt(int64(len(referralAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate referral code: %w", err)
		}
		buf[i] = referralAlphabet[n.Int64()]
	}
	return string(buf), nil
}

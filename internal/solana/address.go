// Package solana provides address validation helpers.
package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PublicKeyLength is the byte length of a Solana public key.
const PublicKeyLength = 32

// ValidateAddress checks that addr is a well-formed base58 Solana address.
func ValidateAddress(addr string) error {
	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("decode base58 address: %w", err)
	}
	if len(decoded) != PublicKeyLength {
		return fmt.Errorf("address must decode to %d bytes, got %d", PublicKeyLength, len(decoded))
	}
	return nil
}

// IsOnCurve reports whether addr decodes to a point on the ed25519 curve.
// Wallet addresses are on-curve; program-derived addresses are not.
func IsOnCurve(addr string) bool {
	decoded, err := base58.Decode(addr)
	if err != nil || len(decoded) != PublicKeyLength {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}

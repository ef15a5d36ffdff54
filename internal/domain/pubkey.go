package domain

import (
	"filippo.io/edwards25519"

	"github.com/gagliardetto/solana-go"
)

// IsOnCurve reports whether the key is a valid ed25519 curve point. Wallet
// addresses are on-curve; program derived addresses (pools, vaults,
// authorities) are not.
func IsOnCurve(pk solana.PublicKey) bool {
	_, err := new(edwards25519.Point).SetBytes(pk.Bytes())
	return err == nil
}

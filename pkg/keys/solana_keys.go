// Package keys provides Solana key generation and encryption for custodial
// wallet management. Wallets are generated server-side for chat users and the
// secret key is encrypted before it is stored.
package keys

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Keypair represents a Solana signing keypair.
type Keypair struct {
	PublicAddress string // base58 ed25519 public key, doubles as the deposit address
	Secret        string // base58 64-byte ed25519 secret key
}

// Generate generates a new ed25519 keypair from a cryptographically secure
// random source. An entropy failure here is fatal and non-retriable.
func Generate() (Keypair, error) {
	priv, err := solana.NewRandomPrivateKey()
	if err != nil {
		return Keypair{}, fmt.Errorf("failed to generate ed25519 keypair: %w", err)
	}

	return Keypair{
		PublicAddress: priv.PublicKey().String(),
		Secret:        priv.String(),
	}, nil
}

// ValidateAddress checks that an address is a well-formed base58 ed25519
// public key.
func ValidateAddress(address string) error {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("invalid solana address %q: %w", address, err)
	}
	return nil
}

// Package crypto holds local key material for the CLI: ed25519 keypairs, an
// encrypted keystore, and a signer implementation backed by them. Remote and
// hardware signers live behind the same interface and never touch this
// package.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"decentpay/codec"
)

// PrivateKey is a local ed25519 signing key.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// GeneratePrivateKey creates a fresh random keypair.
func GeneratePrivateKey() (*PrivateKey, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("crypto: generate key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromSeed rebuilds a key from its 32-byte seed.
func PrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("crypto: seed is %d bytes, want %d", len(seed), ed25519.SeedSize)
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// Seed returns the 32-byte seed the key derives from.
func (k *PrivateKey) Seed() []byte {
	return k.key.Seed()
}

// Address renders the public key as an account strkey.
func (k *PrivateKey) Address() string {
	var payload [32]byte
	copy(payload[:], k.key.Public().(ed25519.PublicKey))
	return codec.FormatStrkey(accountVersionByte, payload)
}

// Sign signs the message with the private key.
func (k *PrivateKey) Sign(message []byte) []byte {
	return ed25519.Sign(k.key, message)
}

// Verify reports whether signature is a valid signature of message by the
// account address.
func Verify(address string, message, signature []byte) (bool, error) {
	if err := codec.ValidateAddress(address); err != nil {
		return false, err
	}
	if codec.IsContractAddress(address) {
		return false, errors.New("crypto: contract addresses cannot sign")
	}
	payload, err := codec.StrkeyPayload(address)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(ed25519.PublicKey(payload), message, signature), nil
}

const accountVersionByte = 6 << 3

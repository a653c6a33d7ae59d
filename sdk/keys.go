package sdk

import (
	"fmt"

	"github.com/nats-io/nkeys"
)

// KeyPair wraps an ephemeral NKey used to authenticate a broker connection.
// The SDK generates one per connection attempt; its seed is kept in the
// resulting Client's Credentials, from which the caller may persist it.
type KeyPair struct {
	kp nkeys.KeyPair
}

// GenerateUserKeyPair creates a fresh ephemeral user NKey.
func GenerateUserKeyPair() (*KeyPair, error) {
	kp, err := nkeys.CreateUser()
	if err != nil {
		return nil, fmt.Errorf("generate nkey: %w", err)
	}
	return &KeyPair{kp: kp}, nil
}

// PublicKey returns the NKey's public identifier, sent to the auth service
// so it can be embedded as the JWT's sub claim.
func (k *KeyPair) PublicKey() (string, error) {
	return k.kp.PublicKey()
}

// Seed returns the NKey's private seed, persisted as part of Credentials.
func (k *KeyPair) Seed() (string, error) {
	return k.kp.Seed()
}

// Sign signs the broker's connection challenge nonce.
func (k *KeyPair) Sign(nonce []byte) ([]byte, error) {
	return k.kp.Sign(nonce)
}

// KeyPairFromSeed reconstructs a KeyPair from a previously-persisted seed.
func KeyPairFromSeed(seed string) (*KeyPair, error) {
	kp, err := nkeys.FromSeed([]byte(seed))
	if err != nil {
		return nil, fmt.Errorf("load nkey seed: %w", err)
	}
	return &KeyPair{kp: kp}, nil
}

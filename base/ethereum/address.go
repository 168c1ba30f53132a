package ethereum

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
)

// GenerateKey returns a fresh signing key and the checksummed address it signs for
func GenerateKey() (*ecdsa.PrivateKey, string, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, "", err
	}
	return key, crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}

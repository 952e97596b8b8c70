package solana

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/nic0-dev/solping/service/config"
)

// ErrMissingPrivateKey is wrapped by the DecodeError returned for empty input.
var ErrMissingPrivateKey = config.ErrMissingPrivateKey

// DecodeKeypair turns a base-58 encoded 64-byte secret key (seed followed by
// public key, the format exported by Phantom and solana-keygen) into a keypair.
// The trailing public key must match the one derived from the seed.
func DecodeKeypair(secret string) (solana.PrivateKey, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, &DecodeError{Reason: "empty input", Err: ErrMissingPrivateKey}
	}

	raw, err := base58.Decode(secret)
	if err != nil {
		return nil, &DecodeError{Reason: "invalid base58", Err: err}
	}

	if len(raw) != ed25519.PrivateKeySize {
		return nil, &DecodeError{
			Reason: fmt.Sprintf("expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw)),
		}
	}

	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !bytes.Equal(derived[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
		return nil, &DecodeError{Reason: "public key does not match secret seed"}
	}

	return solana.PrivateKey(raw), nil
}

// EncodeKeypair returns the base-58 form accepted by DecodeKeypair.
func EncodeKeypair(key solana.PrivateKey) string {
	return base58.Encode(key)
}

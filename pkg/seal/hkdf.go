package seal

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// hkdfInfo provides domain separation for derived payload keys.
const hkdfInfo = "farcaster:payload-key:v1"

// DeriveKey derives a KeySize-byte payload key from a passphrase and salt
// using HKDF-SHA256. It gives operators a convenient way to provision the
// same pre-shared key on both peers; the result is passed to
// EncryptPayload/DecryptPayload like any other key.
func DeriveKey(passphrase, salt string) ([]byte, error) {
	r := hkdf.New(sha256.New, []byte(passphrase), []byte(salt), []byte(hkdfInfo))

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

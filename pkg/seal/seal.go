package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/farcaster-proto/farcaster-go/pkg/wire"
)

// AES-256-GCM parameter sizes in bytes.
const (
	// KeySize is the required key size.
	KeySize = 32

	// NonceSize is the required nonce size.
	NonceSize = 12

	// TagSize is the size of the authentication tag appended to ciphertext.
	TagSize = 16
)

// Seal errors.
var (
	// ErrAuthenticationFailed indicates the ciphertext failed tag
	// verification: tampering, wrong key, or wrong nonce.
	ErrAuthenticationFailed = errors.New("payload authentication failed")

	// ErrInvalidKeyMaterial indicates a key or nonce of the wrong length.
	ErrInvalidKeyMaterial = errors.New("invalid key material")
)

// EncryptPayload replaces the envelope payload with its AES-256-GCM
// ciphertext plus authentication tag. Descriptor and metadata are untouched.
//
// The ciphertext is TagSize bytes longer than the plaintext, so plaintext
// larger than wire.MaxFieldSize-TagSize will fail at encode time.
func EncryptPayload(env *wire.Envelope, key, nonce []byte) error {
	aead, err := newAEAD(key, nonce)
	if err != nil {
		return err
	}

	env.Payload = aead.Seal(nil, nonce, env.Payload, nil)
	return nil
}

// DecryptPayload verifies and decrypts the envelope payload, returning the
// plaintext. The envelope is not modified; failed authentication never
// yields partial plaintext.
func DecryptPayload(env *wire.Envelope, key, nonce []byte) ([]byte, error) {
	aead, err := newAEAD(key, nonce)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, env.Payload, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// newAEAD validates key material and builds the GCM instance.
// Wrong lengths fail loudly rather than being truncated or padded.
func newAEAD(key, nonce []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key is %d bytes, want %d", ErrInvalidKeyMaterial, len(key), KeySize)
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce is %d bytes, want %d", ErrInvalidKeyMaterial, len(nonce), NonceSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}

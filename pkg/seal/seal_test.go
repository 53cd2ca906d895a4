package seal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcaster-proto/farcaster-go/pkg/wire"
)

func testKeyNonce(t *testing.T) (key, nonce []byte) {
	t.Helper()
	key = bytes.Repeat([]byte{0xA5}, KeySize)
	nonce = bytes.Repeat([]byte{0x3C}, NonceSize)
	return key, nonce
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, nonce := testKeyNonce(t)

	plaintexts := [][]byte{
		[]byte("login:alice"),
		{0x00},
		bytes.Repeat([]byte("block"), 1000),
		nil,
	}

	for _, plaintext := range plaintexts {
		env := &wire.Envelope{Descriptor: 1, Payload: plaintext, Metadata: []byte("hint")}

		require.NoError(t, EncryptPayload(env, key, nonce))
		assert.Len(t, env.Payload, len(plaintext)+TagSize)
		if len(plaintext) > 0 {
			assert.NotEqual(t, plaintext, env.Payload[:len(plaintext)], "ciphertext must differ from plaintext")
		}

		got, err := DecryptPayload(env, key, nonce)
		require.NoError(t, err)
		assert.Equal(t, plaintext, normalize(got))
	}
}

// normalize maps empty slices to nil so empty-plaintext comparisons work.
func normalize(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

func TestEncryptLeavesDescriptorAndMetadata(t *testing.T) {
	key, nonce := testKeyNonce(t)

	env := &wire.Envelope{Descriptor: 99, Payload: []byte("secret"), Metadata: []byte("routing")}
	require.NoError(t, EncryptPayload(env, key, nonce))

	assert.Equal(t, uint8(99), env.Descriptor)
	assert.Equal(t, []byte("routing"), env.Metadata)
}

func TestTamperDetection(t *testing.T) {
	key, nonce := testKeyNonce(t)

	env := &wire.Envelope{Descriptor: 1, Payload: []byte("payload under test")}
	require.NoError(t, EncryptPayload(env, key, nonce))

	// Flipping any single bit must fail authentication.
	for i := range env.Payload {
		for bit := 0; bit < 8; bit++ {
			env.Payload[i] ^= 1 << bit

			_, err := DecryptPayload(env, key, nonce)
			require.ErrorIs(t, err, ErrAuthenticationFailed, "byte %d bit %d", i, bit)

			env.Payload[i] ^= 1 << bit
		}
	}

	// Restored ciphertext still decrypts.
	got, err := DecryptPayload(env, key, nonce)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload under test"), got)
}

func TestDecryptWrongKey(t *testing.T) {
	key, nonce := testKeyNonce(t)

	env := &wire.Envelope{Payload: []byte("secret")}
	require.NoError(t, EncryptPayload(env, key, nonce))

	wrongKey := bytes.Repeat([]byte{0x5A}, KeySize)
	_, err := DecryptPayload(env, wrongKey, nonce)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestDecryptWrongNonce(t *testing.T) {
	key, nonce := testKeyNonce(t)

	env := &wire.Envelope{Payload: []byte("secret")}
	require.NoError(t, EncryptPayload(env, key, nonce))

	wrongNonce := bytes.Repeat([]byte{0xC3}, NonceSize)
	_, err := DecryptPayload(env, key, wrongNonce)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestInvalidKeyMaterial(t *testing.T) {
	key, nonce := testKeyNonce(t)
	env := &wire.Envelope{Payload: []byte("x")}

	tests := []struct {
		name  string
		key   []byte
		nonce []byte
	}{
		{"short key", key[:16], nonce},
		{"long key", append(key, 0x00), nonce},
		{"nil key", nil, nonce},
		{"short nonce", key, nonce[:8]},
		{"long nonce", key, append(nonce, 0x00)},
		{"nil nonce", key, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, EncryptPayload(env, tt.key, tt.nonce), ErrInvalidKeyMaterial)

			_, err := DecryptPayload(env, tt.key, tt.nonce)
			assert.ErrorIs(t, err, ErrInvalidKeyMaterial)
		})
	}
}

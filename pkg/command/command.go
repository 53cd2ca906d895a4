// Package command defines the application commands carried in envelope
// payloads by the reference client and server.
//
// The envelope core never interprets these; descriptor values and payload
// encodings are conventions between the two reference binaries. Commands are
// CBOR-encoded with integer keys.
package command

import (
	"errors"
	"fmt"

	"github.com/farcaster-proto/farcaster-go/pkg/wire"
)

// Descriptor values used by the reference binaries.
const (
	// DescriptorLogin tags a login command.
	DescriptorLogin uint8 = 1

	// DescriptorAck tags a server acknowledgement.
	DescriptorAck uint8 = 2

	// DescriptorText tags a free-form text message (interactive mode).
	DescriptorText uint8 = 3
)

// Ack status codes.
const (
	// StatusOK indicates the command was accepted.
	StatusOK uint8 = 0

	// StatusRejected indicates the command was refused.
	StatusRejected uint8 = 1
)

// ErrDescriptorMismatch indicates an envelope tagged with a different
// command than the decoder expected.
var ErrDescriptorMismatch = errors.New("descriptor mismatch")

// Login is a credential handoff command.
type Login struct {
	Username string `cbor:"1,keyasint"`
	Password string `cbor:"2,keyasint"`

	// Expiry is the credential expiry as a Unix timestamp.
	// Negative values mean already expired.
	Expiry int64 `cbor:"3,keyasint"`
}

// Ack is the server's reply to a command.
type Ack struct {
	Status  uint8  `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint,omitempty"`
}

// NewLoginEnvelope builds an envelope carrying a login command.
// The payload is plaintext; callers seal it before sending if required.
func NewLoginEnvelope(login Login) (*wire.Envelope, error) {
	env := &wire.Envelope{Descriptor: DescriptorLogin}
	if err := env.SetPayload(login); err != nil {
		return nil, fmt.Errorf("failed to build login envelope: %w", err)
	}
	return env, nil
}

// DecodeLogin decodes a login command from payload bytes.
// The envelope carries the descriptor; payload is passed separately so
// callers can hand in decrypted bytes without mutating the envelope.
func DecodeLogin(env *wire.Envelope, payload []byte) (*Login, error) {
	if env.Descriptor != DescriptorLogin {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDescriptorMismatch, env.Descriptor, DescriptorLogin)
	}
	var login Login
	if err := wire.Unmarshal(payload, &login); err != nil {
		return nil, fmt.Errorf("failed to decode login: %w", err)
	}
	return &login, nil
}

// NewAckEnvelope builds an envelope carrying an acknowledgement.
func NewAckEnvelope(ack Ack) (*wire.Envelope, error) {
	env := &wire.Envelope{Descriptor: DescriptorAck}
	if err := env.SetPayload(ack); err != nil {
		return nil, fmt.Errorf("failed to build ack envelope: %w", err)
	}
	return env, nil
}

// DecodeAck decodes an acknowledgement from payload bytes.
func DecodeAck(env *wire.Envelope, payload []byte) (*Ack, error) {
	if env.Descriptor != DescriptorAck {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDescriptorMismatch, env.Descriptor, DescriptorAck)
	}
	var ack Ack
	if err := wire.Unmarshal(payload, &ack); err != nil {
		return nil, fmt.Errorf("failed to decode ack: %w", err)
	}
	return &ack, nil
}

// NewTextEnvelope builds an envelope carrying a free-form text message.
func NewTextEnvelope(text string) (*wire.Envelope, error) {
	env := &wire.Envelope{Descriptor: DescriptorText}
	if err := env.SetPayload(text); err != nil {
		return nil, fmt.Errorf("failed to build text envelope: %w", err)
	}
	return env, nil
}

// DecodeText decodes a text message from payload bytes.
func DecodeText(env *wire.Envelope, payload []byte) (string, error) {
	if env.Descriptor != DescriptorText {
		return "", fmt.Errorf("%w: got %d, want %d", ErrDescriptorMismatch, env.Descriptor, DescriptorText)
	}
	var text string
	if err := wire.Unmarshal(payload, &text); err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return text, nil
}

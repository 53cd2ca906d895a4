package wire

import (
	"fmt"
)

// Field size limits imposed by the 16-bit length fields.
const (
	// MaxFieldSize is the maximum payload or metadata size in bytes.
	MaxFieldSize = 65535

	// DescriptorSize is the size of the descriptor field in bytes.
	DescriptorSize = 1

	// FieldLengthSize is the size of each length field in bytes.
	FieldLengthSize = 2
)

// Envelope is one discrete message exchanged between peers.
//
// Descriptor values are application-defined; the codec and transport never
// interpret them. Payload may hold plaintext or the AEAD ciphertext+tag
// produced by the seal package. Metadata is never encrypted and travels in
// the clear. Whether the payload is currently plaintext or ciphertext is not
// tracked here; encrypt/decrypt ordering is a caller contract.
type Envelope struct {
	Descriptor uint8
	Payload    []byte
	Metadata   []byte
}

// EncodedSize returns the frame size in bytes for this envelope.
func (e *Envelope) EncodedSize() int {
	return DescriptorSize + FieldLengthSize + len(e.Payload) + FieldLengthSize + len(e.Metadata)
}

// SetPayload CBOR-encodes v and stores it as the payload.
// Fails with ErrFieldTooLarge if the encoding exceeds MaxFieldSize.
func (e *Envelope) SetPayload(v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	if len(data) > MaxFieldSize {
		return fmt.Errorf("%w: payload %d > %d", ErrFieldTooLarge, len(data), MaxFieldSize)
	}
	e.Payload = data
	return nil
}

// DecodePayload CBOR-decodes the payload into v.
// The payload must be plaintext; decrypt sealed payloads first.
func (e *Envelope) DecodePayload(v any) error {
	if err := Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}

// SetMetadata CBOR-encodes v and stores it as the metadata.
// Fails with ErrFieldTooLarge if the encoding exceeds MaxFieldSize.
func (e *Envelope) SetMetadata(v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if len(data) > MaxFieldSize {
		return fmt.Errorf("%w: metadata %d > %d", ErrFieldTooLarge, len(data), MaxFieldSize)
	}
	e.Metadata = data
	return nil
}

// DecodeMetadata CBOR-decodes the metadata into v.
func (e *Envelope) DecodeMetadata(v any) error {
	if err := Unmarshal(e.Metadata, v); err != nil {
		return fmt.Errorf("failed to decode metadata: %w", err)
	}
	return nil
}

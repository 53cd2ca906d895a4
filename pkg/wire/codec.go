package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Codec errors.
var (
	// ErrFieldTooLarge indicates a payload or metadata field exceeds MaxFieldSize.
	ErrFieldTooLarge = errors.New("field too large")

	// ErrTruncated indicates the input ended before the declared field lengths.
	ErrTruncated = errors.New("frame truncated")

	// ErrMalformed indicates the input cannot be parsed as a frame.
	ErrMalformed = errors.New("frame malformed")
)

// encMode is the CBOR encoder mode for envelope payload helpers.
// Configured for deterministic encoding with integer keys.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for envelope payload helpers.
var decMode cbor.DecMode

func init() {
	var err error

	// Configure encoder for deterministic output
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical, // Deterministic key ordering
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeUnix, // Unix timestamps
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Configure decoder to be lenient for forward compatibility
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet, // Ignore duplicate keys (last wins)
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Marshal encodes a value to CBOR bytes.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR bytes into a value.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// EncodeEnvelope serializes an envelope into its frame representation.
// Fails with ErrFieldTooLarge if payload or metadata exceeds MaxFieldSize.
func EncodeEnvelope(e *Envelope) ([]byte, error) {
	if len(e.Payload) > MaxFieldSize {
		return nil, fmt.Errorf("%w: payload %d > %d", ErrFieldTooLarge, len(e.Payload), MaxFieldSize)
	}
	if len(e.Metadata) > MaxFieldSize {
		return nil, fmt.Errorf("%w: metadata %d > %d", ErrFieldTooLarge, len(e.Metadata), MaxFieldSize)
	}

	buf := make([]byte, 0, e.EncodedSize())
	buf = append(buf, e.Descriptor)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(e.Payload)))
	buf = append(buf, e.Payload...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(e.Metadata)))
	buf = append(buf, e.Metadata...)
	return buf, nil
}

// DecodeEnvelope parses exactly one frame from data.
//
// Fails with ErrMalformed for input that cannot be the frame layout
// (zero-length input, trailing bytes after the frame) and ErrTruncated when
// the input ends before the declared field lengths are satisfied.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}

	r := bytes.NewReader(data)
	env, err := ReadEnvelope(r)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, ErrTruncated) {
			return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
		}
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, r.Len())
	}
	return env, nil
}

// ReadEnvelope reads exactly one frame from r, decoding incrementally as
// bytes arrive. It never reads past the end of the frame, so subsequent
// frames on the same stream stay intact.
//
// Returns io.EOF if the stream ends before any frame byte is read, and
// ErrTruncated if it ends mid-frame.
func ReadEnvelope(r io.Reader) (*Envelope, error) {
	var descriptor [DescriptorSize]byte
	if _, err := io.ReadFull(r, descriptor[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, readErr(err, "descriptor")
	}

	payload, err := readField(r, "payload")
	if err != nil {
		return nil, err
	}
	metadata, err := readField(r, "metadata")
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Descriptor: descriptor[0],
		Payload:    payload,
		Metadata:   metadata,
	}, nil
}

// readField reads one length-prefixed field. The allocation is bounded by
// the 16-bit length, so a hostile peer cannot force a large allocation.
func readField(r io.Reader, name string) ([]byte, error) {
	var lengthBuf [FieldLengthSize]byte
	if _, err := io.ReadFull(r, lengthBuf[:]); err != nil {
		return nil, readErr(err, name+" length")
	}

	length := binary.BigEndian.Uint16(lengthBuf[:])
	if length == 0 {
		return nil, nil
	}

	field := make([]byte, length)
	if _, err := io.ReadFull(r, field); err != nil {
		return nil, readErr(err, name)
	}
	return field, nil
}

// readErr maps mid-frame stream ends to ErrTruncated.
func readErr(err error, what string) error {
	if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: stream ended reading %s", ErrTruncated, what)
	}
	return fmt.Errorf("failed to read %s: %w", what, err)
}

package transport

import (
	"net"

	"github.com/farcaster-proto/farcaster-go/pkg/wire"
)

// EnvelopeSender sends envelopes to a peer.
// Implemented by Transport and ServerConn.
type EnvelopeSender interface {
	// Send sends an envelope to the peer.
	Send(env *wire.Envelope) error

	// Close closes the connection.
	Close() error
}

// EnvelopeConn is a bidirectional envelope connection.
// Implemented by Transport.
type EnvelopeConn interface {
	EnvelopeSender

	// Receive blocks until a full envelope frame has arrived.
	Receive() (*wire.Envelope, error)

	// LocalAddr returns the local network address.
	LocalAddr() net.Addr

	// RemoteAddr returns the remote network address.
	RemoteAddr() net.Addr
}

// EnvelopeReadWriter provides envelope frame I/O over any stream.
// Implemented by Framer.
type EnvelopeReadWriter interface {
	// ReadEnvelope reads one envelope frame.
	ReadEnvelope() (*wire.Envelope, error)

	// WriteEnvelope writes one envelope frame.
	WriteEnvelope(env *wire.Envelope) error
}

// Compile-time interface satisfaction checks.
var (
	_ EnvelopeConn       = (*Transport)(nil)
	_ EnvelopeSender     = (*ServerConn)(nil)
	_ EnvelopeReadWriter = (*Framer)(nil)
)

package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/farcaster-proto/farcaster-go/pkg/log"
	"github.com/farcaster-proto/farcaster-go/pkg/wire"
)

// Defaults for dialing and listening.
const (
	// DefaultPort is the default FarCaster port.
	DefaultPort = 7878

	// DefaultConnectTimeout bounds Connect when the context has no deadline.
	DefaultConnectTimeout = 30 * time.Second
)

// DefaultAddress is the default bind/connect address.
var DefaultAddress = fmt.Sprintf("127.0.0.1:%d", DefaultPort)

// Transport errors.
var (
	// ErrConnectionClosed indicates the stream ended before a full frame
	// was read, or the transport was closed.
	ErrConnectionClosed = errors.New("connection closed")
)

// Transport owns a connected byte stream and exchanges envelope frames on
// it. Send and Receive are blocking; each call is a complete frame
// operation. A Transport is not shared across sessions - each connection
// gets its own.
type Transport struct {
	conn net.Conn
	bw   *bufio.Writer

	reader *FrameReader
	writer *FrameWriter

	readMu    sync.Mutex
	writeMu   sync.Mutex
	closeCh   chan struct{}
	closeOnce sync.Once
}

// Connect opens a new stream connection to address ("host:port") and wraps
// it in a Transport. When ctx carries no deadline, DefaultConnectTimeout
// applies.
func Connect(ctx context.Context, address string) (*Transport, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	return FromConn(conn), nil
}

// FromConn wraps an already-connected stream (server side, post-accept).
func FromConn(conn net.Conn) *Transport {
	bw := bufio.NewWriter(conn)
	return &Transport{
		conn:    conn,
		bw:      bw,
		reader:  NewFrameReader(bufio.NewReader(conn)),
		writer:  NewFrameWriter(bw),
		closeCh: make(chan struct{}),
	}
}

// SetLogger configures protocol event logging for this transport.
// Pass nil to disable logging.
func (t *Transport) SetLogger(logger log.Logger, connID string) {
	t.reader.SetLogger(logger, connID)
	t.writer.SetLogger(logger, connID)
}

// LocalAddr returns the local network address.
func (t *Transport) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

// RemoteAddr returns the remote network address.
func (t *Transport) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}

// Send encodes the envelope, writes the full frame and flushes it.
// No partial frame is left unflushed in the local buffer.
func (t *Transport) Send(env *wire.Envelope) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	select {
	case <-t.closeCh:
		return ErrConnectionClosed
	default:
	}

	if err := t.writer.WriteEnvelope(env); err != nil {
		return err
	}
	if err := t.bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush frame: %w", err)
	}
	return nil
}

// Receive blocks until a full frame has arrived and returns its envelope.
// Decode success is all-or-nothing per frame: a partially received frame
// never produces an envelope.
//
// Returns ErrConnectionClosed if the stream ends (cleanly or mid-frame)
// before a full frame is read. Decode errors wrap the wire sentinels, so
// errors.Is(err, wire.ErrMalformed) works for protocol failures.
func (t *Transport) Receive() (*wire.Envelope, error) {
	t.readMu.Lock()
	defer t.readMu.Unlock()

	select {
	case <-t.closeCh:
		return nil, ErrConnectionClosed
	default:
	}

	env, err := t.reader.ReadEnvelope()
	if err != nil {
		// A local Close aborts the blocked read with a conn-specific error
		// (net.ErrClosed for sockets, io.ErrClosedPipe for pipes); report
		// all of them as the transport being closed.
		select {
		case <-t.closeCh:
			return nil, ErrConnectionClosed
		default:
		}
		if err == io.EOF || errors.Is(err, wire.ErrTruncated) || errors.Is(err, net.ErrClosed) {
			return nil, ErrConnectionClosed
		}
		return nil, fmt.Errorf("receive failed: %w", err)
	}
	return env, nil
}

// Close closes the underlying connection. Any in-progress Receive unblocks
// with ErrConnectionClosed. Close is safe to call multiple times.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closeCh)
		err = t.conn.Close()
	})
	return err
}

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/farcaster-proto/farcaster-go/pkg/log"
	"github.com/farcaster-proto/farcaster-go/pkg/wire"
)

// ServerConfig configures a FarCaster server.
type ServerConfig struct {
	// Address to listen on (e.g., ":7878" or "127.0.0.1:7878").
	Address string

	// Logger for protocol logging (optional).
	Logger log.Logger

	// OnConnect is called when a new connection is established.
	OnConnect func(conn *ServerConn)

	// OnDisconnect is called when a connection is closed.
	OnDisconnect func(conn *ServerConn)

	// OnEnvelope is called when an envelope is received.
	OnEnvelope func(conn *ServerConn, env *wire.Envelope)

	// OnError is called when an error occurs. A nil conn indicates an
	// accept-loop error; otherwise the error is scoped to that session.
	OnError func(conn *ServerConn, err error)
}

// Server accepts incoming connections and runs one independent envelope
// session per connection. A session error tears down only that session.
type Server struct {
	config   ServerConfig
	listener net.Listener

	// Active connections
	conns   map[*ServerConn]struct{}
	connsMu sync.RWMutex

	// State
	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer creates a new FarCaster server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}

	return &Server{
		config: config,
		conns:  make(map[*ServerConn]struct{}),
	}, nil
}

// Start starts the server and begins accepting connections.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return fmt.Errorf("server already running")
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.running.Store(true)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop stops the server and closes all connections.
func (s *Server) Stop() error {
	if !s.running.Load() {
		return nil
	}

	s.running.Store(false)
	s.cancel()

	// Close listener to stop accept loop
	if s.listener != nil {
		s.listener.Close()
	}

	// Close all connections
	s.connsMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.connsMu.Unlock()

	// Wait for goroutines
	s.wg.Wait()

	return nil
}

// Addr returns the server's listen address.
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// ConnectionCount returns the number of active connections.
func (s *Server) ConnectionCount() int {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	return len(s.conns)
}

// acceptLoop accepts incoming connections. The accept loop is the only
// serialization point and never blocks on a worker.
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.running.Load() {
				// Real error
				if s.config.OnError != nil {
					s.config.OnError(nil, fmt.Errorf("accept error: %w", err))
				}
			}
			continue
		}

		// Handle connection in goroutine
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection processes a single connection.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()

	// Generate unique connection ID
	connID := uuid.New().String()

	transport := FromConn(conn)
	if s.config.Logger != nil {
		transport.SetLogger(s.config.Logger, connID)
	}

	sconn := &ServerConn{
		transport:  transport,
		server:     s,
		remoteAddr: conn.RemoteAddr(),
		connID:     connID,
	}

	s.logStateChange(sconn, "", "CONNECTED")

	// Register connection
	s.connsMu.Lock()
	s.conns[sconn] = struct{}{}
	s.connsMu.Unlock()

	if s.config.OnConnect != nil {
		s.config.OnConnect(sconn)
	}

	// Read loop; each session owns its transport exclusively.
	sconn.readLoop()

	// Unregister connection
	s.connsMu.Lock()
	delete(s.conns, sconn)
	s.connsMu.Unlock()

	s.logStateChange(sconn, "CONNECTED", "DISCONNECTED")

	if s.config.OnDisconnect != nil {
		s.config.OnDisconnect(sconn)
	}
}

// logStateChange logs a connection state change event.
func (s *Server) logStateChange(sconn *ServerConn, oldState, newState string) {
	if s.config.Logger == nil {
		return
	}
	s.config.Logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: sconn.connID,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		RemoteAddr:   sconn.remoteAddr.String(),
		StateChange: &log.StateChangeEvent{
			OldState: oldState,
			NewState: newState,
		},
	})
}

// ServerConn represents one client session on the server.
type ServerConn struct {
	transport  *Transport
	server     *Server
	remoteAddr net.Addr
	connID     string // Unique connection identifier
	closed     atomic.Bool
}

// RemoteAddr returns the remote address of the client.
func (c *ServerConn) RemoteAddr() net.Addr {
	return c.remoteAddr
}

// ConnID returns the unique connection identifier.
func (c *ServerConn) ConnID() string {
	return c.connID
}

// Send sends an envelope to the client.
func (c *ServerConn) Send(env *wire.Envelope) error {
	return c.transport.Send(env)
}

// Close closes the connection.
func (c *ServerConn) Close() error {
	c.closed.Store(true)
	return c.transport.Close()
}

// readLoop receives envelopes until the session ends. Errors terminate
// only this session; the listener and other sessions are unaffected.
func (c *ServerConn) readLoop() {
	for {
		env, err := c.transport.Receive()
		if err != nil {
			if c.server.config.OnError != nil && c.server.running.Load() && !c.closed.Load() &&
				!errors.Is(err, ErrConnectionClosed) {
				c.server.config.OnError(c, err)
			}
			c.Close()
			return
		}

		if c.server.config.OnEnvelope != nil {
			c.server.config.OnEnvelope(c, env)
		}
	}
}

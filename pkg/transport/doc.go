// Package transport turns a connected byte stream into a sequence of framed
// envelope exchanges.
//
// The transport performs no encryption itself - callers seal/unseal payload
// bytes before and after transport calls (see the seal package).
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   Application commands (CBOR)  │
//	├────────────────────────────────┤
//	│   Payload AEAD (optional)      │
//	├────────────────────────────────┤
//	│   Envelope frames              │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// # Blocking Semantics
//
// Send and Receive are synchronous with respect to their own stream: Send
// blocks until the frame is fully written and flushed, Receive blocks until
// a full frame has arrived or the stream is closed. Receive never returns a
// partially decoded envelope. The transport enforces no read/write timeouts;
// callers needing bounded blocking configure deadlines on the underlying
// connection. Closing the connection unblocks an in-progress Receive with
// ErrConnectionClosed.
//
// # Server
//
// Server accepts connections indefinitely and runs one goroutine per
// connection. Each connection owns its transport exclusively; an error on
// one session never affects other sessions or the accept loop.
package transport

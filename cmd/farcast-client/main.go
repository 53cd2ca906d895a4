// Command farcast-client is the reference FarCaster client.
//
// It connects to a server, builds a login envelope, optionally seals the
// payload with a pre-shared key and sends it, printing the server's
// acknowledgement. With -interactive it drops into a REPL for sending
// further commands over the same connection.
//
// Usage:
//
//	farcast-client [flags]
//
// Flags:
//
//	-addr string        Server address (default "127.0.0.1:7878")
//	-key string         Hex-encoded 32-byte payload key
//	-passphrase string  Passphrase to derive the payload key (with -salt)
//	-salt string        Salt for passphrase derivation
//	-user string        Login username (default "alice")
//	-pass string        Login password
//	-expiry int         Credential expiry as Unix timestamp (0 = 24h from now)
//	-interactive        Enter interactive mode after login
//
// Examples:
//
//	# Plaintext login against a local server
//	farcast-client -user alice -pass secret
//
//	# Sealed payloads with a derived key, then interactive mode
//	farcast-client -passphrase "correct horse" -salt site-a -interactive
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	stdlog "log"
	"time"

	"github.com/farcaster-proto/farcaster-go/pkg/command"
	"github.com/farcaster-proto/farcaster-go/pkg/seal"
	"github.com/farcaster-proto/farcaster-go/pkg/transport"
	"github.com/farcaster-proto/farcaster-go/pkg/wire"
)

var (
	addr        string
	keyHex      string
	passphrase  string
	salt        string
	username    string
	password    string
	expiry      int64
	interactive bool
)

func init() {
	flag.StringVar(&addr, "addr", transport.DefaultAddress, "Server address")
	flag.StringVar(&keyHex, "key", "", "Hex-encoded 32-byte payload key")
	flag.StringVar(&passphrase, "passphrase", "", "Passphrase to derive the payload key")
	flag.StringVar(&salt, "salt", "", "Salt for passphrase derivation")
	flag.StringVar(&username, "user", "alice", "Login username")
	flag.StringVar(&password, "pass", "", "Login password")
	flag.Int64Var(&expiry, "expiry", 0, "Credential expiry as Unix timestamp (0 = 24h from now)")
	flag.BoolVar(&interactive, "interactive", false, "Enter interactive mode after login")
}

func main() {
	flag.Parse()
	stdlog.SetFlags(stdlog.Ltime)

	key, err := resolveKey()
	if err != nil {
		stdlog.Fatalf("Invalid key configuration: %v", err)
	}

	if expiry == 0 {
		expiry = time.Now().Add(24 * time.Hour).Unix()
	}

	ctx, cancel := context.WithTimeout(context.Background(), transport.DefaultConnectTimeout)
	defer cancel()

	conn, err := transport.Connect(ctx, addr)
	if err != nil {
		stdlog.Fatalf("Failed to connect to %s: %v", addr, err)
	}
	defer conn.Close()
	stdlog.Printf("Connected to %s", conn.RemoteAddr())

	session := &session{conn: conn, key: key}

	env, err := command.NewLoginEnvelope(command.Login{
		Username: username,
		Password: password,
		Expiry:   expiry,
	})
	if err != nil {
		stdlog.Fatalf("Failed to build login: %v", err)
	}

	ack, err := session.roundTrip(env)
	if err != nil {
		stdlog.Fatalf("Login exchange failed: %v", err)
	}
	printAck(ack)

	if interactive {
		if err := runInteractive(session); err != nil {
			stdlog.Fatalf("Interactive session failed: %v", err)
		}
	}
}

// resolveKey turns the key flags into a 32-byte key, or nil for plaintext mode.
func resolveKey() ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid key hex: %w", err)
		}
		if len(key) != seal.KeySize {
			return nil, fmt.Errorf("key must be %d bytes, got %d", seal.KeySize, len(key))
		}
		return key, nil
	}
	if passphrase != "" {
		return seal.DeriveKey(passphrase, salt)
	}
	return nil, nil
}

// session is one client connection with its sealing key.
type session struct {
	conn *transport.Transport
	key  []byte
}

// roundTrip seals (when keyed), sends the envelope and waits for the ack.
// A fresh random nonce is drawn per message and carried as metadata.
func (s *session) roundTrip(env *wire.Envelope) (*command.Ack, error) {
	if s.key != nil {
		nonce := make([]byte, seal.NonceSize)
		if _, err := rand.Read(nonce); err != nil {
			return nil, fmt.Errorf("failed to draw nonce: %w", err)
		}
		if err := seal.EncryptPayload(env, s.key, nonce); err != nil {
			return nil, err
		}
		env.Metadata = nonce
	}

	if err := s.conn.Send(env); err != nil {
		return nil, err
	}

	reply, err := s.conn.Receive()
	if err != nil {
		return nil, err
	}

	payload := reply.Payload
	if s.key != nil {
		payload, err = seal.DecryptPayload(reply, s.key, reply.Metadata)
		if err != nil {
			return nil, err
		}
	}

	return command.DecodeAck(reply, payload)
}

func printAck(ack *command.Ack) {
	switch ack.Status {
	case command.StatusOK:
		stdlog.Printf("OK: %s", ack.Message)
	default:
		stdlog.Printf("Rejected: %s", ack.Message)
	}
}

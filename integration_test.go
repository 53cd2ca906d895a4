package farcaster_test

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/farcaster-proto/farcaster-go/pkg/command"
	"github.com/farcaster-proto/farcaster-go/pkg/seal"
	"github.com/farcaster-proto/farcaster-go/pkg/transport"
	"github.com/farcaster-proto/farcaster-go/pkg/wire"
)

// startTestServer starts a server on an ephemeral port that decrypts login
// envelopes with key and replies with a sealed ack. A nil key runs the
// exchange in plaintext.
func startTestServer(t *testing.T, key []byte) *transport.Server {
	t.Helper()

	unseal := func(env *wire.Envelope) ([]byte, error) {
		if key == nil {
			return env.Payload, nil
		}
		return seal.DecryptPayload(env, key, env.Metadata)
	}

	reply := func(conn *transport.ServerConn, ack command.Ack) error {
		env, err := command.NewAckEnvelope(ack)
		if err != nil {
			return err
		}
		if key != nil {
			nonce := make([]byte, seal.NonceSize)
			if _, err := rand.Read(nonce); err != nil {
				return err
			}
			if err := seal.EncryptPayload(env, key, nonce); err != nil {
				return err
			}
			env.Metadata = nonce
		}
		return conn.Send(env)
	}

	server, err := transport.NewServer(transport.ServerConfig{
		Address: "127.0.0.1:0",
		OnEnvelope: func(conn *transport.ServerConn, env *wire.Envelope) {
			payload, err := unseal(env)
			if err != nil {
				_ = reply(conn, command.Ack{Status: command.StatusRejected, Message: err.Error()})
				return
			}

			switch env.Descriptor {
			case command.DescriptorLogin:
				login, err := command.DecodeLogin(env, payload)
				if err != nil {
					_ = reply(conn, command.Ack{Status: command.StatusRejected, Message: err.Error()})
					return
				}
				_ = reply(conn, command.Ack{
					Status:  command.StatusOK,
					Message: fmt.Sprintf("welcome %s", login.Username),
				})
			case command.DescriptorText:
				_ = reply(conn, command.Ack{Status: command.StatusOK, Message: "received"})
			default:
				_ = reply(conn, command.Ack{Status: command.StatusRejected, Message: "unknown descriptor"})
			}
		},
	})
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	if err := server.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	t.Cleanup(func() { _ = server.Stop() })

	return server
}

// connect dials the test server with a bounded context.
func connect(t *testing.T, server *transport.Server) *transport.Transport {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := transport.Connect(ctx, server.Addr().String())
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

// sealedRoundTrip encrypts, sends, receives and decrypts one exchange.
func sealedRoundTrip(conn *transport.Transport, key []byte, env *wire.Envelope) (*command.Ack, error) {
	nonce := make([]byte, seal.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	if err := seal.EncryptPayload(env, key, nonce); err != nil {
		return nil, err
	}
	env.Metadata = nonce

	if err := conn.Send(env); err != nil {
		return nil, err
	}
	reply, err := conn.Receive()
	if err != nil {
		return nil, err
	}
	payload, err := seal.DecryptPayload(reply, key, reply.Metadata)
	if err != nil {
		return nil, err
	}
	return command.DecodeAck(reply, payload)
}

// TestE2E_SealedLogin covers the full stack: envelope codec, payload
// sealing, framed transport and the server dispatch loop.
func TestE2E_SealedLogin(t *testing.T) {
	key, err := seal.DeriveKey("integration test passphrase", "farcaster-e2e")
	if err != nil {
		t.Fatalf("Failed to derive key: %v", err)
	}

	server := startTestServer(t, key)
	conn := connect(t, server)

	env, err := command.NewLoginEnvelope(command.Login{
		Username: "alice",
		Password: "secret",
		Expiry:   time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("Failed to build login: %v", err)
	}

	ack, err := sealedRoundTrip(conn, key, env)
	if err != nil {
		t.Fatalf("Login exchange failed: %v", err)
	}
	if ack.Status != command.StatusOK {
		t.Errorf("Status = %d, want %d", ack.Status, command.StatusOK)
	}
	if ack.Message != "welcome alice" {
		t.Errorf("Message = %q, want %q", ack.Message, "welcome alice")
	}
}

// TestE2E_WrongKeyRejected verifies that a client sealing with the wrong
// key gets a rejection rather than a dropped connection.
func TestE2E_WrongKeyRejected(t *testing.T) {
	serverKey, err := seal.DeriveKey("server passphrase", "farcaster-e2e")
	if err != nil {
		t.Fatalf("Failed to derive key: %v", err)
	}
	clientKey, err := seal.DeriveKey("client passphrase", "farcaster-e2e")
	if err != nil {
		t.Fatalf("Failed to derive key: %v", err)
	}

	server := startTestServer(t, serverKey)
	conn := connect(t, server)

	env, err := command.NewLoginEnvelope(command.Login{Username: "mallory", Password: "x"})
	if err != nil {
		t.Fatalf("Failed to build login: %v", err)
	}

	nonce := make([]byte, seal.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		t.Fatalf("Failed to draw nonce: %v", err)
	}
	if err := seal.EncryptPayload(env, clientKey, nonce); err != nil {
		t.Fatalf("Failed to seal: %v", err)
	}
	env.Metadata = nonce

	if err := conn.Send(env); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	reply, err := conn.Receive()
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	// The rejection ack is sealed with the server's key.
	payload, err := seal.DecryptPayload(reply, serverKey, reply.Metadata)
	if err != nil {
		t.Fatalf("Failed to unseal ack: %v", err)
	}
	ack, err := command.DecodeAck(reply, payload)
	if err != nil {
		t.Fatalf("Failed to decode ack: %v", err)
	}
	if ack.Status != command.StatusRejected {
		t.Errorf("Status = %d, want %d", ack.Status, command.StatusRejected)
	}
}

// TestE2E_PlaintextText exercises the text command without sealing.
func TestE2E_PlaintextText(t *testing.T) {
	server := startTestServer(t, nil)
	conn := connect(t, server)

	env, err := command.NewTextEnvelope("hello over the wire")
	if err != nil {
		t.Fatalf("Failed to build text: %v", err)
	}

	if err := conn.Send(env); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	reply, err := conn.Receive()
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	ack, err := command.DecodeAck(reply, reply.Payload)
	if err != nil {
		t.Fatalf("Failed to decode ack: %v", err)
	}
	if ack.Status != command.StatusOK {
		t.Errorf("Status = %d, want %d", ack.Status, command.StatusOK)
	}
}

// TestE2E_ConcurrentClients runs several sealed sessions in parallel; a
// failure in one must not disturb the others.
func TestE2E_ConcurrentClients(t *testing.T) {
	key, err := seal.DeriveKey("concurrent passphrase", "farcaster-e2e")
	if err != nil {
		t.Fatalf("Failed to derive key: %v", err)
	}

	server := startTestServer(t, key)

	const numClients = 5
	var wg sync.WaitGroup
	errs := make(chan error, numClients)

	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			conn, err := transport.Connect(ctx, server.Addr().String())
			if err != nil {
				errs <- fmt.Errorf("client %d: connect: %w", id, err)
				return
			}
			defer conn.Close()

			env, err := command.NewLoginEnvelope(command.Login{
				Username: fmt.Sprintf("user-%d", id),
				Password: "secret",
			})
			if err != nil {
				errs <- fmt.Errorf("client %d: build: %w", id, err)
				return
			}

			ack, err := sealedRoundTrip(conn, key, env)
			if err != nil {
				errs <- fmt.Errorf("client %d: exchange: %w", id, err)
				return
			}
			if ack.Status != command.StatusOK {
				errs <- fmt.Errorf("client %d: status %d", id, ack.Status)
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

// TestE2E_ServerStopClosesClients verifies that stopping the server
// surfaces as a closed connection on the client side.
func TestE2E_ServerStopClosesClients(t *testing.T) {
	server := startTestServer(t, nil)
	conn := connect(t, server)

	done := make(chan error, 1)
	go func() {
		_, err := conn.Receive()
		done <- err
	}()

	if err := server.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, transport.ErrConnectionClosed) {
			t.Errorf("Receive error = %v, want ErrConnectionClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Receive did not return after server stop")
	}
}

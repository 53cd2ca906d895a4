// Command farcast-server is the reference FarCaster server.
//
// It accepts envelope connections, unseals payloads when a key is
// configured, handles the reference command set (login, text) and replies
// with acknowledgements.
//
// Usage:
//
//	farcast-server [flags]
//
// Flags:
//
//	-addr string        Listen address (default "127.0.0.1:7878")
//	-config string      YAML configuration file path
//	-key string         Hex-encoded 32-byte payload key
//	-passphrase string  Passphrase to derive the payload key (with -salt)
//	-salt string        Salt for passphrase derivation
//	-capture string     Protocol capture file path (.fclog)
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-advertise          Advertise this endpoint via mDNS
//	-name string        Endpoint name for mDNS TXT records
//
// Examples:
//
//	# Plaintext server on the default address
//	farcast-server
//
//	# Sealed payloads with a derived key, protocol capture enabled
//	farcast-server -passphrase "correct horse" -salt site-a -capture /tmp/server.fclog
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	stdlog "log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/farcaster-proto/farcaster-go/pkg/command"
	"github.com/farcaster-proto/farcaster-go/pkg/discovery"
	"github.com/farcaster-proto/farcaster-go/pkg/log"
	"github.com/farcaster-proto/farcaster-go/pkg/seal"
	"github.com/farcaster-proto/farcaster-go/pkg/transport"
	"github.com/farcaster-proto/farcaster-go/pkg/wire"
)

var (
	config     Config
	configFile string
)

func init() {
	flag.StringVar(&config.Address, "addr", transport.DefaultAddress, "Listen address")
	flag.StringVar(&configFile, "config", "", "YAML configuration file path")
	flag.StringVar(&config.Key, "key", "", "Hex-encoded 32-byte payload key")
	flag.StringVar(&config.Passphrase, "passphrase", "", "Passphrase to derive the payload key")
	flag.StringVar(&config.Salt, "salt", "", "Salt for passphrase derivation")
	flag.StringVar(&config.Capture, "capture", "", "Protocol capture file path")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&config.Advertise, "advertise", false, "Advertise this endpoint via mDNS")
	flag.StringVar(&config.Name, "name", "", "Endpoint name for mDNS TXT records")
}

func main() {
	flag.Parse()

	// File values fill in everything the flags left at defaults; flags
	// that were set explicitly win.
	if configFile != "" {
		fileCfg := Config{Address: transport.DefaultAddress, LogLevel: "info"}
		if err := LoadConfig(configFile, &fileCfg); err != nil {
			stdlog.Fatalf("Failed to load config: %v", err)
		}
		merged := fileCfg
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "addr":
				merged.Address = config.Address
			case "key":
				merged.Key = config.Key
			case "passphrase":
				merged.Passphrase = config.Passphrase
			case "salt":
				merged.Salt = config.Salt
			case "capture":
				merged.Capture = config.Capture
			case "log-level":
				merged.LogLevel = config.LogLevel
			case "advertise":
				merged.Advertise = config.Advertise
			case "name":
				merged.Name = config.Name
			}
		})
		config = merged
	}

	setupLogging(config.LogLevel)

	key, err := config.PayloadKey()
	if err != nil {
		stdlog.Fatalf("Invalid key configuration: %v", err)
	}

	stdlog.Println("FarCaster Reference Server")
	stdlog.Printf("Address: %s", config.Address)
	if key != nil {
		stdlog.Println("Payload sealing: enabled")
	} else {
		stdlog.Println("Payload sealing: disabled (plaintext)")
	}

	logger, closeLogger, err := buildProtocolLogger()
	if err != nil {
		stdlog.Fatalf("Failed to set up protocol logging: %v", err)
	}
	defer closeLogger()

	handler := &envelopeHandler{key: key}

	server, err := transport.NewServer(transport.ServerConfig{
		Address:    config.Address,
		Logger:     logger,
		OnEnvelope: handler.handle,
		OnConnect: func(conn *transport.ServerConn) {
			stdlog.Printf("Connected: %s (%s)", conn.RemoteAddr(), conn.ConnID())
		},
		OnDisconnect: func(conn *transport.ServerConn) {
			stdlog.Printf("Disconnected: %s (%s)", conn.RemoteAddr(), conn.ConnID())
		},
		OnError: func(conn *transport.ServerConn, err error) {
			if conn != nil {
				stdlog.Printf("Session error on %s: %v", conn.ConnID(), err)
				return
			}
			stdlog.Printf("Server error: %v", err)
		},
	})
	if err != nil {
		stdlog.Fatalf("Failed to create server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
	stdlog.Printf("Listening on %s", server.Addr())

	if config.Advertise {
		advertiser := startAdvertising(server)
		if advertiser != nil {
			defer advertiser.Stop()
		}
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	stdlog.Printf("Received signal: %v", sig)
	stdlog.Println("Shutting down...")

	if err := server.Stop(); err != nil {
		stdlog.Printf("Error stopping server: %v", err)
	}
}

// buildProtocolLogger assembles the protocol event logger from config:
// a CBOR capture file, debug console output, both, or none.
func buildProtocolLogger() (log.Logger, func(), error) {
	var loggers []log.Logger
	closeFn := func() {}

	if config.Capture != "" {
		fileLogger, err := log.NewFileLogger(config.Capture)
		if err != nil {
			return nil, nil, err
		}
		loggers = append(loggers, fileLogger)
		closeFn = func() { fileLogger.Close() }
		stdlog.Printf("Protocol capture: %s", fileLogger.Path())
	}

	if config.LogLevel == "debug" {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		loggers = append(loggers, log.NewSlogAdapter(slog.New(handler)))
	}

	switch len(loggers) {
	case 0:
		return nil, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return log.NewMultiLogger(loggers...), closeFn, nil
	}
}

func setupLogging(level string) {
	stdlog.SetFlags(stdlog.Ltime | stdlog.Lmicroseconds)

	switch level {
	case "debug":
		stdlog.SetFlags(stdlog.Ltime | stdlog.Lmicroseconds | stdlog.Lshortfile)
	case "warn", "error":
		stdlog.SetFlags(stdlog.Ltime)
	}
}

func startAdvertising(server *transport.Server) *discovery.Advertiser {
	port := transport.DefaultPort
	if tcpAddr, ok := server.Addr().(*net.TCPAddr); ok {
		port = tcpAddr.Port
	}

	advertiser := discovery.NewAdvertiser(discovery.DefaultAdvertiserConfig())
	err := advertiser.Advertise(&discovery.Endpoint{
		InstanceName: config.Name,
		Port:         uint16(port),
		Name:         config.Name,
		Sealed:       config.Key != "" || config.Passphrase != "",
	})
	if err != nil {
		stdlog.Printf("Warning: mDNS advertising failed: %v", err)
		return nil
	}
	stdlog.Printf("Advertising %s over mDNS", discovery.ServiceType)
	return advertiser
}

// envelopeHandler implements the reference command set.
type envelopeHandler struct {
	key []byte
}

// handle processes one received envelope and replies with an ack.
func (h *envelopeHandler) handle(conn *transport.ServerConn, env *wire.Envelope) {
	payload, err := h.unseal(env)
	if err != nil {
		stdlog.Printf("Unseal failed on %s: %v", conn.ConnID(), err)
		h.reply(conn, command.Ack{Status: command.StatusRejected, Message: "unseal failed"})
		return
	}

	switch env.Descriptor {
	case command.DescriptorLogin:
		login, err := command.DecodeLogin(env, payload)
		if err != nil {
			stdlog.Printf("Bad login envelope on %s: %v", conn.ConnID(), err)
			h.reply(conn, command.Ack{Status: command.StatusRejected, Message: "malformed login"})
			return
		}
		stdlog.Printf("Login from %q (expiry %d) on %s", login.Username, login.Expiry, conn.ConnID())
		h.reply(conn, command.Ack{Status: command.StatusOK, Message: "welcome " + login.Username})

	case command.DescriptorText:
		text, err := command.DecodeText(env, payload)
		if err != nil {
			h.reply(conn, command.Ack{Status: command.StatusRejected, Message: "malformed text"})
			return
		}
		stdlog.Printf("Text on %s: %s", conn.ConnID(), text)
		h.reply(conn, command.Ack{Status: command.StatusOK})

	default:
		stdlog.Printf("Unknown descriptor %d on %s", env.Descriptor, conn.ConnID())
		h.reply(conn, command.Ack{Status: command.StatusRejected, Message: fmt.Sprintf("unknown descriptor %d", env.Descriptor)})
	}
}

// unseal decrypts the payload when sealing is enabled. The nonce travels in
// the clear as envelope metadata (GCM nonces are public; uniqueness is what
// matters, and the client draws a fresh one per message).
func (h *envelopeHandler) unseal(env *wire.Envelope) ([]byte, error) {
	if h.key == nil {
		return env.Payload, nil
	}
	return seal.DecryptPayload(env, h.key, env.Metadata)
}

// reply sends an ack, sealed with a fresh nonce when sealing is enabled.
func (h *envelopeHandler) reply(conn *transport.ServerConn, ack command.Ack) {
	env, err := command.NewAckEnvelope(ack)
	if err != nil {
		stdlog.Printf("Failed to build ack: %v", err)
		return
	}

	if h.key != nil {
		nonce := make([]byte, seal.NonceSize)
		if _, err := rand.Read(nonce); err != nil {
			stdlog.Printf("Failed to draw nonce: %v", err)
			return
		}
		if err := seal.EncryptPayload(env, h.key, nonce); err != nil {
			stdlog.Printf("Failed to seal ack: %v", err)
			return
		}
		env.Metadata = nonce
	}

	if err := conn.Send(env); err != nil {
		stdlog.Printf("Failed to send ack on %s: %v", conn.ConnID(), err)
	}
}

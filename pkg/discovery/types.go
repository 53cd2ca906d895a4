package discovery

import (
	"errors"
	"time"

	"github.com/farcaster-proto/farcaster-go/pkg/version"
)

// Service constants for mDNS.
const (
	// ServiceType is the mDNS service type for FarCaster endpoints.
	ServiceType = "_farcaster._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// MaxInstanceNameLen is the maximum mDNS instance name length.
	MaxInstanceNameLen = 63

	// BrowseTimeout is the default timeout for browse operations.
	BrowseTimeout = 10 * time.Second
)

// TXT record keys.
const (
	// TXTKeyVersion is the protocol version TXT key.
	TXTKeyVersion = "v"

	// TXTKeyName is the user-friendly endpoint name TXT key.
	TXTKeyName = "name"

	// TXTKeySealed indicates whether the endpoint expects sealed payloads.
	TXTKeySealed = "sealed"
)

// ProtocolVersion is the advertised FarCaster protocol major version.
var ProtocolVersion = version.TXTValue()

// Discovery errors.
var (
	// ErrNotAdvertising indicates no active advertisement to stop or update.
	ErrNotAdvertising = errors.New("not advertising")

	// ErrNotFound indicates no endpoint matched within the timeout.
	ErrNotFound = errors.New("endpoint not found")
)

// Endpoint describes one advertised FarCaster endpoint.
type Endpoint struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Host is the mDNS hostname.
	Host string

	// Port is the TCP port the endpoint listens on.
	Port uint16

	// Addresses are the IP addresses (v4 and v6) the endpoint resolves to.
	Addresses []string

	// Version is the advertised protocol version.
	Version string

	// Name is the user-friendly endpoint name (optional).
	Name string

	// Sealed indicates the endpoint expects AEAD-sealed payloads.
	Sealed bool
}

// CompatibleVersion reports whether the endpoint advertised a protocol
// version this library can speak.
func (e *Endpoint) CompatibleVersion() bool {
	return version.CompatibleTXT(e.Version)
}

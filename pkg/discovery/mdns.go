package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		Interface: "",
		TTL:       120 * time.Second,
	}
}

// Advertiser announces a FarCaster endpoint over mDNS using zeroconf.
type Advertiser struct {
	config AdvertiserConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAdvertiser creates a new mDNS advertiser.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	return &Advertiser{config: config}
}

// getInterfaces returns the network interfaces to use for advertising.
// Returns nil to use all interfaces.
func (a *Advertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Advertise starts announcing the endpoint. A previous announcement for
// this advertiser is replaced.
func (a *Advertiser) Advertise(endpoint *Endpoint) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	instanceName := endpoint.InstanceName
	if instanceName == "" {
		instanceName = fmt.Sprintf("FarCaster-%d", endpoint.Port)
	}
	if len(instanceName) > MaxInstanceNameLen {
		instanceName = instanceName[:MaxInstanceNameLen]
	}

	txtStrings := EncodeTXT(endpoint)

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		instanceName,
		ServiceType,
		Domain,
		int(endpoint.Port),
		txtStrings,
		a.getInterfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	a.server = server
	return nil
}

// Update replaces the TXT records of the active announcement.
func (a *Advertiser) Update(endpoint *Endpoint) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotAdvertising
	}
	a.server.SetText(EncodeTXT(endpoint))
	return nil
}

// Stop withdraws the announcement.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout is the default timeout for FindByName.
	// Default: 10 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Interface:     "",
	}
}

// Browser searches for FarCaster endpoints over mDNS.
type Browser struct {
	config BrowserConfig
}

// NewBrowser creates a new mDNS browser.
func NewBrowser(config BrowserConfig) *Browser {
	if config.BrowseTimeout == 0 {
		config.BrowseTimeout = BrowseTimeout
	}
	return &Browser{config: config}
}

// Browse searches for endpoints until ctx is cancelled.
// Endpoints are aggregated by instance name - addresses from multiple
// interfaces are combined into a single entry.
func (b *Browser) Browse(ctx context.Context) (<-chan *Endpoint, error) {
	out := make(chan *Endpoint)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	opts := b.browserOptions()

	go func() {
		defer close(out)

		// Track endpoints by instance name, aggregating addresses
		endpoints := make(map[string]*Endpoint)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				endpoint := entryToEndpoint(entry)
				if endpoint == nil {
					continue
				}

				existing, found := endpoints[endpoint.InstanceName]
				if found {
					existing.Addresses = mergeAddresses(existing.Addresses, endpoint.Addresses)
					continue
				}

				endpoints[endpoint.InstanceName] = endpoint
				select {
				case out <- endpoint:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					continue
				}
				delete(endpoints, entry.Instance)

			case <-ctx.Done():
				return
			}
		}
	}()

	// Start browsing in background
	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// FindByName searches for an endpoint with the given instance name,
// skipping endpoints that advertise an incompatible protocol version.
// Returns ErrNotFound when the browse timeout elapses first.
func (b *Browser) FindByName(ctx context.Context, instanceName string) (*Endpoint, error) {
	ctx, cancel := context.WithTimeout(ctx, b.config.BrowseTimeout)
	defer cancel()

	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	for endpoint := range results {
		if endpoint.InstanceName == instanceName && endpoint.CompatibleVersion() {
			return endpoint, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, instanceName)
}

func (b *Browser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	// Select specific interface if configured
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

// entryToEndpoint converts a zeroconf entry to an Endpoint.
func entryToEndpoint(entry *zeroconf.ServiceEntry) *Endpoint {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}

	endpoint := &Endpoint{
		InstanceName: entry.Instance,
		Host:         entry.HostName,
		Port:         uint16(entry.Port),
		Addresses:    addrs,
	}
	DecodeTXT(entry.Text, endpoint)
	return endpoint
}

// mergeAddresses combines address lists without duplicates.
func mergeAddresses(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, addr := range existing {
		seen[addr] = struct{}{}
	}
	for _, addr := range incoming {
		if _, ok := seen[addr]; !ok {
			existing = append(existing, addr)
		}
	}
	return existing
}

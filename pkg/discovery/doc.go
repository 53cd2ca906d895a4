// Package discovery provides mDNS advertising and browsing for FarCaster
// endpoints.
//
// Servers advertise a "_farcaster._tcp" service with TXT metadata (protocol
// version, friendly name); clients browse for endpoints instead of
// hard-coding addresses. Discovery is optional - the transport works with
// plain "host:port" addresses.
package discovery

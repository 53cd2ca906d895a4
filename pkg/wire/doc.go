// Package wire defines the FarCaster envelope and its binary wire format.
//
// An Envelope is one discrete message exchanged between peers: a single
// descriptor byte that tags the application meaning of the message, an
// opaque payload, and opaque metadata. The codec is deliberately small and
// self-describing so it can run on embedded command channels without a
// general-purpose RPC framework.
//
// # Frame Layout
//
// All integers are big-endian:
//
//	offset  size     field
//	0       1 byte   descriptor
//	1       2 bytes  payload length (P)
//	3       P bytes  payload
//	3+P     2 bytes  metadata length (M)
//	5+P     M bytes  metadata
//
// Payload and metadata are each limited to 65535 bytes; oversized fields are
// rejected at encode time, never truncated.
//
// # Payload Encoding
//
// The descriptor, payload and metadata are opaque to this package's frame
// codec. For structured application data the Envelope offers CBOR helpers
// (SetPayload, DecodePayload, SetMetadata, DecodeMetadata) using a
// deterministic encoder configuration.
package wire

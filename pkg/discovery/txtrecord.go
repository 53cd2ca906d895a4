package discovery

import (
	"fmt"
	"strings"
)

// EncodeTXT builds the TXT record strings for an endpoint.
func EncodeTXT(endpoint *Endpoint) []string {
	version := endpoint.Version
	if version == "" {
		version = ProtocolVersion
	}

	txt := []string{
		fmt.Sprintf("%s=%s", TXTKeyVersion, version),
	}
	if endpoint.Name != "" {
		txt = append(txt, fmt.Sprintf("%s=%s", TXTKeyName, endpoint.Name))
	}
	if endpoint.Sealed {
		txt = append(txt, fmt.Sprintf("%s=1", TXTKeySealed))
	}
	return txt
}

// DecodeTXT parses TXT record strings into the endpoint fields they carry.
// Unknown keys are ignored for forward compatibility.
func DecodeTXT(txt []string, endpoint *Endpoint) {
	for _, record := range txt {
		key, value, found := strings.Cut(record, "=")
		if !found {
			continue
		}
		switch key {
		case TXTKeyVersion:
			endpoint.Version = value
		case TXTKeyName:
			endpoint.Name = value
		case TXTKeySealed:
			endpoint.Sealed = value == "1"
		}
	}
}

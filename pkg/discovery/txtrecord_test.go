package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeTXT(t *testing.T) {
	endpoint := &Endpoint{
		Name:    "garage-controller",
		Version: "1",
		Sealed:  true,
	}

	txt := EncodeTXT(endpoint)
	assert.Contains(t, txt, "v=1")
	assert.Contains(t, txt, "name=garage-controller")
	assert.Contains(t, txt, "sealed=1")

	var decoded Endpoint
	DecodeTXT(txt, &decoded)
	assert.Equal(t, "1", decoded.Version)
	assert.Equal(t, "garage-controller", decoded.Name)
	assert.True(t, decoded.Sealed)
}

func TestEncodeTXTDefaults(t *testing.T) {
	txt := EncodeTXT(&Endpoint{})
	assert.Equal(t, []string{"v=1"}, txt)
}

func TestDecodeTXTIgnoresUnknownKeys(t *testing.T) {
	var endpoint Endpoint
	DecodeTXT([]string{"v=2", "future=stuff", "malformed-record"}, &endpoint)

	assert.Equal(t, "2", endpoint.Version)
	assert.False(t, endpoint.Sealed)
}

func TestMergeAddresses(t *testing.T) {
	merged := mergeAddresses([]string{"192.168.1.10"}, []string{"192.168.1.10", "fe80::1"})
	assert.Equal(t, []string{"192.168.1.10", "fe80::1"}, merged)
}

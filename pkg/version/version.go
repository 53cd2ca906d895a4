// Package version provides protocol version parsing, comparison, and
// discovery TXT helpers.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the protocol version implemented by this library.
const Current = "1.0"

// Version represents a parsed "major.minor" protocol version.
type Version struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return Version{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return Version{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return Version{Major: uint16(major), Minor: uint16(minor)}, nil
}

// String returns the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v Version) Compatible(other Version) bool {
	return v.Major == other.Major
}

// TXTValue returns the major version string advertised in discovery TXT
// records: endpoints with the same major version can talk to each other.
func TXTValue() string {
	current, _ := Parse(Current)
	return strconv.FormatUint(uint64(current.Major), 10)
}

// CompatibleTXT reports whether a discovered TXT version value matches the
// current major version. An empty value is treated as compatible since
// early endpoints did not advertise one.
func CompatibleTXT(value string) bool {
	if value == "" {
		return true
	}
	major, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return false
	}
	current, _ := Parse(Current)
	return uint16(major) == current.Major
}

// Package fingerprint provides the fingerprint used to deduplicate findings.
//
// A fingerprint identifies one vulnerability on one host/protocol/port. It is
// stable across runs, so the same Nessus export converted twice yields the
// same keys.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Input contains the data needed to generate a fingerprint.
type Input struct {
	// VulnID is the Nessus plugin id.
	VulnID string

	// Host is the hostname or IP the finding was reported for.
	Host string

	// Protocol and Port come from the "(proto/port)" token.
	Protocol string
	Port     string
}

// Generate creates a fingerprint for the given input.
// The fingerprint is a SHA256 hash (64 hex characters).
func Generate(input Input) string {
	data := fmt.Sprintf("nessus:%s:%s:%s:%s",
		normalize(input.VulnID),
		normalizeHost(input.Host),
		normalize(input.Protocol),
		normalize(input.Port),
	)
	return Hash(data)
}

// Hash computes SHA256 hash of the input string.
// Returns 64 hex characters.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// normalize trims whitespace and lowercases.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeHost cleans up a host identifier.
// - Converts to lowercase
// - Removes a trailing root dot from FQDNs
func normalizeHost(host string) string {
	host = normalize(host)
	return strings.TrimSuffix(host, ".")
}

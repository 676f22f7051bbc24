package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content-addressed identity. The version suffix enables
// future algorithm migration without colliding with old hashes.
const (
	// DomainGraph is the domain for source-graph snapshot hashes.
	DomainGraph = "quilt/graph/v1"
)

// HashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null separator prevents
// domain/data boundary ambiguity.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

package auth

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// fingerprintDisplaySize is the number of hex characters kept when
// fingerprinting a principal for logs.
const fingerprintDisplaySize = 16

// FingerprintPrincipal returns a short, stable hash of the principal id so
// logs can correlate activity without carrying the raw provider identifier.
func FingerprintPrincipal(subject string) string {
	if subject == "" {
		return ""
	}
	sum := sha3.Sum256([]byte(subject))
	return hex.EncodeToString(sum[:])[:fingerprintDisplaySize]
}

package crypto

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"

	"hwgpg/internal/domain"
)

// Fingerprint formats a raw OpenPGP fingerprint as uppercase hex.
func Fingerprint(raw []byte) domain.Fingerprint {
	return domain.Fingerprint(strings.ToUpper(hex.EncodeToString(raw)))
}

// Digest returns the BLAKE2b-256 digest of b as hex. It identifies the exact
// certificate bytes recorded in the manifest.
func Digest(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

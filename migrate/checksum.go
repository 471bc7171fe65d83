package migrate

import (
	"crypto/sha256"
	"encoding/hex"
)

// Checksum digests a migration script: SHA-256 over the exact script
// bytes, lowercase hex. Whitespace-only edits change the digest, which is
// what makes drift detectable.
//
// The algorithm is fixed. Changing it would invalidate every checksum
// already recorded in existing ledgers and report false drift across all
// deployments.
func Checksum(script string) string {
	sum := sha256.Sum256([]byte(script))
	return hex.EncodeToString(sum[:])
}

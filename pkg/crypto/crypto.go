package crypto

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// SHA256 returns the hex-encoded sha256 digest of b.
func SHA256(b []byte) string {
	hashed := sha256.Sum256(b)
	return hex.EncodeToString(hashed[:])
}

// SHA256Uint64 returns the first eight bytes of the sha256 digest of b,
// interpreted as a big-endian unsigned integer.
func SHA256Uint64(b []byte) uint64 {
	hashed := sha256.Sum256(b)
	return binary.BigEndian.Uint64(hashed[:8])
}

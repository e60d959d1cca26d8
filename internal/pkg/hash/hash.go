package hash

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// fingerprintSep separates fingerprint parts so ("ab","c") and ("a","bc") differ.
const fingerprintSep = "\x1f"

// FastHash returns the xxhash 64-bit hash of data.
func FastHash(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Fingerprint returns a 32 character hex digest (murmur3 128-bit) of the given parts.
// Identical parts always produce the same fingerprint.
func Fingerprint(parts ...string) string {
	h1, h2 := murmur3.Sum128([]byte(strings.Join(parts, fingerprintSep)))
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[:8], h1)
	binary.BigEndian.PutUint64(buf[8:], h2)
	return hex.EncodeToString(buf)
}

// Package identity derives the stable 64-bit ids used to deduplicate records
// across extraction batches and runs.
package identity

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Size is the digest length in bytes.
const Size = 8

// Hash feeds each part's UTF-8 bytes, in order, through unkeyed BLAKE2b with
// an 8-byte digest and returns the digest as a big-endian uint64.
//
// Parts are concatenated without separators, so Hash("ab") == Hash("a", "b").
func Hash(parts ...string) uint64 {
	h, err := blake2b.New(Size, nil)
	if err != nil {
		// Size is within 1..64 and there is no key, so New cannot fail.
		panic(err)
	}
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
	}
	return binary.BigEndian.Uint64(h.Sum(nil))
}

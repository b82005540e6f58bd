// Package keyhash computes a deterministic 64-bit hash for any comparable
// key, for use as the home-slot hash in lpht.
//
// © 2025 oha authors. MIT License.
package keyhash

import (
	"unsafe"

	"github.com/cespare/xxhash/v2"

	"github.com/rudimeier/oha/internal/unsafehelpers"
)

// seed mirrors the fixed seed the original C implementation hashes with
// (XXHASH_SEED = 0xc800c831bc63dff8): a fixed seed keeps hashing
// deterministic and test fixtures reproducible across runs, at the cost of
// predictability under adversarial key sequences — acceptable here since
// this is an embedded collection, not a network-facing map.
const seed uint64 = 0xc800c831bc63dff8

// Sum64 hashes key using xxHash64. Strings and byte slices are hashed over
// their contents; every other comparable type is hashed over its in-memory
// representation, the same type-switch shape the teacher's shard.hash uses
// for maphash, swapped here for an xxHash64 digest (computed without a
// seed) XORed with a constant derived from seed.
func Sum64[K comparable](key K) uint64 {
	switch k := any(key).(type) {
	case string:
		return xxhash.Sum64String(k) ^ mix(seed)
	case []byte:
		return xxhash.Sum64(k) ^ mix(seed)
	default:
		ptr := unsafe.Pointer(&key)
		size := unsafe.Sizeof(key)
		b := unsafehelpers.ByteSliceFrom(ptr, size)
		return xxhash.Sum64(b) ^ mix(seed)
	}
}

// mix folds the seed into the digest cheaply so that Sum64's result depends
// on both the key bytes and the fixed seed without re-hashing twice.
func mix(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	return x
}

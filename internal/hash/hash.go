// Package hash implements qmldiff's identifier digest.
//
// The algorithm is a djb2 variant: seed 5481, then for every byte
// h = (h<<5 + h) + byte, with natural uint64 wraparound. It is not
// cryptographic and is not meant to be; it exists so that identifiers can be
// referenced by a stable numeric key across a hashtab file and the diff DSL's
// [[hash]] syntax.
package hash

const seed uint64 = 5481

// Bytes hashes a raw byte slice.
func Bytes(data []byte) uint64 {
	h := seed
	for _, b := range data {
		h = (h<<5 + h) + uint64(b)
	}
	return h
}

// String hashes the raw UTF-8 bytes of s.
//
// Non-ASCII input hashes per UTF-8 byte rather than per rune. This mirrors
// the original implementation's byte-wise digest and is a deliberate
// simplification: the DSL only requires a stable, reproducible key, not a
// canonical Unicode digest.
func String(s string) uint64 {
	return Bytes([]byte(s))
}

// Dotted hashes a dotted identifier's components independently and folds
// them into a single digest by hashing each component's digest in turn. Used
// when a hashed identifier needs to preserve its multi-component structure
// (e.g. qualified names rebuilt from a hashtab) without colliding with the
// digest of the same string taken as a whole.
func Dotted(components []string) uint64 {
	h := seed
	for _, c := range components {
		ch := String(c)
		buf := [8]byte{
			byte(ch >> 56), byte(ch >> 48), byte(ch >> 40), byte(ch >> 32),
			byte(ch >> 24), byte(ch >> 16), byte(ch >> 8), byte(ch),
		}
		h = Bytes(append(buf[:], h2bytes(h)...))
	}
	return h
}

func h2bytes(h uint64) []byte {
	return []byte{
		byte(h >> 56), byte(h >> 48), byte(h >> 40), byte(h >> 32),
		byte(h >> 24), byte(h >> 16), byte(h >> 8), byte(h),
	}
}

// VersionKey is the reserved hashtab key that pins the hashtab's schema
// version (spec §6). Equal to hash.String("!*HashTab-Version").
const VersionKey uint64 = 17607111715072197239

// ChecksumKey is the reserved hashtab key for the optional blake2b checksum
// trailer record (enrichment, see internal/hashtab).
var ChecksumKey = String("!*HashTab-Checksum")

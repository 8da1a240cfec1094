package keys

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Sep separates the namespace, the sanitized key and the digest.
const Sep = ":"

const digestLen = 16

// maxExpand caps the separators Owns will try to map back to "//": each one
// doubles the candidate keys to hash.
const maxExpand = 12

// Physical returns the storage key for (prefix, key):
//
//	<prefix>:<key with every "//" replaced by ":">:<xxhash64(key) as 16 hex chars>
//
// The digest covers the original key, so keys that collapse to the same
// sanitized form still map to distinct storage keys.
func Physical(prefix, key string) string {
	sanitized := strings.ReplaceAll(key, "//", Sep)

	var b strings.Builder
	b.Grow(len(prefix) + len(sanitized) + 2*len(Sep) + 16)
	b.WriteString(prefix)
	b.WriteString(Sep)
	b.WriteString(sanitized)
	b.WriteString(Sep)
	b.WriteString(Digest(key))
	return b.String()
}

// Namespace returns the storage-key prefix shared by every key under prefix.
func Namespace(prefix string) string { return prefix + Sep }

// Owns reports whether storageKey belongs to prefix itself rather than to a
// nested prefix such as prefix:sub. A nested entry shares the namespace string,
// but its digest only matches the key relative to its own prefix.
//
// Keys under the namespace without a digest suffix were not written by
// Physical; they are owned by the innermost matching namespace, which Owns
// cannot know, so it claims them. So does a sanitized segment with more than
// maxExpand separators.
func Owns(prefix, storageKey string) bool {
	ns := Namespace(prefix)
	if !strings.HasPrefix(storageKey, ns) {
		return false
	}
	rest := storageKey[len(ns):]
	i := len(rest) - digestLen - len(Sep)
	if i < 0 || rest[i:i+len(Sep)] != Sep || !isHex(rest[i+len(Sep):]) {
		return true
	}
	sanitized, digest := rest[:i], rest[i+len(Sep):]

	// each Sep in the sanitized key was either Sep or "//" in the original
	parts := strings.Split(sanitized, Sep)
	gaps := len(parts) - 1
	if gaps > maxExpand {
		return true
	}
	var b strings.Builder
	for mask := 0; mask < 1<<gaps; mask++ {
		b.Reset()
		b.WriteString(parts[0])
		for j, p := range parts[1:] {
			if mask&(1<<j) != 0 {
				b.WriteString("//")
			} else {
				b.WriteString(Sep)
			}
			b.WriteString(p)
		}
		if Digest(b.String()) == digest {
			return true
		}
	}
	return false
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Digest renders xxhash64(key) as fixed-width lowercase hex.
func Digest(key string) string {
	var buf [16]byte
	s := strconv.AppendUint(buf[:0], xxhash.Sum64String(key), 16)
	if len(s) == 16 {
		return string(s)
	}
	return strings.Repeat("0", 16-len(s)) + string(s)
}

// EscapeGlob escapes the Redis glob metacharacters in s so it matches literally
// inside a MATCH pattern.
func EscapeGlob(s string) string {
	if !strings.ContainsAny(s, `*?[]\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

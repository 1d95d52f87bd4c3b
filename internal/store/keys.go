package store

import "sync"

// profilePrefix namespaces every key written for one authenticated subject.
const profilePrefix = "profile:"

// keyPool provides reusable byte slices for building database keys.
var keyPool = sync.Pool{
	New: func() any {
		// Covers "profile:" + an Auth0 subject + a storage key.
		return make([]byte, 0, 256)
	},
}

// buildKey concatenates parts into a pooled buffer.
// Callers MUST call releaseKey once the transaction using the key has finished.
//
// Usage:
//
//	key := buildKey(profilePrefix, sub, ":", name)
//	defer releaseKey(key)
func buildKey(parts ...string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return buf
}

// releaseKey returns a key buffer to the pool for reuse.
func releaseKey(key []byte) {
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}

package engine

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// Cache keys are deterministic functions of normalized inputs so that
// semantically identical queries collide: lower-cased, trimmed, internal
// whitespace runs collapsed to a single space.

// Normalize canonicalizes a string for cache addressing.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// QueryCacheKey builds the search-layer key for one (competitor, query)
// pair: normalized competitor plus a short hash of the normalized query,
// so the filename-unsafe query text never appears in the key.
func QueryCacheKey(competitor, query string) string {
	sum := sha256.Sum256([]byte(Normalize(query)))
	return fmt.Sprintf("%s_%x", keySafe(Normalize(competitor)), sum[:6]) // 12 hex chars
}

// QueryArrayHash hashes a query list order-independently: each element is
// normalized, empties dropped, the rest sorted and joined before hashing.
// Permutations and case/whitespace variants produce the same hash.
func QueryArrayHash(queries []string) string {
	normalized := make([]string, 0, len(queries))
	for _, q := range queries {
		if n := Normalize(q); n != "" {
			normalized = append(normalized, n)
		}
	}
	sort.Strings(normalized)
	sum := sha256.Sum256([]byte(strings.Join(normalized, "||")))
	return fmt.Sprintf("%x", sum[:8]) // 16 hex chars
}

// QueriesCacheKey builds the search-layer key for a whole query batch.
func QueriesCacheKey(competitor string, queries []string) string {
	return keySafe(Normalize(competitor)) + "_" + QueryArrayHash(queries)
}

// ChannelCacheKey builds the channel-layer key.
func ChannelCacheKey(channelID string) string {
	return keySafe(Normalize(channelID))
}

// VideoCacheKey builds the video-layer key.
func VideoCacheKey(videoID string) string {
	return keySafe(Normalize(videoID))
}

// keySafe restricts a key to a safe alphabet; anything outside
// [a-z0-9_-] becomes an underscore.
func keySafe(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

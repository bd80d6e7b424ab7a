package httpcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// FingerprintKey computes the cache key per spec §4.1: SHA-256 over the
// canonical JSON of [namespace, url, sorted-params].
func FingerprintKey(namespace, url string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sortedParams := make([][2]string, 0, len(keys))
	for _, k := range keys {
		sortedParams = append(sortedParams, [2]string{k, params[k]})
	}

	canonical, _ := json.Marshal([]interface{}{namespace, url, sortedParams})
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

package httpcache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// entry is a Tier-1 cache row: a document plus its absolute expiry.
type entry struct {
	doc    []byte
	expiry time.Time
}

// Tier1 is the process-local cache, checked first, lazily evicted on
// read miss past expiry per spec §4.1. Backed by
// github.com/hashicorp/golang-lru/v2, grounded on its appearance across
// the retrieved example pack's go.mod manifests (DESIGN.md).
type Tier1 struct {
	mu    sync.Mutex
	cache *lru.Cache[string, entry]
}

// NewTier1 builds an in-process LRU with the given maximum entry count.
func NewTier1(size int) *Tier1 {
	c, err := lru.New[string, entry](size)
	if err != nil {
		// Only returns an error for size <= 0; callers pass a fixed
		// positive constant, so this is a programming error, not a
		// runtime condition.
		panic(err)
	}
	return &Tier1{cache: c}
}

// Get returns the cached document if present and not expired.
func (t *Tier1) Get(key string) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.cache.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiry) {
		t.cache.Remove(key)
		return nil, false
	}
	return e.doc, true
}

// Set writes through to Tier 1 with an absolute expiry ttl from now.
func (t *Tier1) Set(key string, doc []byte, ttl time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache.Add(key, entry{doc: doc, expiry: time.Now().Add(ttl)})
}

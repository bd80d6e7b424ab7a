package httpcache

import (
	"context"
	"time"
)

// Tier2 is the durable key-value store behind Tier1. RedisTier2 keeps
// entries in Redis; MemoryTier2 below is the in-process fallback. This
// package has no Postgres-backed (api_cache table) implementation.
type Tier2 interface {
	Get(ctx context.Context, key string) (doc []byte, ok bool, err error)
	Set(ctx context.Context, key string, doc []byte, ttl time.Duration) error
}

// MemoryTier2 is an in-process stand-in for Tier 2, used by tests and by
// deployments without Postgres/Redis configured.
type MemoryTier2 struct {
	rows map[string]tier2Row
}

type tier2Row struct {
	doc    []byte
	expiry time.Time
}

// NewMemoryTier2 builds an empty in-memory Tier 2.
func NewMemoryTier2() *MemoryTier2 {
	return &MemoryTier2{rows: make(map[string]tier2Row)}
}

func (m *MemoryTier2) Get(_ context.Context, key string) ([]byte, bool, error) {
	row, ok := m.rows[key]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(row.expiry) {
		delete(m.rows, key)
		return nil, false, nil
	}
	return row.doc, true, nil
}

func (m *MemoryTier2) Set(_ context.Context, key string, doc []byte, ttl time.Duration) error {
	m.rows[key] = tier2Row{doc: doc, expiry: time.Now().Add(ttl)}
	return nil
}

package irbank

import (
	"context"
	"sync"
)

type fusedKey struct{ a, b string }
type demotionKey struct{ fingerprint, region string }

// MemCache is an in-memory Cache. Designed for testing and single-process
// use: data is lost when the process terminates.
type MemCache struct {
	mu        sync.RWMutex
	bodies    map[string][]byte
	fused     map[fusedKey]string
	demotions map[demotionKey]string
}

// NewMemCache creates a new in-memory cache.
func NewMemCache() *MemCache {
	return &MemCache{
		bodies:    make(map[string][]byte),
		fused:     make(map[fusedKey]string),
		demotions: make(map[demotionKey]string),
	}
}

func (m *MemCache) GetBody(_ context.Context, fingerprint string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, ok := m.bodies[fingerprint]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (m *MemCache) PutBody(_ context.Context, fingerprint string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	m.bodies[fingerprint] = cp
	return nil
}

func (m *MemCache) GetFused(_ context.Context, a, b string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fp, ok := m.fused[fusedKey{a, b}]
	if !ok {
		return "", ErrNotFound
	}
	return fp, nil
}

func (m *MemCache) PutFused(_ context.Context, a, b, fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fused[fusedKey{a, b}] = fingerprint
	return nil
}

func (m *MemCache) GetDemotion(_ context.Context, fingerprint, regionKey string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rewritten, ok := m.demotions[demotionKey{fingerprint, regionKey}]
	if !ok {
		return "", ErrNotFound
	}
	return rewritten, nil
}

func (m *MemCache) PutDemotion(_ context.Context, fingerprint, regionKey, rewritten string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.demotions[demotionKey{fingerprint, regionKey}] = rewritten
	return nil
}

func (m *MemCache) Close() error { return nil }

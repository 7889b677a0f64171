package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the most recent interactions in memory along with
// running per-category totals.
type MemoryStore struct {
	mu              sync.RWMutex
	interactions    []Interaction
	maxInteractions int
	total           int
	byCategory      map[string]int
}

func NewMemoryStore(maxInteractions int) *MemoryStore {
	return &MemoryStore{
		maxInteractions: maxInteractions,
		byCategory:      make(map[string]int),
	}
}

func (m *MemoryStore) Record(_ context.Context, in Interaction) error {
	in = stamp(in)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions = append(m.interactions, in)
	m.total++
	m.byCategory[in.Category]++
	m.trimLocked()
	return nil
}

// Recent returns up to n interactions, oldest first. n <= 0 returns all retained.
func (m *MemoryStore) Recent(n int) []Interaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	start := 0
	if n > 0 && len(m.interactions) > n {
		start = len(m.interactions) - n
	}
	out := make([]Interaction, len(m.interactions)-start)
	copy(out, m.interactions[start:])
	return out
}

// Stats reports totals since startup, including trimmed interactions.
func (m *MemoryStore) Stats() (total int, byCategory map[string]int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byCategory = make(map[string]int, len(m.byCategory))
	for k, v := range m.byCategory {
		byCategory[k] = v
	}
	return m.total, byCategory
}

func (m *MemoryStore) trimLocked() {
	if m.maxInteractions <= 0 {
		return
	}
	if len(m.interactions) > m.maxInteractions {
		m.interactions = append([]Interaction(nil), m.interactions[len(m.interactions)-m.maxInteractions:]...)
	}
}

package ssr

import (
	"context"
	"sync"
)

// Manager is the sole type-safe handle callers hold: it owns the active
// Pool under a read-write barrier and exposes Swap for hot-reload. Swap
// replaces the pool, never individual workers. A rendering request
// borrows the pool's worker sender for the duration of one call, not the
// worker object itself, so an in-flight request on the old pool completes
// or fails independently of the swap.
type Manager struct {
	mu   sync.RWMutex
	pool *Pool
}

func NewManager(initial *Pool) *Manager {
	return &Manager{pool: initial}
}

func (m *Manager) Render(ctx context.Context, config any) (string, error) {
	m.mu.RLock()
	p := m.pool
	m.mu.RUnlock()
	return p.Render(ctx, config)
}

// WarmUp delegates to the active pool's WarmUp.
func (m *Manager) WarmUp(ctx context.Context) {
	m.mu.RLock()
	p := m.pool
	m.mu.RUnlock()
	p.WarmUp(ctx)
}

func (m *Manager) HealthCheck(ctx context.Context) HealthStatus {
	m.mu.RLock()
	p := m.pool
	m.mu.RUnlock()
	return p.HealthCheck(ctx)
}

// Swap installs newPool atomically and shuts down the previous pool,
// which cascades to its workers. newPool must already be constructed
// (and may have failed construction before Swap is ever called) so the
// barrier is held only for the pointer assignment, not for pool startup.
func (m *Manager) Swap(newPool *Pool) {
	m.mu.Lock()
	old := m.pool
	m.pool = newPool
	m.mu.Unlock()
	old.Shutdown()
}

func (m *Manager) Shutdown() {
	m.mu.RLock()
	p := m.pool
	m.mu.RUnlock()
	p.Shutdown()
}

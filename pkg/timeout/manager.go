// Package timeout centralizes per-operation time budgets so call sites
// derive contexts from one place instead of scattering constants.
package timeout

import (
	"context"
	"sync"
	"time"
)

// Default budgets per operation. The session budget is the overall
// research deadline; search and generate bound single external calls.
var OperationTimeouts = map[string]time.Duration{
	"session":  10 * time.Minute,
	"search":   30 * time.Second,
	"generate": 2 * time.Minute,
}

// Manager resolves timeouts for named operations, honoring an existing
// context deadline when it is tighter.
type Manager struct {
	global    time.Duration
	operation map[string]time.Duration
	mu        sync.RWMutex
}

// NewManager creates a manager with the given global timeout and the
// default per-operation budgets.
func NewManager(global time.Duration) *Manager {
	ops := make(map[string]time.Duration, len(OperationTimeouts))
	for k, v := range OperationTimeouts {
		ops[k] = v
	}
	return &Manager{global: global, operation: ops}
}

// SetOperationTimeout overrides the budget for one operation.
func (m *Manager) SetOperationTimeout(operation string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operation[operation] = d
}

// GetTimeout returns the effective timeout for operation under ctx.
func (m *Manager) GetTimeout(ctx context.Context, operation string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	timeout := m.global
	if op, ok := m.operation[operation]; ok {
		timeout = op
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			return remaining
		}
	}
	return timeout
}

// WithTimeout derives a context bounded by the operation's budget.
func (m *Manager) WithTimeout(ctx context.Context, operation string) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.GetTimeout(ctx, operation))
}

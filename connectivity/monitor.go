// Package connectivity tracks whether the sink is reachable and tells subscribers when that changes.
package connectivity

import (
	"sync"

	"github.com/tfkr-ae/bridgelog/domain"
)

var _ domain.ConnectivitySource = (*Monitor)(nil)

// Monitor is an in-process connectivity source. Handlers fire only on transitions.
type Monitor struct {
	mu       sync.Mutex
	online   bool
	nextID   int
	handlers map[int]func(online bool)
}

// NewMonitor returns a Monitor starting in the given state.
func NewMonitor(online bool) *Monitor {
	return &Monitor{
		online:   online,
		handlers: make(map[int]func(online bool)),
	}
}

// Online implements domain.ConnectivitySource.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnConnectivityChange implements domain.ConnectivitySource.
func (m *Monitor) OnConnectivityChange(handler func(online bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.handlers[id] = handler

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.handlers, id)
	}
}

// SetOnline records the current status and notifies subscribers if it changed.
// Handlers run on the caller's goroutine, after the lock is released.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	handlers := make([]func(bool), 0, len(m.handlers))
	for _, h := range m.handlers {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h(online)
	}
}

package history

import (
	"context"
	"sync"
	"time"
)

// Memory implementa Store y Recorder en proceso. Para dev y tests.
type Memory struct {
	mu     sync.RWMutex
	events map[string][]LoginEvent
}

func NewMemory() *Memory {
	return &Memory{events: make(map[string][]LoginEvent)}
}

func (m *Memory) Events(_ context.Context, principalID string, window time.Duration) ([]LoginEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cutoff := time.Now().UTC().Add(-window)
	var out []LoginEvent
	for _, ev := range m.events[principalID] {
		if window <= 0 || ev.At.After(cutoff) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *Memory) Record(_ context.Context, ev LoginEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[ev.PrincipalID] = append(m.events[ev.PrincipalID], ev)
	return nil
}

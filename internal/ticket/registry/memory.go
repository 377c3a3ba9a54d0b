package registry

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/gatejohn/internal/ticket"
)

// Memory implementa Registry en proceso sobre go-cache.
//
// go-cache aporta la evicción por TTL (janitor) para que los tickets
// abandonados no se acumulen; la expiración de negocio sigue siendo lazy
// via la política del ticket. Un mutex por registry serializa Update,
// cumpliendo el contrato de un solo mutador por id.
type Memory struct {
	c  *gocache.Cache
	mu sync.Mutex
}

// NewMemory crea un registry en memoria. evictAfter acota la vida de la
// entrada en cache (0 = sin evicción); debe ser mayor que cualquier TTL de
// política para no perder tickets vivos.
func NewMemory(evictAfter time.Duration) *Memory {
	if evictAfter <= 0 {
		return &Memory{c: gocache.New(gocache.NoExpiration, 0)}
	}
	return &Memory{c: gocache.New(evictAfter, evictAfter/2)}
}

func (m *Memory) Put(_ context.Context, t ticket.Ticket) error {
	m.c.Set(t.ID(), t, gocache.DefaultExpiration)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (ticket.Ticket, error) {
	v, ok := m.c.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(ticket.Ticket), nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.c.Delete(id)
	return nil
}

func (m *Memory) Update(_ context.Context, id string, fn Mutator) (ticket.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.c.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	t := v.(ticket.Ticket)
	if err := fn(t); err != nil {
		return nil, err
	}
	m.c.Set(id, t, gocache.DefaultExpiration)
	return t, nil
}

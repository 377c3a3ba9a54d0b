package mfa

import (
	"sync"

	"github.com/dropDatabas3/gatejohn/internal/observability/logger"
)

// Registry mantiene el set de providers MFA disponibles.
//
// Los patterns inválidos se rechazan acá, en tiempo de registración; un
// provider mal configurado queda excluido del set pero no rompe al resto.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
}

// NewRegistry construye un registry a partir de definiciones (id, order,
// pattern). Las definiciones inválidas se loguean y se saltean.
func NewRegistry(defs ...ProviderDef) *Registry {
	r := &Registry{}
	log := logger.Named("mfa.registry")
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			log.Warn("provider excluded", logger.ProviderID(d.ID), logger.Err(err))
		}
	}
	return r
}

// ProviderDef es la definición cruda de un provider antes de compilar.
type ProviderDef struct {
	ID           string
	Order        int
	ValuePattern string
}

// Register valida, compila y agrega un provider al set.
// Retorna ErrInvalidProviderConfig si el pattern no compila.
func (r *Registry) Register(d ProviderDef) error {
	p, err := NewProvider(d.ID, d.Order, d.ValuePattern)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = Flatten(append(r.providers, p))
	return nil
}

// Available retorna el set actual, deduplicado y en orden ascendente.
func (r *Registry) Available() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

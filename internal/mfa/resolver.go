package mfa

import (
	"fmt"
	"regexp"

	"github.com/dropDatabas3/gatejohn/internal/authn"
	"github.com/dropDatabas3/gatejohn/internal/observability/logger"
)

// ResolverConfig son las opciones globales de resolución por atributo.
type ResolverConfig struct {
	// TriggerAttributes son los nombres de atributo a inspeccionar, en orden.
	// Vacío => nunca se exige MFA por atributo.
	TriggerAttributes []string

	// GlobalPattern se usa solo en el fast path de provider único: si hay
	// exactamente un provider disponible, los valores se matchean contra
	// este pattern en lugar del pattern propio del provider.
	GlobalPattern string
}

// Resolver decide el próximo evento de autenticación para un principal.
type Resolver struct {
	triggers []string
	global   *regexp.Regexp
}

// NewResolver compila la configuración global. Un GlobalPattern inválido es
// error de configuración y se reporta acá, nunca en Resolve.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	r := &Resolver{triggers: cfg.TriggerAttributes}
	if cfg.GlobalPattern != "" {
		re, err := regexp.Compile(cfg.GlobalPattern)
		if err != nil {
			return nil, fmt.Errorf("%w: global pattern: %v", ErrInvalidProviderConfig, err)
		}
		r.global = re
	}
	return r, nil
}

// Resolve aplica las reglas de desempate sobre los atributos del principal.
// Nunca falla: inputs faltantes degradan a "sin MFA" (fail open para señales
// opcionales). Retorna (providerID, true) o ("", false).
func (r *Resolver) Resolve(p authn.Principal, service string, providers []Provider) (string, bool) {
	log := logger.Named("mfa.resolver")

	if len(r.triggers) == 0 {
		log.Debug("no trigger attributes configured", logger.PrincipalID(p.ID))
		return "", false
	}
	providers = Flatten(providers)
	if len(providers) == 0 {
		log.Debug("no providers available", logger.PrincipalID(p.ID), logger.ServiceID(service))
		return "", false
	}

	// Fast path: provider único + pattern global.
	if len(providers) == 1 && r.global != nil {
		only := providers[0]
		for _, name := range r.triggers {
			for _, v := range p.AttributeValues(name) {
				if r.global.MatchString(v) {
					log.Debug("global pattern matched",
						logger.PrincipalID(p.ID), logger.ProviderID(only.ID), logger.String("attribute", name))
					return only.ID, true
				}
			}
		}
		return "", false
	}

	// Fallback multi-provider: primer match gana, en orden ascendente de
	// provider. Si dos providers matchean el mismo valor, gana el de menor
	// Order; combinarlos es un problema de validación de config, no de acá.
	for _, name := range r.triggers {
		for _, v := range p.AttributeValues(name) {
			for _, prov := range providers {
				if prov.Matches(v) {
					log.Debug("provider pattern matched",
						logger.PrincipalID(p.ID), logger.ProviderID(prov.ID), logger.String("attribute", name))
					return prov.ID, true
				}
			}
		}
	}
	return "", false
}

// StepUp elige el provider para un step-up forzado (mitigación de riesgo):
// el de menor Order disponible. Retorna ("", false) si no hay providers.
func StepUp(providers []Provider) (string, bool) {
	providers = Flatten(providers)
	if len(providers) == 0 {
		return "", false
	}
	return providers[0].ID, true
}

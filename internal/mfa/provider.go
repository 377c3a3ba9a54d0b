// Package mfa resuelve qué segundo factor (si alguno) exige un intento de
// login, a partir de atributos del principal y los providers disponibles.
package mfa

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// ErrInvalidProviderConfig indica un pattern malformado al registrar un
// provider. Es un error de configuración: el provider queda fuera del set
// de candidatos pero la resolución sigue funcionando con el resto.
var ErrInvalidProviderConfig = errors.New("mfa: invalid provider configuration")

// Provider es un mecanismo de segundo factor disponible (sms-otp, push, totp).
// Order desempata cuando más de un provider matchea el mismo valor: gana el
// menor. El pattern se compila una sola vez, al registrar.
type Provider struct {
	ID    string
	Order int

	pattern *regexp.Regexp
}

// NewProvider valida y compila el pattern del provider. El pattern puede ser
// vacío (provider que solo aplica via pattern global o step-up forzado).
func NewProvider(id string, order int, valuePattern string) (Provider, error) {
	if id == "" {
		return Provider{}, fmt.Errorf("%w: empty provider id", ErrInvalidProviderConfig)
	}
	p := Provider{ID: id, Order: order}
	if valuePattern != "" {
		re, err := regexp.Compile(valuePattern)
		if err != nil {
			return Provider{}, fmt.Errorf("%w: provider %s: %v", ErrInvalidProviderConfig, id, err)
		}
		p.pattern = re
	}
	return p, nil
}

// Matches reporta si el valor de atributo activa este provider.
func (p Provider) Matches(value string) bool {
	if p.pattern == nil {
		return false
	}
	return p.pattern.MatchString(value)
}

// Flatten dedup-ea por id (gana el primero) y ordena ascendente por Order.
// Es el builder de set ordenado que consume el resolver: la iteración sobre
// su resultado es determinística.
func Flatten(providers []Provider) []Provider {
	seen := make(map[string]struct{}, len(providers))
	out := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

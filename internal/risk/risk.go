// Package risk puntúa cuán anómalo es un intento de login respecto del
// historial del principal y agrega las señales en un score final [0,1].
//
// Cada calculador es una función pura del historial + contexto del request:
// no muta nada. Señal faltante (principal nuevo, sin geo, sin historial)
// contribuye MaxScore, no cero: un dispositivo/ubicación desconocidos son
// en sí mismos un indicador de riesgo (fail closed).
package risk

import (
	"context"
	"time"

	"github.com/dropDatabas3/gatejohn/internal/authn"
)

// MaxScore es la contribución de una señal desconocida o irrecuperable.
const MaxScore = 1.0

// Attempt es el contexto del intento de login que se está puntuando.
type Attempt struct {
	ServiceID string
	IP        string
	UserAgent string
	Latitude  float64
	Longitude float64
	HasGeo    bool
	At        time.Time
}

// Time retorna el timestamp del intento, o ahora si no vino seteado.
func (a Attempt) Time() time.Time {
	if a.At.IsZero() {
		return time.Now().UTC()
	}
	return a.At
}

// Calculator puntúa una señal independiente. Score retorna un valor en
// [0,1]; 0 = indistinguible del historial, 1 = nunca visto.
type Calculator interface {
	Name() string
	Score(ctx context.Context, p authn.Principal, a Attempt) (float64, error)
}

// Assessment es el veredicto agregado sobre un intento.
type Assessment struct {
	ID            string             `json:"id"`
	PrincipalID   string             `json:"principal_id"`
	Score         float64            `json:"score"`
	PerCalculator map[string]float64 `json:"per_calculator"`
	Threshold     float64            `json:"threshold"`
	Triggered     bool               `json:"triggered"`
	EvaluatedAt   time.Time          `json:"evaluated_at"`
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > MaxScore:
		return MaxScore
	default:
		return v
	}
}

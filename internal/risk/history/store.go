// Package history da acceso de lectura al historial de logins de un
// principal, la materia prima de los calculadores de riesgo.
//
// El core solo lee. Registrar "este login se vio en X" es un paso
// post-decisión a cargo de un colaborador externo (interfaz Recorder).
package history

import (
	"context"
	"time"
)

// LoginEvent es un login observado para un principal.
type LoginEvent struct {
	PrincipalID string
	IP          string
	UserAgent   string
	Latitude    float64
	Longitude   float64
	HasGeo      bool
	At          time.Time
}

// Store es el acceso de lectura que consumen los calculadores.
type Store interface {
	// Events retorna los logins del principal dentro de la ventana
	// (At >= now-window). Slice vacío si no hay historial.
	Events(ctx context.Context, principalID string, window time.Duration) ([]LoginEvent, error)
}

// Recorder persiste un login ya decidido. Lo invoca el caller después de la
// decisión; ningún calculador escribe.
type Recorder interface {
	Record(ctx context.Context, ev LoginEvent) error
}

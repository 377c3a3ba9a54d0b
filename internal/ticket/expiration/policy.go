// Package expiration define las políticas de expiración de tickets.
//
// Una política es un predicado puro sobre el estado de uso de un ticket:
// no guarda estado propio, por lo que una misma instancia puede compartirse
// entre cualquier cantidad de tickets y goroutines.
package expiration

import "time"

// Snapshot es la vista del estado de un ticket que consumen las políticas.
// El ticket la produce bajo su propio lock; la política nunca muta nada.
type Snapshot struct {
	CreatedAt  time.Time
	LastUsedAt time.Time
	UseCount   int
}

// Policy decide si un ticket con el estado dado está expirado en el instante now.
type Policy interface {
	Expired(s Snapshot, now time.Time) bool
}

// Never nunca expira. Útil para tests y tickets administrativos.
type Never struct{}

func (Never) Expired(Snapshot, time.Time) bool { return false }

// Timeout expira cuando pasó más de TTL desde la creación.
type Timeout struct {
	TTL time.Duration
}

func (p Timeout) Expired(s Snapshot, now time.Time) bool {
	return now.Sub(s.CreatedAt) > p.TTL
}

// Idle expira cuando pasó más de Window desde el último uso (ventana deslizante).
// Si el ticket nunca se usó, la ventana corre desde la creación.
type Idle struct {
	Window time.Duration
}

func (p Idle) Expired(s Snapshot, now time.Time) bool {
	last := s.LastUsedAt
	if last.IsZero() {
		last = s.CreatedAt
	}
	return now.Sub(last) > p.Window
}

// Throttled expira si el ticket se vuelve a usar antes de MinInterval
// desde el uso anterior. Protege contra replay en ráfaga de un mismo ticket.
type Throttled struct {
	MinInterval time.Duration
}

func (p Throttled) Expired(s Snapshot, now time.Time) bool {
	if s.UseCount == 0 || s.LastUsedAt.IsZero() {
		return false
	}
	return now.Sub(s.LastUsedAt) < p.MinInterval
}

// Uses expira después de Max usos. Con Max=1 produce tickets single-use
// (service tickets).
type Uses struct {
	Max int
}

func (p Uses) Expired(s Snapshot, _ time.Time) bool {
	return s.UseCount >= p.Max
}

// AnyOf expira si CUALQUIER sub-política expira (OR lógico).
type AnyOf []Policy

func (ps AnyOf) Expired(s Snapshot, now time.Time) bool {
	for _, p := range ps {
		if p.Expired(s, now) {
			return true
		}
	}
	return false
}

// AllOf expira solo si TODAS las sub-políticas expiran (AND lógico).
type AllOf []Policy

func (ps AllOf) Expired(s Snapshot, now time.Time) bool {
	if len(ps) == 0 {
		return false
	}
	for _, p := range ps {
		if !p.Expired(s, now) {
			return false
		}
	}
	return true
}

// TicketGranting es la política estándar para TGTs: vida máxima dura desde la
// creación combinada con ventana de inactividad deslizante (OR).
func TicketGranting(maxLife, idle time.Duration) Policy {
	return AnyOf{Timeout{TTL: maxLife}, Idle{Window: idle}}
}

// ServiceTicket es la política estándar para STs: single-use con TTL corto.
func ServiceTicket(ttl time.Duration, maxUses int) Policy {
	if maxUses <= 0 {
		maxUses = 1
	}
	return AnyOf{Timeout{TTL: ttl}, Uses{Max: maxUses}}
}

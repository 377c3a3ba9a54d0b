// Package ticket implementa el ciclo de vida de los tokens de sesión:
// ticket-granting tickets (TGT) y service tickets (ST).
//
// La expiración se evalúa lazy en cada acceso contra la política del ticket;
// no hay sweeper de fondo en este core. EXPIRED es terminal: una vez marcado,
// ningún chequeo ni política puede revivir el ticket.
//
// Concurrencia: Expired es read-only y seguro para llamadas concurrentes.
// RecordUse y MarkExpired mutan el ticket; el contrato exige que el caller
// (el registry, via su Update atómico per-key) serialice mutaciones por id.
package ticket

import (
	"time"

	"github.com/dropDatabas3/gatejohn/internal/authn"
	"github.com/dropDatabas3/gatejohn/internal/ticket/expiration"
)

// State del ciclo de vida. EXPIRED es terminal.
type State string

const (
	StateValid   State = "valid"
	StateExpired State = "expired"
)

// Ticket es el contrato común de TGT y ST.
type Ticket interface {
	ID() string
	Authentication() authn.Authentication
	CreatedAt() time.Time
	LastUsedAt() time.Time
	UseCount() int

	// Expired evalúa la política con el estado actual. Puro: no muta nada.
	Expired(now time.Time) bool

	// MarkExpired transiciona a EXPIRED. Idempotente.
	MarkExpired()

	// RecordUse actualiza lastUsed e incrementa el contador de usos.
	// Falla con ErrTicketExpired si el ticket ya es terminal.
	RecordUse(now time.Time) error
}

// base contiene el estado compartido de TGT y ST.
type base struct {
	id       string
	auth     authn.Authentication
	policy   expiration.Policy
	created  time.Time
	lastUsed time.Time
	uses     int
	state    State
}

func newBase(id string, auth authn.Authentication, policy expiration.Policy, now time.Time) (base, error) {
	if id == "" || auth.IsZero() {
		return base{}, ErrInvalidArgument
	}
	if policy == nil {
		policy = expiration.Never{}
	}
	return base{
		id:      id,
		auth:    auth,
		policy:  policy,
		created: now,
		state:   StateValid,
	}, nil
}

func (b *base) ID() string                            { return b.id }
func (b *base) Authentication() authn.Authentication  { return b.auth }
func (b *base) CreatedAt() time.Time                  { return b.created }
func (b *base) LastUsedAt() time.Time                 { return b.lastUsed }
func (b *base) UseCount() int                         { return b.uses }
func (b *base) Policy() expiration.Policy             { return b.policy }
func (b *base) State() State                          { return b.state }

func (b *base) snapshot() expiration.Snapshot {
	return expiration.Snapshot{
		CreatedAt:  b.created,
		LastUsedAt: b.lastUsed,
		UseCount:   b.uses,
	}
}

func (b *base) Expired(now time.Time) bool {
	if b.state == StateExpired {
		return true
	}
	return b.policy.Expired(b.snapshot(), now)
}

func (b *base) MarkExpired() {
	b.state = StateExpired
}

func (b *base) RecordUse(now time.Time) error {
	if b.state == StateExpired {
		return ErrTicketExpired
	}
	if b.policy.Expired(b.snapshot(), now) {
		// Detección lazy: al encontrar el ticket vencido lo dejamos terminal.
		b.state = StateExpired
		return ErrTicketExpired
	}
	b.lastUsed = now
	b.uses++
	return nil
}

// TicketGrantingTicket representa una sesión de login validada (larga vida).
type TicketGrantingTicket struct {
	base
}

// NewTicketGrantingTicket crea un TGT. Falla con ErrInvalidArgument si id
// o authentication están vacíos.
func NewTicketGrantingTicket(id string, auth authn.Authentication, policy expiration.Policy) (*TicketGrantingTicket, error) {
	b, err := newBase(id, auth, policy, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &TicketGrantingTicket{base: b}, nil
}

// GrantServiceTicket emite un ST para el servicio dado, registrando el uso
// del TGT. Falla si el TGT ya está expirado.
func (t *TicketGrantingTicket) GrantServiceTicket(id, service string, policy expiration.Policy, now time.Time) (*ServiceTicket, error) {
	if service == "" {
		return nil, ErrInvalidArgument
	}
	if err := t.RecordUse(now); err != nil {
		return nil, err
	}
	b, err := newBase(id, t.auth, policy, now)
	if err != nil {
		return nil, err
	}
	return &ServiceTicket{base: b, service: service, grantedBy: t.id}, nil
}

// ServiceTicket es el token corto que un servicio canjea una sola vez
// (según política) para validar la sesión.
type ServiceTicket struct {
	base
	service   string
	grantedBy string
}

// NewServiceTicket crea un ST suelto (sin TGT emisor), usado en tests y
// en validación stateless.
func NewServiceTicket(id, service string, auth authn.Authentication, policy expiration.Policy) (*ServiceTicket, error) {
	if service == "" {
		return nil, ErrInvalidArgument
	}
	b, err := newBase(id, auth, policy, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &ServiceTicket{base: b, service: service}, nil
}

// Service retorna el identificador del servicio destino.
func (t *ServiceTicket) Service() string { return t.service }

// GrantedBy retorna el id del TGT emisor ("" si es un ST suelto).
func (t *ServiceTicket) GrantedBy() string { return t.grantedBy }

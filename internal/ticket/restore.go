package ticket

import (
	"time"

	"github.com/dropDatabas3/gatejohn/internal/authn"
	"github.com/dropDatabas3/gatejohn/internal/ticket/expiration"
)

// Kind discrimina el tipo concreto al rehidratar desde un backend.
type Kind string

const (
	KindTGT Kind = "tgt"
	KindST  Kind = "st"
)

// RestoreState es el estado plano de un ticket persistido.
// Lo consumen los codecs del registry; no usar fuera de rehidratación.
type RestoreState struct {
	ID         string
	Kind       Kind
	Auth       authn.Authentication
	Policy     expiration.Policy
	CreatedAt  time.Time
	LastUsedAt time.Time
	UseCount   int
	State      State
	Service    string // solo ST
	GrantedBy  string // solo ST
}

// Restore reconstruye un ticket desde su estado persistido, preservando
// timestamps, contador y estado terminal.
func Restore(r RestoreState) (Ticket, error) {
	if r.ID == "" || r.Auth.IsZero() {
		return nil, ErrInvalidArgument
	}
	policy := r.Policy
	if policy == nil {
		policy = expiration.Never{}
	}
	state := r.State
	if state == "" {
		state = StateValid
	}
	b := base{
		id:       r.ID,
		auth:     r.Auth,
		policy:   policy,
		created:  r.CreatedAt,
		lastUsed: r.LastUsedAt,
		uses:     r.UseCount,
		state:    state,
	}
	switch r.Kind {
	case KindST:
		if r.Service == "" {
			return nil, ErrInvalidArgument
		}
		return &ServiceTicket{base: b, service: r.Service, grantedBy: r.GrantedBy}, nil
	default:
		return &TicketGrantingTicket{base: b}, nil
	}
}

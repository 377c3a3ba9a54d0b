package registry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dropDatabas3/gatejohn/internal/authn"
	"github.com/dropDatabas3/gatejohn/internal/ticket"
	"github.com/dropDatabas3/gatejohn/internal/ticket/expiration"
)

// ticketDTO es la forma plana que viaja a backends fuera de proceso.
type ticketDTO struct {
	ID         string               `json:"id"`
	Kind       ticket.Kind          `json:"kind"`
	Auth       authn.Authentication `json:"auth"`
	Policy     expiration.Spec      `json:"policy"`
	CreatedAt  time.Time            `json:"created_at"`
	LastUsedAt time.Time            `json:"last_used_at,omitempty"`
	UseCount   int                  `json:"use_count"`
	State      ticket.State         `json:"state"`
	Service    string               `json:"service,omitempty"`
	GrantedBy  string               `json:"granted_by,omitempty"`
}

// Encode serializa un ticket a JSON.
func Encode(t ticket.Ticket) ([]byte, error) {
	dto := ticketDTO{
		ID:         t.ID(),
		Auth:       t.Authentication(),
		CreatedAt:  t.CreatedAt(),
		LastUsedAt: t.LastUsedAt(),
		UseCount:   t.UseCount(),
	}
	switch v := t.(type) {
	case *ticket.TicketGrantingTicket:
		dto.Kind = ticket.KindTGT
		dto.State = v.State()
		spec, err := expiration.SpecOf(v.Policy())
		if err != nil {
			return nil, err
		}
		dto.Policy = spec
	case *ticket.ServiceTicket:
		dto.Kind = ticket.KindST
		dto.State = v.State()
		dto.Service = v.Service()
		dto.GrantedBy = v.GrantedBy()
		spec, err := expiration.SpecOf(v.Policy())
		if err != nil {
			return nil, err
		}
		dto.Policy = spec
	default:
		return nil, fmt.Errorf("registry: cannot encode ticket type %T", t)
	}
	return json.Marshal(dto)
}

// Decode reconstruye un ticket desde su forma JSON.
func Decode(raw []byte) (ticket.Ticket, error) {
	var dto ticketDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, fmt.Errorf("registry: decode ticket: %w", err)
	}
	policy, err := dto.Policy.Build()
	if err != nil {
		return nil, err
	}
	return ticket.Restore(ticket.RestoreState{
		ID:         dto.ID,
		Kind:       dto.Kind,
		Auth:       dto.Auth,
		Policy:     policy,
		CreatedAt:  dto.CreatedAt,
		LastUsedAt: dto.LastUsedAt,
		UseCount:   dto.UseCount,
		State:      dto.State,
		Service:    dto.Service,
		GrantedBy:  dto.GrantedBy,
	})
}

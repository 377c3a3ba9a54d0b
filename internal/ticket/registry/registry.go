// Package registry almacena y recupera tickets por id.
//
// El core solo exige semántica create/get/delete/update; la consistencia
// (serializar mutaciones por id) es responsabilidad del backend. Update es
// el único camino para mutar un ticket persistido: recibe un mutator que
// corre con el ticket "fresco" del backend y persiste el resultado.
package registry

import (
	"context"
	"errors"

	"github.com/dropDatabas3/gatejohn/internal/ticket"
)

var (
	ErrNotFound = errors.New("registry: ticket not found")
)

// Mutator muta un ticket dentro de Update. Si retorna error, nada se persiste.
type Mutator func(t ticket.Ticket) error

// Registry es el contrato de almacenamiento de tickets.
type Registry interface {
	// Put guarda (o reemplaza) el ticket.
	Put(ctx context.Context, t ticket.Ticket) error

	// Get retorna el ticket o ErrNotFound.
	Get(ctx context.Context, id string) (ticket.Ticket, error)

	// Delete elimina el ticket. Borrar un id inexistente no es error.
	Delete(ctx context.Context, id string) error

	// Update aplica el mutator de forma atómica por id y retorna el
	// ticket resultante. ErrNotFound si el id no existe.
	Update(ctx context.Context, id string, fn Mutator) (ticket.Ticket, error)
}

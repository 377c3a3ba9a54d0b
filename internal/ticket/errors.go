package ticket

import "errors"

var (
	// ErrInvalidArgument indica input de creación malformado (id o
	// authentication vacíos). Se rechaza antes de crear el ticket.
	ErrInvalidArgument = errors.New("ticket: invalid argument")

	// ErrTicketExpired indica una mutación sobre un ticket terminal.
	// El caller debe tratarlo como "sesión inválida", no reintentar.
	ErrTicketExpired = errors.New("ticket: already expired")
)

// Package engine orquesta la decisión de autenticación: valida el ticket de
// sesión, puntúa el riesgo del intento y resuelve si hace falta un segundo
// factor.
//
// Flujo por intento:
//
//	ticket (create/validate) -> risk evaluate -> [triggered: notify + step-up
//	forzado] -> resolución MFA por atributo -> Decision
//
// El engine no bloquea en I/O propio: registry, history y notifier son
// colaboradores detrás de interfaces.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/gatejohn/internal/audit"
	"github.com/dropDatabas3/gatejohn/internal/authn"
	"github.com/dropDatabas3/gatejohn/internal/metrics"
	"github.com/dropDatabas3/gatejohn/internal/mfa"
	"github.com/dropDatabas3/gatejohn/internal/observability/logger"
	"github.com/dropDatabas3/gatejohn/internal/risk"
	"github.com/dropDatabas3/gatejohn/internal/risk/notify"
	"github.com/dropDatabas3/gatejohn/internal/security/tickets"
	"github.com/dropDatabas3/gatejohn/internal/ticket"
	"github.com/dropDatabas3/gatejohn/internal/ticket/expiration"
	"github.com/dropDatabas3/gatejohn/internal/ticket/registry"
	"github.com/dropDatabas3/gatejohn/internal/util"
)

// Outcome es el resultado de una decisión.
type Outcome string

const (
	OutcomeAllow      Outcome = "allow"
	OutcomeRequireMFA Outcome = "require_mfa"
	OutcomeDeny       Outcome = "deny"
)

// Decision es lo que el engine devuelve al flow externo.
type Decision struct {
	Outcome    Outcome         `json:"outcome"`
	ProviderID string          `json:"provider_id,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Assessment risk.Assessment `json:"assessment"`
}

// Deps son los colaboradores del engine, construidos explícitamente por el
// caller (sin contenedor ni discovery).
type Deps struct {
	Registry  registry.Registry
	Providers *mfa.Registry
	Resolver  *mfa.Resolver
	Evaluator *risk.Evaluator
	Notifier  notify.Notifier

	TGTPolicy expiration.Policy
	STPolicy  expiration.Policy
}

// Engine es el core de decisión. Seguro para uso concurrente: todo el
// estado mutable vive en el registry.
type Engine struct {
	deps Deps
}

var errMissingDeps = errors.New("engine: registry, resolver and evaluator are required")

func New(deps Deps) (*Engine, error) {
	if deps.Registry == nil || deps.Resolver == nil || deps.Evaluator == nil {
		return nil, errMissingDeps
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Log{}
	}
	if deps.Providers == nil {
		deps.Providers = mfa.NewRegistry()
	}
	if deps.TGTPolicy == nil {
		deps.TGTPolicy = expiration.TicketGranting(8*time.Hour, 2*time.Hour)
	}
	if deps.STPolicy == nil {
		deps.STPolicy = expiration.ServiceTicket(10*time.Second, 1)
	}
	return &Engine{deps: deps}, nil
}

// Login emite un TGT para una autenticación ya verificada por el
// colaborador externo de credenciales.
func (e *Engine) Login(ctx context.Context, auth authn.Authentication) (*ticket.TicketGrantingTicket, error) {
	id, err := tickets.NewID(tickets.PrefixTGT)
	if err != nil {
		return nil, err
	}
	tgt, err := ticket.NewTicketGrantingTicket(id, auth, e.deps.TGTPolicy)
	if err != nil {
		return nil, err
	}
	if err := e.deps.Registry.Put(ctx, tgt); err != nil {
		return nil, err
	}
	metrics.TicketsIssued.WithLabelValues(string(ticket.KindTGT)).Inc()
	audit.Log(ctx, "tgt.issued", map[string]any{
		"principal_id": auth.Principal.ID,
		"ticket_id":    util.MaskTicketID(id),
	})
	return tgt, nil
}

// Decide valida la sesión y resuelve el próximo evento de autenticación
// para el intento dado.
func (e *Engine) Decide(ctx context.Context, tgtID string, attempt risk.Attempt) (Decision, error) {
	log := logger.From(ctx).Named("engine")

	auth, err := e.useTicket(ctx, tgtID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) || errors.Is(err, ticket.ErrTicketExpired) {
			d := Decision{Outcome: OutcomeDeny, Reason: "authentication required again"}
			e.record(ctx, d, attempt, "")
			return d, nil
		}
		return Decision{}, err
	}
	p := auth.Principal

	as, err := e.deps.Evaluator.Evaluate(ctx, p, attempt)
	if err != nil {
		return Decision{}, err
	}
	metrics.RiskScore.Observe(as.Score)

	providers := e.deps.Providers.Available()

	if as.Triggered {
		metrics.RiskTriggered.Inc()
		// Fire-and-forget: la falla del notifier no cambia la decisión.
		if nerr := e.deps.Notifier.Publish(ctx, p, attempt, as); nerr != nil {
			log.Error("risk notifier failed", logger.PrincipalID(p.ID), logger.Err(nerr))
		}
		if providerID, ok := mfa.StepUp(providers); ok {
			d := Decision{Outcome: OutcomeRequireMFA, ProviderID: providerID, Reason: "risk threshold exceeded", Assessment: as}
			e.record(ctx, d, attempt, p.ID)
			return d, nil
		}
		// Riesgo disparado y ningún factor disponible para step-up: el
		// acceso no se concede en silencio.
		d := Decision{Outcome: OutcomeDeny, Reason: "risk threshold exceeded, no step-up factor available", Assessment: as}
		e.record(ctx, d, attempt, p.ID)
		return d, nil
	}

	if providerID, ok := e.deps.Resolver.Resolve(p, attempt.ServiceID, providers); ok {
		d := Decision{Outcome: OutcomeRequireMFA, ProviderID: providerID, Assessment: as}
		e.record(ctx, d, attempt, p.ID)
		return d, nil
	}

	d := Decision{Outcome: OutcomeAllow, Assessment: as}
	e.record(ctx, d, attempt, p.ID)
	return d, nil
}

// GrantService emite un ST contra un TGT vigente.
func (e *Engine) GrantService(ctx context.Context, tgtID, service string) (*ticket.ServiceTicket, error) {
	stID, err := tickets.NewID(tickets.PrefixST)
	if err != nil {
		return nil, err
	}
	var st *ticket.ServiceTicket
	_, err = e.deps.Registry.Update(ctx, tgtID, func(t ticket.Ticket) error {
		tgt, ok := t.(*ticket.TicketGrantingTicket)
		if !ok {
			return ticket.ErrInvalidArgument
		}
		granted, gerr := tgt.GrantServiceTicket(stID, service, e.deps.STPolicy, time.Now().UTC())
		if gerr != nil {
			return gerr
		}
		st = granted
		return nil
	})
	if err != nil {
		if errors.Is(err, ticket.ErrTicketExpired) {
			metrics.TicketsExpired.Inc()
			_ = e.deps.Registry.Delete(ctx, tgtID)
		}
		return nil, err
	}
	if err := e.deps.Registry.Put(ctx, st); err != nil {
		return nil, err
	}
	metrics.TicketsIssued.WithLabelValues(string(ticket.KindST)).Inc()
	return st, nil
}

// ValidateService canjea un ST por el registro de autenticación. El ST es
// single-use (según política): tras un canje exitoso que lo agota, se borra.
func (e *Engine) ValidateService(ctx context.Context, stID, service string) (authn.Authentication, error) {
	now := time.Now().UTC()
	var auth authn.Authentication
	updated, err := e.deps.Registry.Update(ctx, stID, func(t ticket.Ticket) error {
		st, ok := t.(*ticket.ServiceTicket)
		if !ok {
			return ticket.ErrInvalidArgument
		}
		if st.Service() != service {
			return ticket.ErrInvalidArgument
		}
		if uerr := st.RecordUse(now); uerr != nil {
			return uerr
		}
		auth = st.Authentication()
		return nil
	})
	if err != nil {
		if errors.Is(err, ticket.ErrTicketExpired) {
			metrics.TicketsExpired.Inc()
			_ = e.deps.Registry.Delete(ctx, stID)
		}
		return authn.Authentication{}, err
	}
	if updated.Expired(now) {
		// Política agotada (ej: single-use). El ticket ya no sirve a nadie.
		_ = e.deps.Registry.Delete(ctx, stID)
	}
	return auth, nil
}

// Logout invalida el TGT de forma explícita y lo elimina del registry.
func (e *Engine) Logout(ctx context.Context, tgtID string) error {
	_, err := e.deps.Registry.Update(ctx, tgtID, func(t ticket.Ticket) error {
		t.MarkExpired()
		return nil
	})
	if err != nil && !errors.Is(err, registry.ErrNotFound) {
		return err
	}
	return e.deps.Registry.Delete(ctx, tgtID)
}

// useTicket registra el uso del TGT de forma atómica y retorna su
// autenticación. La detección lazy de expiración pasa por acá.
func (e *Engine) useTicket(ctx context.Context, tgtID string) (authn.Authentication, error) {
	now := time.Now().UTC()
	var auth authn.Authentication
	_, err := e.deps.Registry.Update(ctx, tgtID, func(t ticket.Ticket) error {
		if uerr := t.RecordUse(now); uerr != nil {
			return uerr
		}
		auth = t.Authentication()
		return nil
	})
	if err != nil {
		if errors.Is(err, ticket.ErrTicketExpired) {
			metrics.TicketsExpired.Inc()
			_ = e.deps.Registry.Delete(ctx, tgtID)
		}
		return authn.Authentication{}, err
	}
	return auth, nil
}

func (e *Engine) record(ctx context.Context, d Decision, attempt risk.Attempt, principalID string) {
	metrics.Decisions.WithLabelValues(string(d.Outcome)).Inc()
	fields := map[string]any{
		"outcome":    string(d.Outcome),
		"service_id": attempt.ServiceID,
		"client_ip":  attempt.IP,
	}
	if principalID != "" {
		fields["principal_id"] = principalID
	}
	if d.ProviderID != "" {
		fields["provider_id"] = d.ProviderID
	}
	if d.Reason != "" {
		fields["reason"] = d.Reason
	}
	audit.Log(ctx, "decision", fields)
}

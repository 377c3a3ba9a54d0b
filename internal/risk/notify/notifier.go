// Package notify publica avisos de mitigación cuando un intento supera el
// umbral de riesgo.
//
// El contrato es fire-and-forget desde el punto de vista del core: un
// notifier que falla se loguea y la decisión de autenticación ya tomada no
// cambia.
package notify

import (
	"context"

	"github.com/dropDatabas3/gatejohn/internal/authn"
	"github.com/dropDatabas3/gatejohn/internal/observability/logger"
	"github.com/dropDatabas3/gatejohn/internal/risk"
)

// Notifier publica un aviso sobre un intento riesgoso.
type Notifier interface {
	Publish(ctx context.Context, p authn.Principal, a risk.Attempt, as risk.Assessment) error
}

// Log implementa Notifier escribiendo el aviso al logger estructurado.
// Es el default cuando no hay transporte configurado.
type Log struct{}

func (Log) Publish(_ context.Context, p authn.Principal, a risk.Attempt, as risk.Assessment) error {
	logger.Named("risk.notify").Warn("risky authentication attempt",
		logger.PrincipalID(p.ID),
		logger.ServiceID(a.ServiceID),
		logger.ClientIP(a.IP),
		logger.Score(as.Score),
		logger.Threshold(as.Threshold),
	)
	return nil
}

// Multi publica en todos los notifiers, logueando y continuando ante fallas
// individuales. Nunca retorna error.
type Multi []Notifier

func (m Multi) Publish(ctx context.Context, p authn.Principal, a risk.Attempt, as risk.Assessment) error {
	log := logger.Named("risk.notify")
	for _, n := range m {
		if err := n.Publish(ctx, p, a, as); err != nil {
			log.Error("notifier failed", logger.PrincipalID(p.ID), logger.Err(err))
		}
	}
	return nil
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Decision-engine Prometheus metrics. Standalone package to avoid import
// cycles between the engine and HTTP packages.

var (
	Decisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gatejohn_decisions_total",
		Help: "Decisiones del engine por resultado",
	}, []string{"outcome"})

	RiskScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gatejohn_risk_score",
		Help:    "Distribución del score de riesgo agregado",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	RiskTriggered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gatejohn_risk_triggered_total",
		Help: "Intentos que superaron el umbral de riesgo",
	})

	TicketsIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gatejohn_tickets_issued_total",
		Help: "Tickets emitidos por tipo (tgt|st)",
	}, []string{"kind"})

	TicketsExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gatejohn_tickets_expired_total",
		Help: "Tickets encontrados expirados en validación lazy",
	})
)

// RegisterDecision registers the engine metrics on the given registry
// (or default if nil).
func RegisterDecision(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{Decisions, RiskScore, RiskTriggered, TicketsIssued, TicketsExpired} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// Package app cablea el engine a partir de la configuración: construye
// registry, history store, calculadores, resolver y notifier de forma
// explícita (sin contenedor de dependencias).
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/gatejohn/internal/config"
	"github.com/dropDatabas3/gatejohn/internal/engine"
	"github.com/dropDatabas3/gatejohn/internal/mfa"
	"github.com/dropDatabas3/gatejohn/internal/observability/logger"
	"github.com/dropDatabas3/gatejohn/internal/risk"
	"github.com/dropDatabas3/gatejohn/internal/risk/history"
	"github.com/dropDatabas3/gatejohn/internal/risk/notify"
	"github.com/dropDatabas3/gatejohn/internal/ticket/expiration"
	"github.com/dropDatabas3/gatejohn/internal/ticket/registry"
)

// Build construye el engine y retorna un cleanup para los recursos
// externos (pools, clientes).
func Build(ctx context.Context, cfg *config.Config) (*engine.Engine, func(), error) {
	log := logger.Named("app")
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Registry de tickets
	var reg registry.Registry
	switch cfg.Registry.Kind {
	case "redis":
		client := rdb.NewClient(&rdb.Options{
			Addr: cfg.Registry.Redis.Addr,
			DB:   cfg.Registry.Redis.DB,
		})
		cleanups = append(cleanups, func() { _ = client.Close() })
		reg = registry.NewRedis(client, cfg.Registry.Redis.Prefix,
			config.Dur(cfg.Registry.EvictAfter), cfg.Registry.Redis.Sealed)
	default:
		reg = registry.NewMemory(config.Dur(cfg.Registry.EvictAfter))
	}

	// History store
	var hist history.Store
	switch cfg.Risk.History.Kind {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Risk.History.Postgres.DSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("app: history pool: %w", err)
		}
		cleanups = append(cleanups, pool.Close)
		hist = history.NewPG(pool)
	default:
		hist = history.NewMemory()
	}

	// Calculadores habilitados
	window := config.Dur(cfg.Risk.HistoryWindow)
	var calcs []risk.Calculator
	for _, name := range cfg.Risk.Calculators {
		switch name {
		case "time_of_day":
			calcs = append(calcs, risk.TimeOfDay{History: hist, Window: window})
		case "geolocation":
			calcs = append(calcs, risk.Geolocation{History: hist, Window: window})
		case "ip_address":
			calcs = append(calcs, risk.IPAddress{History: hist, Window: window})
		case "user_agent":
			calcs = append(calcs, risk.UserAgent{History: hist, Window: window})
		default:
			cleanup()
			return nil, nil, fmt.Errorf("app: unknown risk calculator %q", name)
		}
	}

	agg, err := risk.NewAggregator(risk.Strategy(cfg.Risk.Aggregation), cfg.Risk.Weights)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	eval, err := risk.NewEvaluator(calcs, agg, cfg.Risk.Threshold)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	// Providers MFA (los patterns inválidos quedan excluidos y logueados)
	defs := make([]mfa.ProviderDef, 0, len(cfg.MFA.Providers))
	for _, p := range cfg.MFA.Providers {
		defs = append(defs, mfa.ProviderDef{ID: p.ID, Order: p.Order, ValuePattern: p.ValuePattern})
	}
	providers := mfa.NewRegistry(defs...)

	resolver, err := mfa.NewResolver(mfa.ResolverConfig{
		TriggerAttributes: cfg.MFA.TriggerAttributes,
		GlobalPattern:     cfg.MFA.GlobalPattern,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	// Notifier
	var notifier notify.Notifier = notify.Log{}
	if cfg.Risk.Notify.Kind == "mail" {
		m := &notify.Mail{
			Host:          cfg.Risk.Notify.Mail.Host,
			Port:          cfg.Risk.Notify.Mail.Port,
			From:          cfg.Risk.Notify.Mail.From,
			User:          cfg.Risk.Notify.Mail.User,
			Pass:          cfg.Risk.Notify.Mail.Pass,
			TLSMode:       cfg.Risk.Notify.Mail.TLS,
			AttributeName: cfg.Risk.Notify.Mail.AttributeName,
			Subject:       cfg.Risk.Notify.Mail.Subject,
			VerifyURL:     cfg.Risk.Notify.Mail.VerifyURL,
		}
		if cfg.Risk.Notify.VerifySecret != "" {
			m.Tokens = &notify.VerifyTokenIssuer{
				Secret: []byte(cfg.Risk.Notify.VerifySecret),
				Issuer: "gatejohn",
				TTL:    config.Dur(cfg.Risk.Notify.VerifyTTL),
			}
		}
		// El aviso riesgoso siempre queda al menos en el log.
		notifier = notify.Multi{notify.Log{}, m}
	}

	eng, err := engine.New(engine.Deps{
		Registry:  reg,
		Providers: providers,
		Resolver:  resolver,
		Evaluator: eval,
		Notifier:  notifier,
		TGTPolicy: expiration.TicketGranting(config.Dur(cfg.Tickets.TGTMaxLife), config.Dur(cfg.Tickets.TGTIdle)),
		STPolicy:  expiration.ServiceTicket(config.Dur(cfg.Tickets.STTTL), cfg.Tickets.STMaxUses),
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	log.Info("engine wired",
		logger.String("registry", cfg.Registry.Kind),
		logger.String("history", cfg.Risk.History.Kind),
		logger.Count(len(calcs)),
		logger.Threshold(cfg.Risk.Threshold),
	)
	return eng, cleanup, nil
}

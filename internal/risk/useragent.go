package risk

import (
	"context"
	"time"

	"github.com/dropDatabas3/gatejohn/internal/authn"
	"github.com/dropDatabas3/gatejohn/internal/risk/history"
)

// UserAgent puntúa según cuántos logins históricos usaron el mismo
// fingerprint de cliente (match exacto de user-agent).
type UserAgent struct {
	History history.Store
	Window  time.Duration
}

func (c UserAgent) Name() string { return "user_agent" }

func (c UserAgent) Score(ctx context.Context, p authn.Principal, a Attempt) (float64, error) {
	if a.UserAgent == "" {
		return MaxScore, nil
	}
	events, err := c.History.Events(ctx, p.ID, c.Window)
	if err != nil {
		return MaxScore, err
	}
	if len(events) == 0 {
		return MaxScore, nil
	}
	matches := 0
	for _, ev := range events {
		if ev.UserAgent == a.UserAgent {
			matches++
		}
	}
	return clamp(1 - float64(matches)/float64(len(events))), nil
}

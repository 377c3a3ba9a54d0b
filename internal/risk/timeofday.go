package risk

import (
	"context"
	"time"

	"github.com/dropDatabas3/gatejohn/internal/authn"
	"github.com/dropDatabas3/gatejohn/internal/risk/history"
)

// TimeOfDay puntúa según qué tan lejos cae la hora del intento de la
// distribución horaria histórica del principal: cuenta los logins dentro
// de ±WindowHours de la hora actual.
type TimeOfDay struct {
	History history.Store
	Window  time.Duration

	// WindowHours define la banda horaria que se considera "habitual".
	// Default: 2.
	WindowHours int
}

func (c TimeOfDay) Name() string { return "time_of_day" }

func (c TimeOfDay) Score(ctx context.Context, p authn.Principal, a Attempt) (float64, error) {
	events, err := c.History.Events(ctx, p.ID, c.Window)
	if err != nil {
		return MaxScore, err
	}
	if len(events) == 0 {
		return MaxScore, nil
	}
	band := c.WindowHours
	if band <= 0 {
		band = 2
	}
	hour := a.Time().UTC().Hour()
	matches := 0
	for _, ev := range events {
		if hourDistance(hour, ev.At.UTC().Hour()) <= band {
			matches++
		}
	}
	return clamp(1 - float64(matches)/float64(len(events))), nil
}

// hourDistance es la distancia circular entre dos horas (0..12).
func hourDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > 12 {
		d = 24 - d
	}
	return d
}

package risk

import (
	"context"
	"math"
	"time"

	"github.com/dropDatabas3/gatejohn/internal/authn"
	"github.com/dropDatabas3/gatejohn/internal/risk/history"
)

// Geolocation puntúa por distancia entre las coordenadas del intento y las
// ubicaciones históricas. Sin geo en el intento o sin historial con geo,
// aplica la penalidad de ubicación desconocida (MaxScore).
type Geolocation struct {
	History history.Store
	Window  time.Duration

	// RadiusKm define qué tan cerca tiene que estar un login histórico
	// para contar como "misma zona". Default: 100.
	RadiusKm float64
}

func (c Geolocation) Name() string { return "geolocation" }

func (c Geolocation) Score(ctx context.Context, p authn.Principal, a Attempt) (float64, error) {
	if !a.HasGeo {
		return MaxScore, nil
	}
	events, err := c.History.Events(ctx, p.ID, c.Window)
	if err != nil {
		return MaxScore, err
	}
	radius := c.RadiusKm
	if radius <= 0 {
		radius = 100
	}
	total, matches := 0, 0
	for _, ev := range events {
		if !ev.HasGeo {
			continue
		}
		total++
		if haversineKm(a.Latitude, a.Longitude, ev.Latitude, ev.Longitude) <= radius {
			matches++
		}
	}
	if total == 0 {
		return MaxScore, nil
	}
	return clamp(1 - float64(matches)/float64(total)), nil
}

const earthRadiusKm = 6371.0

// haversineKm calcula la distancia ortodrómica entre dos coordenadas.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

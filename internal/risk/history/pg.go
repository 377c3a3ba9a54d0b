package history

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PG implementa Store sobre postgres. El esquema vive en
// migrations/postgres (tabla login_events).
type PG struct {
	pool *pgxpool.Pool
}

func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

func (s *PG) Events(ctx context.Context, principalID string, window time.Duration) ([]LoginEvent, error) {
	const q = `
		SELECT principal_id, ip, user_agent, latitude, longitude, at
		FROM login_events
		WHERE principal_id = $1 AND at >= $2
		ORDER BY at DESC
		LIMIT 1000`

	cutoff := time.Now().UTC().Add(-window)
	rows, err := s.pool.Query(ctx, q, principalID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LoginEvent
	for rows.Next() {
		var ev LoginEvent
		var lat, lon *float64
		if err := rows.Scan(&ev.PrincipalID, &ev.IP, &ev.UserAgent, &lat, &lon, &ev.At); err != nil {
			return nil, err
		}
		if lat != nil && lon != nil {
			ev.Latitude, ev.Longitude, ev.HasGeo = *lat, *lon, true
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *PG) Record(ctx context.Context, ev LoginEvent) error {
	const q = `
		INSERT INTO login_events (principal_id, ip, user_agent, latitude, longitude, at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	var lat, lon *float64
	if ev.HasGeo {
		lat, lon = &ev.Latitude, &ev.Longitude
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, q, ev.PrincipalID, ev.IP, ev.UserAgent, lat, lon, at)
	return err
}

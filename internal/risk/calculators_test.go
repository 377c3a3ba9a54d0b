package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dropDatabas3/gatejohn/internal/authn"
	"github.com/dropDatabas3/gatejohn/internal/risk/history"
)

var bob = authn.Principal{ID: "bob"}

func seeded(t *testing.T, events ...history.LoginEvent) *history.Memory {
	t.Helper()
	mem := history.NewMemory()
	for _, ev := range events {
		ev.PrincipalID = "bob"
		if ev.At.IsZero() {
			ev.At = time.Now().UTC().Add(-time.Hour)
		}
		if err := mem.Record(context.Background(), ev); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return mem
}

func TestIPAddress_NewPrincipalIsMaxRisk(t *testing.T) {
	c := IPAddress{History: history.NewMemory()}
	got, err := c.Score(context.Background(), bob, Attempt{IP: "203.0.113.5"})
	if err != nil || !almostEqual(got, MaxScore) {
		t.Fatalf("empty history: got (%v, %v), want MaxScore", got, err)
	}
}

func TestIPAddress_SameBlockScoresLow(t *testing.T) {
	// Tres logins del mismo /16, el intento también.
	c := IPAddress{History: seeded(t,
		history.LoginEvent{IP: "203.0.113.5"},
		history.LoginEvent{IP: "203.0.200.9"},
		history.LoginEvent{IP: "203.0.1.1"},
	)}
	got, err := c.Score(context.Background(), bob, Attempt{IP: "203.0.42.42"})
	if err != nil || !almostEqual(got, 0) {
		t.Fatalf("same /16: got (%v, %v), want 0", got, err)
	}

	// Un intento desde otra red entera.
	got, _ = c.Score(context.Background(), bob, Attempt{IP: "198.51.100.1"})
	if !almostEqual(got, MaxScore) {
		t.Fatalf("foreign block: got %v, want MaxScore", got)
	}
}

func TestIPAddress_UnparseableIP(t *testing.T) {
	c := IPAddress{History: seeded(t, history.LoginEvent{IP: "203.0.113.5"})}
	got, err := c.Score(context.Background(), bob, Attempt{IP: "not-an-ip"})
	if err != nil || !almostEqual(got, MaxScore) {
		t.Fatalf("bad ip: got (%v, %v), want MaxScore", got, err)
	}
}

func TestUserAgent_MatchRatio(t *testing.T) {
	c := UserAgent{History: seeded(t,
		history.LoginEvent{UserAgent: "firefox"},
		history.LoginEvent{UserAgent: "firefox"},
		history.LoginEvent{UserAgent: "curl"},
		history.LoginEvent{UserAgent: "curl"},
	)}
	got, err := c.Score(context.Background(), bob, Attempt{UserAgent: "firefox"})
	if err != nil || !almostEqual(got, 0.5) {
		t.Fatalf("half match: got (%v, %v), want 0.5", got, err)
	}
	got, _ = c.Score(context.Background(), bob, Attempt{UserAgent: "safari"})
	if !almostEqual(got, MaxScore) {
		t.Fatalf("never seen: got %v, want MaxScore", got)
	}
}

func TestTimeOfDay_Band(t *testing.T) {
	now := time.Now().UTC()
	inBand := now.Add(-time.Hour)
	outOfBand := now.Add(-11 * time.Hour)

	c := TimeOfDay{History: seeded(t,
		history.LoginEvent{At: inBand},
		history.LoginEvent{At: outOfBand},
	)}
	got, err := c.Score(context.Background(), bob, Attempt{At: now})
	if err != nil || !almostEqual(got, 0.5) {
		t.Fatalf("one of two in band: got (%v, %v), want 0.5", got, err)
	}
}

func TestHourDistance_IsCircular(t *testing.T) {
	if d := hourDistance(23, 1); d != 2 {
		t.Fatalf("23 vs 1: got %d, want 2", d)
	}
	if d := hourDistance(0, 12); d != 12 {
		t.Fatalf("0 vs 12: got %d, want 12", d)
	}
}

func TestGeolocation(t *testing.T) {
	// Madrid vs Barcelona ~500km; Madrid vs Getafe ~13km.
	madrid := history.LoginEvent{Latitude: 40.4168, Longitude: -3.7038, HasGeo: true}
	noGeo := history.LoginEvent{}

	c := Geolocation{History: seeded(t, madrid, noGeo)}

	// Intento desde Getafe: dentro del radio del único evento con geo.
	got, err := c.Score(context.Background(), bob, Attempt{Latitude: 40.3057, Longitude: -3.7327, HasGeo: true})
	if err != nil || !almostEqual(got, 0) {
		t.Fatalf("nearby: got (%v, %v), want 0", got, err)
	}

	// Intento desde Barcelona: fuera del radio.
	got, _ = c.Score(context.Background(), bob, Attempt{Latitude: 41.3874, Longitude: 2.1686, HasGeo: true})
	if !almostEqual(got, MaxScore) {
		t.Fatalf("far away: got %v, want MaxScore", got)
	}

	// Sin geo en el intento: penalidad de ubicación desconocida.
	got, _ = c.Score(context.Background(), bob, Attempt{})
	if !almostEqual(got, MaxScore) {
		t.Fatalf("no attempt geo: got %v, want MaxScore", got)
	}
}

func TestGeolocation_NoHistoricalGeo(t *testing.T) {
	c := Geolocation{History: seeded(t, history.LoginEvent{IP: "203.0.113.5"})}
	got, err := c.Score(context.Background(), bob, Attempt{Latitude: 1, Longitude: 1, HasGeo: true})
	if err != nil || !almostEqual(got, MaxScore) {
		t.Fatalf("no geo in history: got (%v, %v), want MaxScore", got, err)
	}
}

// failingStore simula un history store caído.
type failingStore struct{}

func (failingStore) Events(context.Context, string, time.Duration) ([]history.LoginEvent, error) {
	return nil, errors.New("connection refused")
}

func TestEvaluator_FailedCalculatorSubstitutesMaxRisk(t *testing.T) {
	calcs := []Calculator{
		IPAddress{History: failingStore{}},
		UserAgent{History: seeded(t,
			history.LoginEvent{UserAgent: "firefox"},
		)},
	}
	agg, _ := NewAggregator(StrategyMean, nil)
	ev, err := NewEvaluator(calcs, agg, 0.5)
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}

	as, err := ev.Evaluate(context.Background(), bob, Attempt{IP: "203.0.113.5", UserAgent: "firefox"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !almostEqual(as.PerCalculator["ip_address"], MaxScore) {
		t.Fatalf("failed calculator must contribute MaxScore, got %v", as.PerCalculator["ip_address"])
	}
	if !almostEqual(as.PerCalculator["user_agent"], 0) {
		t.Fatalf("healthy calculator: got %v, want 0", as.PerCalculator["user_agent"])
	}
	// mean(1.0, 0.0) = 0.5 >= 0.5 => dispara.
	if !as.Triggered {
		t.Fatalf("aggregate at threshold must trigger (inclusive)")
	}
	if as.ID == "" || as.PrincipalID != "bob" {
		t.Fatalf("assessment identity missing: %+v", as)
	}
}

func TestEvaluator_ThresholdValidation(t *testing.T) {
	if _, err := NewEvaluator(nil, nil, 1.5); err == nil {
		t.Fatalf("threshold > 1 must be rejected")
	}
	if _, err := NewEvaluator(nil, nil, -0.1); err == nil {
		t.Fatalf("negative threshold must be rejected")
	}
}

func TestEvaluator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg, _ := NewAggregator(StrategyMean, nil)
	ev, _ := NewEvaluator([]Calculator{IPAddress{History: history.NewMemory()}}, agg, 0.5)
	if _, err := ev.Evaluate(ctx, bob, Attempt{}); err == nil {
		t.Fatalf("expected context cancellation error")
	}
}

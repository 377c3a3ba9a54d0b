package expiration

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestTimeout_Boundary(t *testing.T) {
	p := Timeout{TTL: 5 * time.Minute}
	s := Snapshot{CreatedAt: t0}

	if p.Expired(s, t0.Add(5*time.Minute-time.Second)) {
		t.Fatalf("expected valid 1s before ttl")
	}
	if !p.Expired(s, t0.Add(5*time.Minute+time.Second)) {
		t.Fatalf("expected expired 1s after ttl")
	}
}

func TestIdle_SlidesOnUse(t *testing.T) {
	p := Idle{Window: 10 * time.Minute}

	// Sin usos: la ventana corre desde la creación.
	s := Snapshot{CreatedAt: t0}
	if !p.Expired(s, t0.Add(11*time.Minute)) {
		t.Fatalf("expected expired after idle window from creation")
	}

	// Un uso reciente corre la ventana.
	s.LastUsedAt = t0.Add(8 * time.Minute)
	s.UseCount = 1
	if p.Expired(s, t0.Add(11*time.Minute)) {
		t.Fatalf("expected valid: last use reset the window")
	}
}

func TestThrottled(t *testing.T) {
	p := Throttled{MinInterval: 5 * time.Second}

	// Nunca usado: no hay nada que throttlear.
	if p.Expired(Snapshot{CreatedAt: t0}, t0.Add(time.Second)) {
		t.Fatalf("unused ticket must not be throttled")
	}

	s := Snapshot{CreatedAt: t0, LastUsedAt: t0.Add(time.Minute), UseCount: 1}
	if !p.Expired(s, t0.Add(time.Minute+2*time.Second)) {
		t.Fatalf("expected throttle violation within min interval")
	}
	if p.Expired(s, t0.Add(time.Minute+10*time.Second)) {
		t.Fatalf("expected valid after min interval")
	}
}

func TestUses(t *testing.T) {
	p := Uses{Max: 1}
	if p.Expired(Snapshot{UseCount: 0}, t0) {
		t.Fatalf("fresh ticket must be valid")
	}
	if !p.Expired(Snapshot{UseCount: 1}, t0) {
		t.Fatalf("single-use ticket must expire after one use")
	}
}

func TestComposites(t *testing.T) {
	hard := Timeout{TTL: time.Hour}
	idle := Idle{Window: 10 * time.Minute}
	s := Snapshot{CreatedAt: t0}

	// OR: idle dispara aunque la vida dura no haya pasado.
	or := AnyOf{hard, idle}
	if !or.Expired(s, t0.Add(30*time.Minute)) {
		t.Fatalf("AnyOf: idle branch should trigger")
	}

	// AND: necesita ambas.
	and := AllOf{hard, idle}
	if and.Expired(s, t0.Add(30*time.Minute)) {
		t.Fatalf("AllOf: hard timeout not reached yet")
	}
	if !and.Expired(s, t0.Add(2*time.Hour)) {
		t.Fatalf("AllOf: both branches expired")
	}

	// AllOf vacío nunca expira.
	if (AllOf{}).Expired(s, t0.Add(100*time.Hour)) {
		t.Fatalf("empty AllOf must never expire")
	}
}

func TestTicketGranting_CombinesHardAndIdle(t *testing.T) {
	p := TicketGranting(8*time.Hour, 2*time.Hour)

	s := Snapshot{CreatedAt: t0, LastUsedAt: t0.Add(7 * time.Hour), UseCount: 3}
	// Vida dura vencida aunque hubo actividad reciente.
	if !p.Expired(s, t0.Add(8*time.Hour+time.Minute)) {
		t.Fatalf("hard max life must win over recent activity")
	}
	// Inactividad vencida dentro de la vida dura.
	s2 := Snapshot{CreatedAt: t0, LastUsedAt: t0.Add(time.Hour), UseCount: 1}
	if !p.Expired(s2, t0.Add(4*time.Hour)) {
		t.Fatalf("idle window must trigger within max life")
	}
}

func TestSpec_RoundTrip(t *testing.T) {
	orig := AnyOf{
		Timeout{TTL: time.Hour},
		AllOf{Idle{Window: time.Minute}, Uses{Max: 3}},
		Throttled{MinInterval: 2 * time.Second},
	}
	spec, err := SpecOf(orig)
	if err != nil {
		t.Fatalf("SpecOf: %v", err)
	}
	rebuilt, err := spec.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Mismo comportamiento en algunos puntos representativos.
	cases := []Snapshot{
		{CreatedAt: t0},
		{CreatedAt: t0, LastUsedAt: t0.Add(30 * time.Minute), UseCount: 3},
		{CreatedAt: t0.Add(-2 * time.Hour)},
	}
	for i, s := range cases {
		for _, at := range []time.Time{t0, t0.Add(30 * time.Minute), t0.Add(2 * time.Hour)} {
			if orig.Expired(s, at) != rebuilt.Expired(s, at) {
				t.Fatalf("case %d: behavior diverged after round trip", i)
			}
		}
	}
}

func TestSpec_UnknownKind(t *testing.T) {
	if _, err := (Spec{Kind: "bogus"}).Build(); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

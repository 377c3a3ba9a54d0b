package mfa

import (
	"errors"
	"testing"

	"github.com/dropDatabas3/gatejohn/internal/authn"
)

func alice(attrs map[string][]string) authn.Principal {
	return authn.Principal{ID: "alice", Attributes: attrs}
}

func mustProvider(t *testing.T, id string, order int, pattern string) Provider {
	t.Helper()
	p, err := NewProvider(id, order, pattern)
	if err != nil {
		t.Fatalf("provider %s: %v", id, err)
	}
	return p
}

func TestResolve_NoTriggersMeansNoMFA(t *testing.T) {
	r, err := NewResolver(ResolverConfig{})
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	p := alice(map[string][]string{"phone": {"+15550001111"}})
	prov := mustProvider(t, "sms-otp", 1, `^\+1`)

	if id, ok := r.Resolve(p, "svc", []Provider{prov}); ok {
		t.Fatalf("no triggers configured, got provider %q", id)
	}
}

func TestResolve_NoProvidersMeansNoMFA(t *testing.T) {
	r, _ := NewResolver(ResolverConfig{TriggerAttributes: []string{"phone"}})
	p := alice(map[string][]string{"phone": {"+15550001111"}})

	if id, ok := r.Resolve(p, "svc", nil); ok {
		t.Fatalf("no providers available, got %q", id)
	}
}

func TestResolve_SingleProviderGlobalPattern(t *testing.T) {
	r, err := NewResolver(ResolverConfig{
		TriggerAttributes: []string{"phone"},
		GlobalPattern:     `^\+1555`,
	})
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	// El pattern propio del provider NO matchea; con provider único manda
	// el pattern global.
	only := mustProvider(t, "sms-otp", 1, `^nunca$`)

	p := alice(map[string][]string{"phone": {"+15550001111"}})
	id, ok := r.Resolve(p, "svc", []Provider{only})
	if !ok || id != "sms-otp" {
		t.Fatalf("global fast path: got (%q, %v)", id, ok)
	}

	// Valor que no matchea el global => sin MFA.
	p2 := alice(map[string][]string{"phone": {"+440000"}})
	if id, ok := r.Resolve(p2, "svc", []Provider{only}); ok {
		t.Fatalf("expected no MFA for non-matching value, got %q", id)
	}
}

func TestResolve_MultiProviderPerValuePatterns(t *testing.T) {
	r, _ := NewResolver(ResolverConfig{TriggerAttributes: []string{"phone"}})
	sms := mustProvider(t, "sms-otp", 1, `^\+1`)
	push := mustProvider(t, "push", 2, `^\+44`)

	// Solo el segundo provider matchea.
	p := alice(map[string][]string{"phone": {"+440000"}})
	id, ok := r.Resolve(p, "svc", []Provider{sms, push})
	if !ok || id != "push" {
		t.Fatalf("expected push, got (%q, %v)", id, ok)
	}
}

func TestResolve_BothMatchLowestOrderWins(t *testing.T) {
	r, _ := NewResolver(ResolverConfig{TriggerAttributes: []string{"phone"}})
	sms := mustProvider(t, "sms-otp", 1, `^\+1`)
	push := mustProvider(t, "push", 2, `^\+1`)

	p := alice(map[string][]string{"phone": {"+15550001111"}})

	// El orden en que se pasan no importa: Flatten ordena por Order.
	for _, set := range [][]Provider{{sms, push}, {push, sms}} {
		id, ok := r.Resolve(p, "svc", set)
		if !ok || id != "sms-otp" {
			t.Fatalf("expected lowest order to win, got (%q, %v)", id, ok)
		}
	}
}

func TestResolve_MissingAttributeFailsOpen(t *testing.T) {
	r, _ := NewResolver(ResolverConfig{TriggerAttributes: []string{"phone"}})
	sms := mustProvider(t, "sms-otp", 1, `.`)

	p := alice(map[string][]string{"mail": {"alice@example.com"}})
	if id, ok := r.Resolve(p, "svc", []Provider{sms}); ok {
		t.Fatalf("missing trigger attribute must fail open, got %q", id)
	}
}

func TestNewResolver_InvalidGlobalPattern(t *testing.T) {
	if _, err := NewResolver(ResolverConfig{GlobalPattern: "("}); !errors.Is(err, ErrInvalidProviderConfig) {
		t.Fatalf("expected ErrInvalidProviderConfig, got %v", err)
	}
}

func TestNewProvider_InvalidPattern(t *testing.T) {
	if _, err := NewProvider("sms-otp", 1, "("); !errors.Is(err, ErrInvalidProviderConfig) {
		t.Fatalf("expected ErrInvalidProviderConfig, got %v", err)
	}
	if _, err := NewProvider("", 1, ""); !errors.Is(err, ErrInvalidProviderConfig) {
		t.Fatalf("empty id: got %v", err)
	}
}

func TestFlatten_DedupesAndOrders(t *testing.T) {
	a := mustProvider(t, "a", 3, "")
	b := mustProvider(t, "b", 1, "")
	aDup := mustProvider(t, "a", 99, "")

	out := Flatten([]Provider{a, b, aDup})
	if len(out) != 2 {
		t.Fatalf("expected dedup to 2, got %d", len(out))
	}
	if out[0].ID != "b" || out[1].ID != "a" {
		t.Fatalf("wrong order: %s, %s", out[0].ID, out[1].ID)
	}
	if out[1].Order != 3 {
		t.Fatalf("first registration must win the dedup, got order %d", out[1].Order)
	}
}

func TestRegistry_SkipsInvalidDefs(t *testing.T) {
	reg := NewRegistry(
		ProviderDef{ID: "sms-otp", Order: 1, ValuePattern: `^\+1`},
		ProviderDef{ID: "broken", Order: 2, ValuePattern: "("},
	)
	got := reg.Available()
	if len(got) != 1 || got[0].ID != "sms-otp" {
		t.Fatalf("invalid def must be skipped, got %v", got)
	}
}

func TestStepUp_LowestOrder(t *testing.T) {
	if _, ok := StepUp(nil); ok {
		t.Fatalf("no providers: step-up must not resolve")
	}
	sms := mustProvider(t, "sms-otp", 2, "")
	totp := mustProvider(t, "totp", 1, "")
	id, ok := StepUp([]Provider{sms, totp})
	if !ok || id != "totp" {
		t.Fatalf("expected totp, got (%q, %v)", id, ok)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Addr != ":8085" {
		t.Fatalf("default addr: %q", c.Server.Addr)
	}
	if c.Tickets.TGTMaxLife != "8h" || c.Tickets.TGTIdle != "2h" {
		t.Fatalf("default tgt policy: %q %q", c.Tickets.TGTMaxLife, c.Tickets.TGTIdle)
	}
	if c.Tickets.STTTL != "10s" || c.Tickets.STMaxUses != 1 {
		t.Fatalf("default st policy: %q %d", c.Tickets.STTTL, c.Tickets.STMaxUses)
	}
	if c.Registry.Kind != "memory" || c.Risk.History.Kind != "memory" {
		t.Fatalf("default backends: %q %q", c.Registry.Kind, c.Risk.History.Kind)
	}
	if c.Risk.Threshold != 0.5 || c.Risk.Aggregation != "mean" {
		t.Fatalf("default risk: %v %q", c.Risk.Threshold, c.Risk.Aggregation)
	}
	if len(c.Risk.Calculators) != 4 {
		t.Fatalf("default calculators: %v", c.Risk.Calculators)
	}
}

func TestLoad_YAMLAndOverrides(t *testing.T) {
	path := writeYAML(t, `
server:
  addr: ":9999"
mfa:
  trigger_attributes: [phone]
  providers:
    - id: sms-otp
      order: 1
      value_pattern: "^\\+1"
risk:
  threshold: 0.7
  aggregation: max
`)
	t.Setenv("RISK_THRESHOLD", "0.9")
	t.Setenv("MFA_TRIGGER_ATTRIBUTES", "phone,mail")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Addr != ":9999" {
		t.Fatalf("yaml addr lost: %q", c.Server.Addr)
	}
	// El env pisa al YAML.
	if c.Risk.Threshold != 0.9 {
		t.Fatalf("env override lost: %v", c.Risk.Threshold)
	}
	if len(c.MFA.TriggerAttributes) != 2 || c.MFA.TriggerAttributes[1] != "mail" {
		t.Fatalf("csv override: %v", c.MFA.TriggerAttributes)
	}
	if len(c.MFA.Providers) != 1 || c.MFA.Providers[0].ID != "sms-otp" {
		t.Fatalf("providers lost: %v", c.MFA.Providers)
	}
	if c.Risk.Aggregation != "max" {
		t.Fatalf("aggregation lost: %q", c.Risk.Aggregation)
	}
}

func TestLoad_ZeroThresholdSurvives(t *testing.T) {
	// threshold: 0 es "siempre dispara"; no debe ser pisado por el default.
	c, err := Load(writeYAML(t, "risk:\n  threshold: 0\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Risk.Threshold != 0 {
		t.Fatalf("explicit zero threshold rewritten to %v", c.Risk.Threshold)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad threshold", "risk:\n  threshold: 1.5\n"},
		{"bad aggregation", "risk:\n  aggregation: median\n"},
		{"bad duration", "tickets:\n  tgt_max_life: ocho-horas\n"},
		{"redis without addr", "registry:\n  kind: redis\n"},
		{"postgres without dsn", "risk:\n  history:\n    kind: postgres\n"},
		{"unknown registry kind", "registry:\n  kind: etcd\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeYAML(t, tc.yaml)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestDur(t *testing.T) {
	if Dur("90m") != 90*time.Minute {
		t.Fatalf("Dur broken")
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Tickets struct {
		// TGT: vida máxima dura + ventana de inactividad (OR).
		TGTMaxLife string `yaml:"tgt_max_life"`
		TGTIdle    string `yaml:"tgt_idle"`
		// ST: TTL corto + usos máximos.
		STTTL     string `yaml:"st_ttl"`
		STMaxUses int    `yaml:"st_max_uses"`
	} `yaml:"tickets"`

	Registry struct {
		Kind string `yaml:"kind"` // memory | redis
		// EvictAfter acota la vida de la entrada en el backend; debe
		// superar el TTL de política más largo.
		EvictAfter string `yaml:"evict_after"`
		Redis      struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
			Sealed bool   `yaml:"sealed"`
		} `yaml:"redis"`
	} `yaml:"registry"`

	MFA struct {
		// TriggerAttributes: nombres de atributo a inspeccionar, en orden.
		TriggerAttributes []string `yaml:"trigger_attributes"`
		// GlobalPattern: fast path de provider único.
		GlobalPattern string `yaml:"global_pattern"`
		Providers     []struct {
			ID           string `yaml:"id"`
			Order        int    `yaml:"order"`
			ValuePattern string `yaml:"value_pattern"`
		} `yaml:"providers"`
	} `yaml:"mfa"`

	Risk struct {
		Threshold   float64            `yaml:"threshold"`
		Aggregation string             `yaml:"aggregation"` // mean | max | weighted
		Weights     map[string]float64 `yaml:"weights"`
		// Calculators habilitados: time_of_day | geolocation | ip_address | user_agent
		Calculators []string `yaml:"calculators"`
		// Window del historial consultado.
		HistoryWindow string `yaml:"history_window"`

		History struct {
			Kind     string `yaml:"kind"` // memory | postgres
			Postgres struct {
				DSN string `yaml:"dsn"`
			} `yaml:"postgres"`
		} `yaml:"history"`

		Notify struct {
			Kind string `yaml:"kind"` // log | mail
			Mail struct {
				Host          string `yaml:"host"`
				Port          int    `yaml:"port"`
				From          string `yaml:"from"`
				User          string `yaml:"user"`
				Pass          string `yaml:"pass"`
				TLS           string `yaml:"tls"` // auto | starttls | ssl | none
				AttributeName string `yaml:"attribute_name"`
				Subject       string `yaml:"subject"`
				VerifyURL     string `yaml:"verify_url"`
			} `yaml:"mail"`
			// VerifySecret firma el token de confirmación del aviso.
			VerifySecret string `yaml:"verify_secret"`
			VerifyTTL    string `yaml:"verify_ttl"`
		} `yaml:"notify"`
	} `yaml:"risk"`
}

// Load lee el YAML, aplica defaults y overrides por env, y valida.
func Load(path string) (*Config, error) {
	var c Config
	// Centinela pre-unmarshal: 0 es un umbral válido ("siempre dispara"),
	// así que la ausencia se detecta con -1, no con el zero value.
	c.Risk.Threshold = -1
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8085"
	}
	if c.Tickets.TGTMaxLife == "" {
		c.Tickets.TGTMaxLife = "8h"
	}
	if c.Tickets.TGTIdle == "" {
		c.Tickets.TGTIdle = "2h"
	}
	if c.Tickets.STTTL == "" {
		c.Tickets.STTTL = "10s"
	}
	if c.Tickets.STMaxUses == 0 {
		c.Tickets.STMaxUses = 1
	}
	if c.Registry.Kind == "" {
		c.Registry.Kind = "memory"
	}
	if c.Registry.EvictAfter == "" {
		c.Registry.EvictAfter = "12h"
	}
	if c.Registry.Redis.Prefix == "" {
		c.Registry.Redis.Prefix = "gj:ticket:"
	}
	if c.Risk.Threshold == -1 {
		c.Risk.Threshold = 0.5
	}
	if c.Risk.Aggregation == "" {
		c.Risk.Aggregation = "mean"
	}
	if len(c.Risk.Calculators) == 0 {
		c.Risk.Calculators = []string{"time_of_day", "geolocation", "ip_address", "user_agent"}
	}
	if c.Risk.HistoryWindow == "" {
		c.Risk.HistoryWindow = "720h" // 30d
	}
	if c.Risk.History.Kind == "" {
		c.Risk.History.Kind = "memory"
	}
	if c.Risk.Notify.Kind == "" {
		c.Risk.Notify.Kind = "log"
	}
	if c.Risk.Notify.Mail.TLS == "" {
		c.Risk.Notify.Mail.TLS = "auto"
	}
	if c.Risk.Notify.VerifyTTL == "" {
		c.Risk.Notify.VerifyTTL = "30m"
	}

	// validate string durations
	for _, d := range []string{
		c.Tickets.TGTMaxLife, c.Tickets.TGTIdle, c.Tickets.STTTL,
		c.Registry.EvictAfter, c.Risk.HistoryWindow, c.Risk.Notify.VerifyTTL,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return nil, err
		}
	}

	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate chequea rangos y combinaciones inválidas de configuración.
func (c *Config) Validate() error {
	if c.Risk.Threshold < 0 || c.Risk.Threshold > 1 {
		return fmt.Errorf("config: risk.threshold %v out of [0,1]", c.Risk.Threshold)
	}
	switch c.Risk.Aggregation {
	case "mean", "max", "weighted":
	default:
		return fmt.Errorf("config: unknown risk.aggregation %q", c.Risk.Aggregation)
	}
	switch c.Registry.Kind {
	case "memory":
	case "redis":
		if c.Registry.Redis.Addr == "" {
			return fmt.Errorf("config: registry.redis.addr required for kind=redis")
		}
	default:
		return fmt.Errorf("config: unknown registry.kind %q", c.Registry.Kind)
	}
	switch c.Risk.History.Kind {
	case "memory":
	case "postgres":
		if c.Risk.History.Postgres.DSN == "" {
			return fmt.Errorf("config: risk.history.postgres.dsn required for kind=postgres")
		}
	default:
		return fmt.Errorf("config: unknown risk.history.kind %q", c.Risk.History.Kind)
	}
	return nil
}

// Dur parsea una duración ya validada en Load.
func Dur(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvFloat(key string) (float64, bool) {
	if s, ok := getEnvStr(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		if strings.TrimSpace(s) == "" {
			return []string{}, true
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("REGISTRY_KIND"); ok {
		c.Registry.Kind = v
	}
	if v, ok := getEnvStr("REGISTRY_REDIS_ADDR"); ok {
		c.Registry.Redis.Addr = v
	}
	if v, ok := getEnvInt("REGISTRY_REDIS_DB"); ok {
		c.Registry.Redis.DB = v
	}
	if v, ok := getEnvCSV("MFA_TRIGGER_ATTRIBUTES"); ok {
		c.MFA.TriggerAttributes = v
	}
	if v, ok := getEnvStr("MFA_GLOBAL_PATTERN"); ok {
		c.MFA.GlobalPattern = v
	}
	if v, ok := getEnvFloat("RISK_THRESHOLD"); ok {
		c.Risk.Threshold = v
	}
	if v, ok := getEnvStr("RISK_AGGREGATION"); ok {
		c.Risk.Aggregation = v
	}
	if v, ok := getEnvStr("RISK_HISTORY_PG_DSN"); ok {
		c.Risk.History.Postgres.DSN = v
		c.Risk.History.Kind = "postgres"
	}
	if v, ok := getEnvStr("RISK_NOTIFY_VERIFY_SECRET"); ok {
		c.Risk.Notify.VerifySecret = v
	}
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.Risk.Notify.Mail.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.Risk.Notify.Mail.Port = v
	}
	if v, ok := getEnvStr("SMTP_USER"); ok {
		c.Risk.Notify.Mail.User = v
	}
	if v, ok := getEnvStr("SMTP_PASS"); ok {
		c.Risk.Notify.Mail.Pass = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.Risk.Notify.Mail.From = v
	}
}

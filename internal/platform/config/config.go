package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process-level configuration. The admin principal is fixed
// here at initialization and has no mutation path; changing it requires a
// restart.
type Server struct {
	Addr           string        `env:"CASELEDGER_ADDR" envDefault:":8080"`
	AdminPrincipal string        `env:"CASELEDGER_ADMIN"`
	JWTSigningKey  string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	PostgresDSN    string        `env:"POSTGRES_DSN"`
	RedisURL       string        `env:"REDIS_URL"`
	KafkaBrokers   []string      `env:"KAFKA_BROKERS"`
	AuditTopic     string        `env:"AUDIT_TOPIC" envDefault:"caseledger.audit.events"`
	AccessCacheTTL time.Duration `env:"ACCESS_CACHE_TTL" envDefault:"5m"`
}

// FromEnv builds a Server config from environment variables so main stays
// lean. An empty PostgresDSN selects the in-memory stores; empty RedisURL and
// KafkaBrokers disable the access cache and audit stream respectively.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.AdminPrincipal == "" {
		return Server{}, fmt.Errorf("CASELEDGER_ADMIN must be set")
	}
	return cfg, nil
}

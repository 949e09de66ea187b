// Package config builds service configuration from environment variables so
// main stays lean.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures everything the server needs at startup.
type Config struct {
	Addr     string `env:"GATEPASS_ADDR" envDefault:":8080"`
	LogLevel string `env:"GATEPASS_LOG_LEVEL" envDefault:"info"`

	// JWTSigningKey signs and verifies staff tokens for admin endpoints.
	// The default exists for development only.
	JWTSigningKey string `env:"GATEPASS_JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`

	// PostgresURL enables the Postgres-backed stores. Empty runs on memory
	// stores (development and tests).
	PostgresURL string `env:"GATEPASS_POSTGRES_URL"`

	// RedisURL enables the Redis-backed kiosk settings store.
	RedisURL string `env:"GATEPASS_REDIS_URL"`

	// KafkaBrokers enables the Kafka audit sink. Empty keeps audit events
	// in the in-process store.
	KafkaBrokers []string `env:"GATEPASS_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"GATEPASS_KAFKA_TOPIC" envDefault:"gatepass.access-events"`

	// DispatchURL is the notification collaborator's webhook. Empty wires
	// the no-op dispatcher.
	DispatchURL     string        `env:"GATEPASS_DISPATCH_URL"`
	DispatchTimeout time.Duration `env:"GATEPASS_DISPATCH_TIMEOUT" envDefault:"5s"`

	// AccessBaseURL prefixes credential access links sent to attendees.
	AccessBaseURL string `env:"GATEPASS_ACCESS_BASE_URL" envDefault:"https://badge.example.com/b"`

	// KioskSettingsTTL bounds how stale a kiosk's cached zone/mode
	// configuration may be.
	KioskSettingsTTL time.Duration `env:"GATEPASS_KIOSK_SETTINGS_TTL" envDefault:"1m"`
}

// FromEnv parses the environment into a Config.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config from env: %w", err)
	}
	return cfg, nil
}

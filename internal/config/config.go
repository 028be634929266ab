// Package config holds the shared runtime configuration: listen address,
// storage/broker endpoints, and the bookkeeping policy (allowed companies,
// entry-clerk whitelist) consulted by validation across every endpoint.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCompanies is the enumerated set of mobile-money companies an entry
// or account may reference.
var DefaultCompanies = []string{
	"Bkash Personal",
	"Bkash Agent",
	"Nagad Personal",
	"Nagad Agent",
	"Rocket Personal",
	"Rocket Agent",
	"Others",
}

// DefaultClerks is the entry-clerk whitelist used when no override is
// configured.
var DefaultClerks = []string{"Rony", "Rajib"}

// Config is loaded once at startup and shared read-only across handlers and
// services.
type Config struct {
	Addr         string   `yaml:"addr"`
	DatabaseURL  string   `yaml:"database_url"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	JWTSecret    string   `yaml:"jwt_secret"`
	RequireAuth  bool     `yaml:"require_auth"`
	DevMode      bool     `yaml:"dev_mode"`
	Companies    []string `yaml:"companies"`
	Clerks       []string `yaml:"clerks"`
}

// Load builds the configuration from an optional YAML policy file
// (LEDGER_CONFIG) overlaid with environment variables. Environment wins.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:      ":8080",
		Companies: DefaultCompanies,
		Clerks:    DefaultClerks,
	}
	if path := strings.TrimSpace(os.Getenv("LEDGER_CONFIG")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if v := strings.TrimSpace(os.Getenv("ADDR")); v != "" {
		cfg.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		cfg.KafkaBrokers = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("JWT_SECRET")); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("LEDGER_CLERKS")); v != "" {
		cfg.Clerks = splitList(v)
	}
	cfg.RequireAuth = cfg.RequireAuth || boolEnv("LEDGER_REQUIRE_AUTH")
	cfg.DevMode = cfg.DevMode || boolEnv("DEV_MODE")
	if len(cfg.Companies) == 0 {
		cfg.Companies = DefaultCompanies
	}
	if len(cfg.Clerks) == 0 {
		cfg.Clerks = DefaultClerks
	}
	if cfg.RequireAuth && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("LEDGER_REQUIRE_AUTH is set but JWT_SECRET is empty")
	}
	return cfg, nil
}

// ValidCompany reports whether name (trimmed) is in the company enum.
func (c *Config) ValidCompany(name string) bool {
	name = strings.TrimSpace(name)
	for _, v := range c.Companies {
		if v == name {
			return true
		}
	}
	return false
}

// ValidClerk reports whether name (trimmed) is a whitelisted entry clerk.
func (c *Config) ValidClerk(name string) bool {
	name = strings.TrimSpace(name)
	for _, v := range c.Clerks {
		if v == name {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func boolEnv(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

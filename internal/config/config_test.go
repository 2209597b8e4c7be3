package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := writeConfig(t, `
server:
  port: 8080
database:
  driver: mongo
  mongo_uri: mongodb://db:27017
  timeout: 2s
jwt:
  secret: file-secret
  ttl: 1h
rate_limit:
  per_minute: 10
  burst: 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverMongo || cfg.Database.MongoURI != "mongodb://db:27017" {
		t.Fatalf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Database.Timeout != 2*time.Second {
		t.Fatalf("expected timeout 2s, got %s", cfg.Database.Timeout)
	}
	if cfg.JWT.Secret != "file-secret" || cfg.JWT.TTL != time.Hour {
		t.Fatalf("unexpected jwt config: %+v", cfg.JWT)
	}
	// defaults survive for unset keys
	if cfg.Database.MongoDB != "pet-adoption" {
		t.Fatalf("expected default mongo database, got %q", cfg.Database.MongoDB)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: file-secret\n")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/db")
	t.Setenv("DATABASE_DRIVER", "memory")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Fatalf("expected env secret, got %q", cfg.JWT.Secret)
	}
	if cfg.Database.DSN() != "postgres://u:p@h:5432/db" {
		t.Fatalf("expected DATABASE_URL to win, got %q", cfg.Database.DSN())
	}
	if cfg.Database.Driver != DriverMemory {
		t.Fatalf("expected memory driver, got %q", cfg.Database.Driver)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Fatalf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(c *Config) { c.JWT.Secret = "s" }, true},
		{"missing secret", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.JWT.Secret = "s"; c.Database.Driver = "sqlite" }, false},
		{"zero ttl", func(c *Config) { c.JWT.Secret = "s"; c.JWT.TTL = 0 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDSNFromFields(t *testing.T) {
	c := DatabaseConfig{Host: "h", Port: 1, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	want := "host=h port=1 user=u password=p dbname=d sslmode=disable"
	if got := c.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
}

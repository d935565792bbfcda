package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:         "4000",
		DataBackend:  "memory",
		JWTSecret:    "0123456789abcdef0123456789abcdef",
		TokenTTL:     7 * 24 * time.Hour,
		BcryptCost:   10,
		QueryTimeout: 5 * time.Second,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:   "valid memory backend config",
			mutate: func(c *Config) {},
		},
		{
			name: "valid sqlite backend config",
			mutate: func(c *Config) {
				c.DataBackend = "sqlite"
				c.SQLiteDBPath = "./test.db"
			},
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "mysql" },
			wantErr:     true,
			errorString: "invalid data backend 'mysql'",
		},
		{
			name: "postgres backend requires database URL",
			mutate: func(c *Config) {
				c.DataBackend = "postgres"
			},
			wantErr:     true,
			errorString: "DATABASE_URL is required",
		},
		{
			name: "postgres backend rejects wrong scheme",
			mutate: func(c *Config) {
				c.DataBackend = "postgres"
				c.DatabaseURL = "mysql://localhost/leofy"
			},
			wantErr:     true,
			errorString: "invalid database URL scheme",
		},
		{
			name:        "missing jwt secret",
			mutate:      func(c *Config) { c.JWTSecret = "" },
			wantErr:     true,
			errorString: "JWT_SECRET must be set",
		},
		{
			name:        "short jwt secret",
			mutate:      func(c *Config) { c.JWTSecret = "short" },
			wantErr:     true,
			errorString: "at least 16 characters",
		},
		{
			name:        "token ttl too small",
			mutate:      func(c *Config) { c.TokenTTL = time.Second },
			wantErr:     true,
			errorString: "must be at least 1 minute",
		},
		{
			name:        "bcrypt cost too low",
			mutate:      func(c *Config) { c.BcryptCost = 4 },
			wantErr:     true,
			errorString: "invalid bcrypt cost 4",
		},
		{
			name:        "invalid amqp scheme",
			mutate:      func(c *Config) { c.AMQPURL = "http://localhost:5672/" },
			wantErr:     true,
			errorString: "invalid AMQP URL scheme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Fatalf("error %q does not contain %q", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "4000" {
		t.Fatalf("default port: got %s", cfg.Port)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("default token TTL: got %v", cfg.TokenTTL)
	}
	if cfg.DataBackend != "sqlite" {
		t.Fatalf("default backend: got %s", cfg.DataBackend)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("default CORS origins: got %v", cfg.CORSAllowedOrigins)
	}
}

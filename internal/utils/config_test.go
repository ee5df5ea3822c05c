package utils

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}

	if cfg.Server.Port != "5002" {
		t.Fatalf("expected default port 5002, got %s", cfg.Server.Port)
	}
	if cfg.SessionBackend != SessionBackendPostgres {
		t.Fatalf("expected postgres session backend, got %s", cfg.SessionBackend)
	}
	if cfg.Server.MaxBodyBytes != 50<<20 {
		t.Fatalf("expected 50MiB body limit, got %d", cfg.Server.MaxBodyBytes)
	}
	if len(cfg.AllowedOrigins) != 3 {
		t.Fatalf("expected 3 default origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("SESSION_BACKEND", " Mongo ")
	t.Setenv("LLM_BACKEND_URL", "https://llm.example.com/")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_DB", "shop")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}

	if cfg.SessionBackend != SessionBackendMongo {
		t.Fatalf("expected mongo backend, got %q", cfg.SessionBackend)
	}
	if cfg.LLM.BackendURL != "https://llm.example.com" || cfg.LLM.Timeout != 5*time.Second {
		t.Fatalf("unexpected llm config %+v", cfg.LLM)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if dsn := cfg.Postgres.BuildDSN(); dsn != "postgres://postgres:postgres@db:5432/shop" {
		t.Fatalf("unexpected dsn %s", dsn)
	}
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "sqlite")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected unsupported backend error")
	}
}

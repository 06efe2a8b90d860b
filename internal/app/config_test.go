package app

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:4010" {
		t.Fatalf("addr: want=0.0.0.0:4010 got=%s", cfg.Addr())
	}
	if cfg.StoreDriver != StoreDriverMemory {
		t.Fatalf("store driver: want=memory got=%s", cfg.StoreDriver)
	}
	if cfg.RuntimeCacheTTL != 30*time.Second {
		t.Fatalf("runtime cache ttl: want=30s got=%s", cfg.RuntimeCacheTTL)
	}
	if !cfg.MetricsEnabled || cfg.OTelEnabled || cfg.ReleaseRequireValidContent {
		t.Fatalf("flags: got=%+v", cfg)
	}
}

func TestLoadConfigDatabaseURLSelectsPostgres(t *testing.T) {
	cfg, err := LoadConfigFrom(map[string]string{"DATABASE_URL": "postgres://localhost/config_center"})
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.StoreDriver != "postgres" {
		t.Fatalf("store driver: want=postgres got=%s", cfg.StoreDriver)
	}

	cfg, err = LoadConfigFrom(map[string]string{"DATABASE_URL": "postgres://localhost/x", "STORE_DRIVER": "SQLite"})
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.StoreDriver != "sqlite" {
		t.Fatalf("explicit driver wins: want=sqlite got=%s", cfg.StoreDriver)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := LoadConfigFrom(map[string]string{
		"CONFIG_CENTER_PORT":            "8080",
		"CONFIG_CENTER_API_KEY":         "secret-key",
		"CORS_ALLOW_ORIGINS":            "https://a.example.com, ,https://b.example.com",
		"OTEL_EXPORTER_OTLP_HEADERS":    "x-tenant=acme,x-env=prod",
		"RUNTIME_CACHE_TTL":             "2m",
		"RELEASE_REQUIRE_VALID_CONTENT": "true",
	})
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.Port != 8080 || cfg.APIKey != "secret-key" || cfg.RuntimeCacheTTL != 2*time.Minute || !cfg.ReleaseRequireValidContent {
		t.Fatalf("overrides: got=%+v", cfg)
	}
	if strings.Join(cfg.CORSAllowOrigins, "|") != "https://a.example.com|https://b.example.com" {
		t.Fatalf("cors origins: got=%v", cfg.CORSAllowOrigins)
	}
	if cfg.OTelHeaders["x-tenant"] != "acme" || cfg.OTelHeaders["x-env"] != "prod" {
		t.Fatalf("otel headers: got=%v", cfg.OTelHeaders)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := []map[string]string{
		{"STORE_DRIVER": "mongo"},
		{"CONFIG_CENTER_PORT": "0"},
		{"CONFIG_CENTER_PORT": "not-a-port"},
		{"RUNTIME_CACHE_TTL": "-1s"},
	}
	for _, vars := range cases {
		if _, err := LoadConfigFrom(vars); err == nil {
			t.Fatalf("LoadConfigFrom(%v): expected error", vars)
		}
	}
}

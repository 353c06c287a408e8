package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORE_BACKEND", "BATCH_WORKERS", "RIDGE_LAMBDA", "HTTP_ADDR"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	if cfg.StoreBackend != BackendFile || cfg.UsePostgres() {
		t.Errorf("backend: got %q", cfg.StoreBackend)
	}
	if cfg.BatchWorkers != 4 {
		t.Errorf("batch workers: got %d, want 4", cfg.BatchWorkers)
	}
	if cfg.RidgeLambda != 1e-6 {
		t.Errorf("ridge lambda: got %v", cfg.RidgeLambda)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("http addr: got %q", cfg.HTTPAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("BATCH_WORKERS", "16")
	t.Setenv("RIDGE_LAMBDA", "0.5")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_DB", "cars")

	cfg := Load()
	if !cfg.UsePostgres() {
		t.Errorf("backend: got %q, want postgres", cfg.StoreBackend)
	}
	if cfg.BatchWorkers != 16 || cfg.RidgeLambda != 0.5 {
		t.Errorf("numeric overrides: workers=%d lambda=%v", cfg.BatchWorkers, cfg.RidgeLambda)
	}
	dsn := cfg.DSN()
	for _, want := range []string{"host=db", "dbname=cars", "sslmode="} {
		if !strings.Contains(dsn, want) {
			t.Errorf("dsn %q missing %q", dsn, want)
		}
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("BATCH_WORKERS", "many")
	if got := Load().BatchWorkers; got != 4 {
		t.Errorf("batch workers: got %d, want fallback 4", got)
	}
}

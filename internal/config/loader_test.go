package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "corelens.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, "store_backend: falkordb\nstore_address: localhost:6379\nllm_enabled: true\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StoreBackend != "falkordb" {
		t.Errorf("StoreBackend = %q, want falkordb", cfg.StoreBackend)
	}
	if cfg.StoreAddress != "localhost:6379" {
		t.Errorf("StoreAddress = %q, want localhost:6379", cfg.StoreAddress)
	}
	if !cfg.LLMEnabled {
		t.Error("LLMEnabled = false, want true")
	}
	if cfg.MetricsPort != Default().MetricsPort {
		t.Errorf("unset field MetricsPort should keep default, got %d", cfg.MetricsPort)
	}
}

func TestLoad_RejectsInvalidResult(t *testing.T) {
	path := writeTempConfig(t, "store_backend: falkordb\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for falkordb backend without address")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

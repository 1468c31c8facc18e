package commands

import (
	"context"
	"os"
	"testing"

	"github.com/corelens/rca-engine/internal/config"
)

func TestFalkordbConfigFromAddress_EmptyUsesDefaults(t *testing.T) {
	cfg, err := falkordbConfigFromAddress("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Host != "localhost" || cfg.Port != 6379 {
		t.Errorf("expected default host:port, got %s:%d", cfg.Host, cfg.Port)
	}
}

func TestFalkordbConfigFromAddress_ParsesHostPort(t *testing.T) {
	cfg, err := falkordbConfigFromAddress("graphdb:6380")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Host != "graphdb" || cfg.Port != 6380 {
		t.Errorf("expected graphdb:6380, got %s:%d", cfg.Host, cfg.Port)
	}
}

func TestFalkordbConfigFromAddress_RejectsMalformedAddress(t *testing.T) {
	if _, err := falkordbConfigFromAddress("not-a-host-port"); err == nil {
		t.Fatal("expected an error for a malformed address")
	}
}

func TestBuildAdapter_DetectsJSONLByExtension(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/events.jsonl"
	if err := os.WriteFile(path, []byte("{\"service\":\"checkout\",\"message\":\"boom\"}\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	adapter, formatTag, err := buildAdapter(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if formatTag != "jsonl" {
		t.Errorf("expected jsonl format tag, got %q", formatTag)
	}
	if adapter == nil {
		t.Fatal("expected a non-nil adapter")
	}
}

func TestBuildAdapter_UnknownExtensionFallsBackToGeneric(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/events.weird"
	if err := os.WriteFile(path, []byte("hello world\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	_, formatTag, err := buildAdapter(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if formatTag != "generic" {
		t.Errorf("expected generic fallback, got %q", formatTag)
	}
}

func TestBuildStore_EmptyBackendDisablesPersistence(t *testing.T) {
	cfg := config.Default()
	cfg.StoreBackend = ""
	s, err := buildStore(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != nil {
		t.Fatal("expected no store for an empty backend")
	}
}

func TestBuildStore_MemoryBackendConstructsAStore(t *testing.T) {
	cfg := config.Default()
	cfg.StoreBackend = "memory"
	cfg.StoreCacheSize = 16
	s, err := buildStore(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == nil {
		t.Fatal("expected a store for the memory backend")
	}
	defer s.Close()
}

func TestBuildStore_RejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.StoreBackend = "sqlite"
	if _, err := buildStore(context.Background(), &cfg); err == nil {
		t.Fatal("expected an error for an unknown store backend")
	}
}

func TestBuildLLMProvider_DisabledReturnsNil(t *testing.T) {
	cfg := config.Default()
	cfg.LLMEnabled = false
	provider, err := buildLLMProvider(&cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider != nil {
		t.Fatal("expected a nil provider when LLM analysis is disabled")
	}
}

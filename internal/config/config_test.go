package config

import "testing"

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidate_RejectsFalkorDBWithoutAddress(t *testing.T) {
	cfg := Default()
	cfg.StoreBackend = "falkordb"
	cfg.StoreAddress = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for falkordb backend without address")
	}
}

func TestValidate_RejectsUnknownStoreBackend(t *testing.T) {
	cfg := Default()
	cfg.StoreBackend = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown store backend")
	}
}

func TestValidate_RejectsTracingEnabledWithoutEndpoint(t *testing.T) {
	cfg := Default()
	cfg.TracingEnabled = true
	cfg.TracingEndpoint = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for tracing enabled without endpoint")
	}
}

func TestValidate_RejectsOutOfRangeThreshold(t *testing.T) {
	cfg := Default()
	cfg.RepeatedErrorThresh = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for threshold above 1")
	}
}

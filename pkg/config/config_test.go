package config

import (
	"strings"
	"testing"
)

func TestEnsureDSNKeepsExplicitValue(t *testing.T) {
	cfg := DBConfig{DSN: "postgres://u:p@localhost:5432/stockbar?sslmode=disable"}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("ensureDSN: %v", err)
	}
	if cfg.DSN != "postgres://u:p@localhost:5432/stockbar?sslmode=disable" {
		t.Fatalf("DSN rewritten: %s", cfg.DSN)
	}
}

func TestEnsureDSNAssemblesFromLegacyFields(t *testing.T) {
	cfg := DBConfig{
		LegacyHost:     "db.internal",
		LegacyPort:     5433,
		LegacyUser:     "stockbar",
		LegacyPassword: "s3cret",
		LegacyName:     "stockbar",
		LegacySSLMode:  "require",
	}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("ensureDSN: %v", err)
	}
	for _, want := range []string{"postgres://", "stockbar:s3cret@db.internal:5433", "sslmode=require"} {
		if !strings.Contains(cfg.DSN, want) {
			t.Fatalf("DSN %q missing %q", cfg.DSN, want)
		}
	}
}

func TestEnsureDSNReportsMissingFields(t *testing.T) {
	cfg := DBConfig{LegacyHost: "db.internal"}
	err := cfg.ensureDSN()
	if err == nil {
		t.Fatal("expected error for missing user/name")
	}
	if !strings.Contains(err.Error(), EnvDBUser) || !strings.Contains(err.Error(), EnvDBName) {
		t.Fatalf("error should name missing vars: %v", err)
	}
}

func TestAccessTokenTTL(t *testing.T) {
	if got := (JWTConfig{ExpirationMinutes: 30}).AccessTokenTTL().Minutes(); got != 30 {
		t.Fatalf("expected 30 minutes, got %f", got)
	}
	if got := (JWTConfig{}).AccessTokenTTL(); got != 0 {
		t.Fatalf("expected zero TTL, got %v", got)
	}
}

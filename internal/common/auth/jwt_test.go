package auth

import (
	"testing"
	"time"

	"github.com/FleetPulse/FleetPulse/internal/common/config"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "fleetpulse",
		Audience:  "fleetpulse",
	}

	token, exp, err := GenerateAccessToken(cfg, "op-1", []string{"dispatcher"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if exp.Before(time.Now()) {
		t.Fatalf("expected exp in future")
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != "op-1" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "dispatcher" {
		t.Fatalf("roles mismatch: %#v", claims.Roles)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret-a", Issuer: "fleetpulse"}
	token, _, err := GenerateAccessToken(cfg, "op-1", nil, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	bad := config.AuthConfig{JWTSecret: "secret-b", Issuer: "fleetpulse"}
	if _, err := ParseAccessToken(bad, token); err == nil {
		t.Fatalf("expected parse to fail with wrong secret")
	}
}

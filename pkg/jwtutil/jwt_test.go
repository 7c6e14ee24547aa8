package jwtutil

import (
	"testing"

	"smartfactory/pkg/config"
)

func TestGenerateAndValidateToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "unit-test-key", ExpirationHours: 2})

	token, err := GenerateToken("quality@atlas.com", 5, "quality_manager")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Email != "quality@atlas.com" {
		t.Errorf("email = %s, want quality@atlas.com", claims.Email)
	}
	if claims.UserID != 5 {
		t.Errorf("user_id = %d, want 5", claims.UserID)
	}
	if claims.Role != "quality_manager" {
		t.Errorf("role = %s, want quality_manager", claims.Role)
	}
}

func TestValidateTokenWrongKey(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "first-key", ExpirationHours: 1})
	token, err := GenerateToken("operator@atlas.com", 1, "operator")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	Initialize(&config.JWTConfig{SigningKey: "second-key", ExpirationHours: 1})
	if _, err := ValidateToken(token); err == nil {
		t.Error("token signed with a different key should not validate")
	}
}

func TestValidateGarbage(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "unit-test-key", ExpirationHours: 1})
	if _, err := ValidateToken("garbage.token.value"); err == nil {
		t.Error("garbage token should not validate")
	}
}

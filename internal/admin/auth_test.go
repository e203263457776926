package admin

import (
	"testing"
	"time"
)

func TestIssueAndValidateToken(t *testing.T) {
	key := []byte("test-signing-key")
	tok, err := IssueToken(key, "operator1", RoleOperator, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	claims, err := ValidateToken(key, tok)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != "operator1" || claims.Role != RoleOperator {
		t.Fatalf("got %+v", claims)
	}
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	tok, err := IssueToken([]byte("key-a"), "op", RoleOperator, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := ValidateToken([]byte("key-b"), tok); err == nil {
		t.Fatalf("expected validation to fail with a mismatched key")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	tok, err := IssueToken([]byte("key"), "op", RoleOperator, -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := ValidateToken([]byte("key"), tok); err == nil {
		t.Fatalf("expected validation to fail for an expired token")
	}
}

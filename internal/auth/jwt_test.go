package auth

import (
	"testing"
	"time"

	"github.com/Aman0246jploft/kudsun-backend/internal/models"
	"github.com/google/uuid"
)

func TestGenerateAndParseJWT(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()

	token, err := GenerateJWT(secret, userID, models.RoleSeller, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	claims, err := ParseJWT(secret, token)
	if err != nil {
		t.Fatalf("ParseJWT failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("UserID = %s, want %s", claims.UserID, userID)
	}
	if claims.Role != models.RoleSeller {
		t.Errorf("Role = %q, want %q", claims.Role, models.RoleSeller)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("secret-a", uuid.New(), models.RoleBuyer, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	if _, err := ParseJWT("secret-b", token); err == nil {
		t.Error("expected parse to fail with the wrong secret")
	}
}

func TestParseJWTExpired(t *testing.T) {
	token, err := GenerateJWT("secret", uuid.New(), models.RoleBuyer, time.Nanosecond)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := ParseJWT("secret", token); err == nil {
		t.Error("expected expired token to fail")
	}
}

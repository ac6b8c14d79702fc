package security

import (
	"testing"
	"time"
)

func TestUserTokenRoundTrip(t *testing.T) {
	token, err := SignUserToken("secret", time.Hour, "user-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := ParseUserToken("secret", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %q", claims.UserID)
	}

	if _, err := ParseUserToken("wrong-secret", token); err == nil {
		t.Fatalf("expected wrong secret to fail")
	}
}

func TestUserTokenExpiry(t *testing.T) {
	token, err := SignUserToken("secret", -time.Minute, "user-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseUserToken("secret", token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestPrivateTokenNotValidAsUserToken(t *testing.T) {
	token, err := SignPrivateToken("secret", time.Hour, "private-1")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := ParsePrivateToken("secret", token)
	if err != nil {
		t.Fatalf("parse private: %v", err)
	}
	if claims.PrivateUserID != "private-1" {
		t.Fatalf("expected private-1, got %q", claims.PrivateUserID)
	}

	if _, err := ParseUserToken("secret", token); err == nil {
		t.Fatalf("expected private token to be rejected as user token")
	}
}

func TestSignUserToken_RequiresSecret(t *testing.T) {
	if _, err := SignUserToken("", time.Hour, "user-1"); err == nil {
		t.Fatalf("expected error with empty secret")
	}
}

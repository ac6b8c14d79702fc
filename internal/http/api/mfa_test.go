package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
)

func TestTOTPEnrolmentAndLogin(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.signupVerified(t, "ada@example.com")

	w := env.do(t, http.MethodPost, "/api/auth/mfa/totp/prepare", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("prepare: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	secret, _ := decodeJSON(t, w)["secret"].(string)
	if secret == "" {
		t.Fatalf("expected enrolment secret")
	}

	// The secret is pending until confirmed.
	user, _ := env.st.GetUser(context.Background(), userID)
	if user.TOTPSecret != "" {
		t.Fatalf("expected secret not stored before confirmation")
	}

	w = env.do(t, http.MethodPost, "/api/auth/mfa/totp/confirm", gin.H{"secret": secret, "code": "000000"}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad code, got %d", w.Code)
	}

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	w = env.do(t, http.MethodPost, "/api/auth/mfa/totp/confirm", gin.H{"secret": secret, "code": code}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Password login now requires the second step.
	w = env.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "ada@example.com", "password": "secret1"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", w.Code)
	}
	out := decodeJSON(t, w)
	if out["totpRequired"] != true {
		t.Fatalf("expected totpRequired, got %v", out)
	}
	if _, issued := out["token"]; issued {
		t.Fatalf("expected no session token before totp step")
	}

	w = env.do(t, http.MethodPost, "/api/auth/login/totp", gin.H{"userId": userID, "code": "000000"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong totp code, got %d", w.Code)
	}

	code, err = totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	w = env.do(t, http.MethodPost, "/api/auth/login/totp", gin.H{"userId": userID, "code": code}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("totp login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if tokenOut, _ := decodeJSON(t, w)["token"].(string); tokenOut == "" {
		t.Fatalf("expected session token after totp step")
	}

	// Disable and verify plain login resumes.
	code, err = totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	w = env.do(t, http.MethodPost, "/api/auth/mfa/totp/disable", gin.H{"code": code}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("disable: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "ada@example.com", "password": "secret1"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login after disable: expected 200, got %d", w.Code)
	}
	if tokenOut, _ := decodeJSON(t, w)["token"].(string); tokenOut == "" {
		t.Fatalf("expected direct session token after disable")
	}
}

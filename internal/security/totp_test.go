package security

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

func TestTOTPRoundTrip(t *testing.T) {
	key, err := NewTOTPKey("user@example.com")
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if key.Secret() == "" {
		t.Fatalf("expected non-empty secret")
	}

	code, err := totp.GenerateCode(key.Secret(), time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if !ValidateTOTP(key.Secret(), code) {
		t.Fatalf("expected current code to validate")
	}
	if ValidateTOTP(key.Secret(), "000000") && code != "000000" {
		t.Fatalf("expected wrong code to fail")
	}
}

func TestValidateTOTP_EmptyInputs(t *testing.T) {
	if ValidateTOTP("", "123456") {
		t.Fatalf("expected empty secret to fail")
	}
	if ValidateTOTP("SECRET", "") {
		t.Fatalf("expected empty code to fail")
	}
}

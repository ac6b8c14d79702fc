package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "correct-horse" {
		t.Fatalf("expected hashed output, got plaintext")
	}
	if !CheckPassword(hash, "correct-horse") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong-horse") {
		t.Fatalf("expected mismatched password to fail")
	}
}

func TestValidatePassword_MinLength(t *testing.T) {
	if err := ValidatePassword("12345"); err == nil {
		t.Fatalf("expected error for short password")
	}
	if err := ValidatePassword("123456"); err != nil {
		t.Fatalf("expected 6-character password to pass, got %v", err)
	}
}

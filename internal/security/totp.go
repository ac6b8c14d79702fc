package security

import (
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// totpIssuer is the issuer shown in authenticator apps.
const totpIssuer = "Formworks"

// NewTOTPKey generates a fresh TOTP enrolment key for the given account email.
func NewTOTPKey(accountEmail string) (*otp.Key, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: accountEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("security: generate totp key: %w", err)
	}
	return key, nil
}

// ValidateTOTP reports whether the code matches the stored secret.
func ValidateTOTP(secret, code string) bool {
	if secret == "" || code == "" {
		return false
	}
	return totp.Validate(code, secret)
}

package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// GenerateToken returns a random 64-character hex token for email verification
// and password-reset flows.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("security: generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateOTP returns a random 6-digit numeric one-time code, zero-padded.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("security: generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

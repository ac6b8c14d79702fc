package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims are the JWT claims carried by a form-owner session token.
type UserClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// PrivateClaims are the JWT claims carried by a private-respondent session token.
type PrivateClaims struct {
	PrivateUserID string `json:"private_user_id"`
	jwt.RegisteredClaims
}

// SignUserToken issues a signed session token for a form owner.
func SignUserToken(secret string, expiry time.Duration, userID string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("security: jwt secret not configured")
	}
	now := time.Now().UTC()
	claims := UserClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("security: sign user token: %w", err)
	}
	return signed, nil
}

// ParseUserToken validates a form-owner session token and returns its claims.
func ParseUserToken(secret, tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("security: parse user token: %w", err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("security: invalid user token")
	}
	return claims, nil
}

// SignPrivateToken issues a signed session token for a private respondent.
func SignPrivateToken(secret string, expiry time.Duration, privateUserID string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("security: jwt secret not configured")
	}
	now := time.Now().UTC()
	claims := PrivateClaims{
		PrivateUserID: privateUserID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("security: sign private token: %w", err)
	}
	return signed, nil
}

// ParsePrivateToken validates a private-respondent session token.
func ParsePrivateToken(secret, tokenString string) (*PrivateClaims, error) {
	claims := &PrivateClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("security: parse private token: %w", err)
	}
	if !token.Valid || claims.PrivateUserID == "" {
		return nil, fmt.Errorf("security: invalid private token")
	}
	return claims, nil
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const adminIssuer = "agency-site-backend"

var (
	ErrMissingToken = errors.New("missing token")
	ErrNotAdmin     = errors.New("token does not carry the admin role")
)

// AdminClaims are the claims of an operator token
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueAdminToken signs an HS256 token for subject with the given role.
func IssueAdminToken(secret []byte, subject, role string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("admin secret is empty")
	}
	now := time.Now()
	claims := AdminClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    adminIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAdminToken verifies signature, expiry and role. Only HS256 is
// accepted.
func ParseAdminToken(secret []byte, tokenString, requiredRole string) (*AdminClaims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(adminIssuer),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return nil, errors.New("invalid token: exp claim is required")
	}
	if claims.Role != requiredRole {
		return nil, ErrNotAdmin
	}
	return claims, nil
}

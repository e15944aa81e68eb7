package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const minSecretLength = 32

// ErrWeakSecret is returned when the signing secret is too short for HS256
var ErrWeakSecret = fmt.Errorf("jwt secret must be at least %d bytes", minSecretLength)

// AuthService manages JWT token generation and validation for the probe
type AuthService struct {
	secretKey   []byte
	tokenExpiry time.Duration
}

// ProbeClaims represents the JWT claims structure
type ProbeClaims struct {
	ClientName string `json:"client_name"`
	jwt.RegisteredClaims
}

// NewAuthService creates an HS256 auth service, zero expiry means 90 days
func NewAuthService(secretKey string, tokenExpiry time.Duration) (*AuthService, error) {
	secretKey = strings.TrimSpace(secretKey)
	if len(secretKey) < minSecretLength {
		return nil, ErrWeakSecret
	}
	if tokenExpiry == 0 {
		tokenExpiry = DefaultTokenExpiry
	}
	return &AuthService{
		secretKey:   []byte(secretKey),
		tokenExpiry: tokenExpiry,
	}, nil
}

// GenerateToken creates a new JWT token for a named client
func (a *AuthService) GenerateToken(clientName string) (string, error) {
	now := time.Now()

	claims := ProbeClaims{
		ClientName: clientName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "spacegate",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secretKey)
}

// ValidateToken verifies and parses a JWT token
func (a *AuthService) ValidateToken(tokenString string) (*ProbeClaims, error) {
	claims := &ProbeClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secretKey, nil
	}, jwt.WithIssuer("spacegate"))
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

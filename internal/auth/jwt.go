package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenLifespan é a validade de um token de sessão.
const DefaultTokenLifespan = 30 * 24 * time.Hour

var (
	ErrMissingSecret = errors.New("JWT secret key not set")
	ErrInvalidToken  = errors.New("invalid token")
)

// Claims struct to be encoded to JWT
type Claims struct {
	UserID uuid.UUID `json:"id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 session tokens.
type TokenIssuer struct {
	key      []byte
	lifespan time.Duration
	now      func() time.Time
}

// NewTokenIssuer fails when secret is empty. A non-positive lifespan uses DefaultTokenLifespan.
func NewTokenIssuer(secret string, lifespan time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if lifespan <= 0 {
		lifespan = DefaultTokenLifespan
	}
	return &TokenIssuer{key: []byte(secret), lifespan: lifespan, now: time.Now}, nil
}

// GenerateToken generates a new JWT token for a given user.
func (t *TokenIssuer) GenerateToken(userID uuid.UUID) (string, error) {
	issuedAt := t.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(t.lifespan)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken returns the user ID carried by tokenString.
// Every failure (signature, algorithm, payload, expiry) wraps ErrInvalidToken.
func (t *TokenIssuer) ValidateToken(tokenString string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.key, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return uuid.Nil, ErrInvalidToken
	}
	return claims.UserID, nil
}

package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingConfig = errors.New("JWT config is required")
	ErrInvalidToken  = errors.New("invalid token")
)

// Claims represents JWT claims
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Config represents JWT configuration
type Config struct {
	Secret        string
	Expiry        time.Duration
	Issuer        string
	SigningMethod jwt.SigningMethod
}

// DefaultConfig returns default JWT configuration
func DefaultConfig(secret string) *Config {
	return &Config{
		Secret:        secret,
		Expiry:        24 * time.Hour,
		Issuer:        "ebooks-api",
		SigningMethod: jwt.SigningMethodHS256,
	}
}

// GenerateToken signs a token carrying the user's id, username and email.
func GenerateToken(userID, username, email string, cfg *Config) (string, error) {
	if cfg == nil {
		return "", ErrMissingConfig
	}
	method := cfg.SigningMethod
	if method == nil {
		method = jwt.SigningMethodHS256
	}

	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    cfg.Issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(method, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ValidateToken validates and parses a JWT token
func ValidateToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Package auth implements bearer-token issuance and verification plus the
// per-request gate that resolves a token into a trusted account.
package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenInvalidSignature = errors.New("invalid token signature")
	ErrTokenMalformed        = errors.New("malformed token")
)

// Config holds the process-wide signing secret and token lifetime, loaded
// once at startup and injected into the TokenService.
type Config struct {
	Secret []byte
	TTL    time.Duration
}

// ConfigFromEnv reads JWT_SECRET and JWT_EXPIRES_IN (a Go duration string,
// default 24h) from the environment.
func ConfigFromEnv() Config {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// insecure development default, override in production
		secret = "dev-secret"
	}
	ttl := 24 * time.Hour
	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			ttl = parsed
		}
	}
	return Config{Secret: []byte(secret), TTL: ttl}
}

// Claims carried by every issued token: the account identifier and its
// role, plus the registered issued-at/expiry pair.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
}

// TokenService issues and verifies HS256-signed bearer tokens. Tokens are
// self-contained; no server-side session record is kept.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(cfg Config) *TokenService {
	return &TokenService{secret: cfg.Secret, ttl: cfg.TTL}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for the given account with the configured lifetime.
func (s *TokenService) Issue(userID int64, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
		Role:   role,
	})
	return token.SignedString(s.secret)
}

// Verify validates signature and expiry (strict server time, no leeway)
// and returns the embedded claims.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenInvalidSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

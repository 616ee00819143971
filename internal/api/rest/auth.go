package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainErrors "github.com/coverledger/coverledger-backend/internal/domain/errors"
)

// AuthConfig holds JWT validation settings
type AuthConfig struct {
	Secret      []byte
	TokenExpiry time.Duration
	Issuer      string
}

// Claims represents JWT claims carried by API tokens
type Claims struct {
	jwt.RegisteredClaims
	Wallet string `json:"wallet,omitempty"`
}

// Authenticator validates bearer tokens on protected routes
type Authenticator struct {
	config AuthConfig
}

// NewAuthenticator creates a JWT authenticator
func NewAuthenticator(config AuthConfig) *Authenticator {
	if config.Issuer == "" {
		config.Issuer = "coverledger"
	}
	if config.TokenExpiry <= 0 {
		config.TokenExpiry = 30 * time.Minute
	}
	return &Authenticator{config: config}
}

// GenerateToken issues an HS256 token bound to a wallet address
func (a *Authenticator) GenerateToken(wallet string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   wallet,
			Issuer:    a.config.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.TokenExpiry)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Wallet: wallet,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.config.Secret)
}

// ValidateToken parses and validates a bearer token
func (a *Authenticator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.config.Secret, nil
	}, jwt.WithIssuer(a.config.Issuer))
	if err != nil {
		return nil, domainErrors.NewUnauthorizedError("invalid or expired token").WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domainErrors.NewUnauthorizedError("invalid token claims")
	}
	return claims, nil
}

// RequireAuth wraps a handler with bearer token validation. The caller's
// wallet claim is placed in the request context.
func (a *Authenticator) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, r, domainErrors.NewUnauthorizedError("Authorization required"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, r, domainErrors.NewUnauthorizedError("Invalid authorization format"))
			return
		}

		claims, err := a.ValidateToken(parts[1])
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyWallet, claims.Wallet)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

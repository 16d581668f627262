// Package httpapi provides the HTTP/WebSocket surface for cmd/searchd:
// JWT-protected admin endpoints for starting and cancelling runs, rate
// limiting, error sanitization, and a WebSocket hub broadcasting each
// run's event stream to attached viewers. Adapted from the teacher's
// internal/agent and internal/policy packages, repointed from a
// multi-tenant chat agent's user accounts to a single pre-shared operator
// credential — this daemon has no user registry of its own.
package httpapi

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const userIDContextKey contextKey = "user_id"
const userRoleContextKey contextKey = "user_role"

// TokenConfig holds token duration configuration, same defaulting
// mechanism as the teacher's DefaultTokenConfig (env override, then a
// fixed default).
type TokenConfig struct {
	Duration time.Duration
	Issuer   string
}

// DefaultTokenConfig returns the operator access-token duration: 24 hours
// by default, overridable via SEARCHD_TOKEN_DURATION.
func DefaultTokenConfig() TokenConfig {
	dur := 24 * time.Hour
	if raw := os.Getenv("SEARCHD_TOKEN_DURATION"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			dur = parsed
		}
	}
	return TokenConfig{Duration: dur, Issuer: "narrativegraph-searchd"}
}

// JWTMiddleware validates bearer tokens and extracts the operator identity
// and role the daemon's admin handlers act on.
type JWTMiddleware struct {
	secretKey []byte
	public    map[string]bool
	logger    *zap.Logger
}

// NewJWTMiddleware builds a middleware keyed by SEARCHD_JWT_SECRET.
// publicPaths lists request paths allowed through without a token (health
// checks and the read-only viewer WebSocket).
func NewJWTMiddleware(publicPaths []string, logger *zap.Logger) *JWTMiddleware {
	secret := os.Getenv("SEARCHD_JWT_SECRET")
	if secret == "" {
		secret = "dev-only-searchd-secret-change-in-production-32c"
		logger.Warn("SEARCHD_JWT_SECRET unset, using an insecure development default")
	}
	if len(secret) < 32 {
		secret = secret + strings.Repeat("x", 32-len(secret))
		logger.Warn("SEARCHD_JWT_SECRET too short, padded for this process only")
	}

	public := make(map[string]bool, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = true
	}

	return &JWTMiddleware{secretKey: []byte(secret), public: public, logger: logger.Named("auth")}
}

// Middleware wraps next, requiring a valid Bearer token on every path not
// listed as public.
func (m *JWTMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.public[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.secretKey, nil
		})
		if err != nil || !token.Valid {
			m.logger.Warn("rejected invalid token", zap.Error(err))
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			http.Error(w, "invalid token claims", http.StatusUnauthorized)
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			http.Error(w, "token missing subject", http.StatusUnauthorized)
			return
		}
		role, _ := claims["role"].(string)
		if role == "" {
			role = "operator"
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, sub)
		ctx = context.WithValue(ctx, userRoleContextKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID extracts the caller identity stored by Middleware.
func UserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDContextKey).(string); ok {
		return id
	}
	return "anonymous"
}

// UserRole extracts the caller role stored by Middleware.
func UserRole(ctx context.Context) string {
	if role, ok := ctx.Value(userRoleContextKey).(string); ok {
		return role
	}
	return "operator"
}

// MintOperatorToken signs a token for subject with role "operator",
// matching the secret a running daemon validates against. Used by
// cmd/searchd's `-mint-token` startup mode to hand the operator a
// credential without a login endpoint.
func MintOperatorToken(subject string) (string, error) {
	secret := os.Getenv("SEARCHD_JWT_SECRET")
	if secret == "" {
		secret = "dev-only-searchd-secret-change-in-production-32c"
	}
	if len(secret) < 32 {
		secret = secret + strings.Repeat("x", 32-len(secret))
	}

	cfg := DefaultTokenConfig()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": "operator",
		"iss":  cfg.Issuer,
		"iat":  jwt.NewNumericDate(now),
		"exp":  jwt.NewNumericDate(now.Add(cfg.Duration)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

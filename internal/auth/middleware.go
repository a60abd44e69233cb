package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	apperrors "shopkeeper/internal/errors"
)

const RoleManager = "Manager"

type contextKey struct{}

var claimsKey = contextKey{}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Middleware authenticates HS256 bearer tokens signed with a shared secret.
type Middleware struct {
	secret []byte
	logger *zap.Logger
}

func NewMiddleware(secret string, logger *zap.Logger) *Middleware {
	return &Middleware{
		secret: []byte(secret),
		logger: logger,
	}
}

func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			writeError(w, apperrors.NewUnauthorizedError("authorization required"))
			return
		}

		claims, err := m.validateToken(tokenString)
		if err != nil {
			m.logger.Debug("rejected bearer token", zap.Error(err))
			writeError(w, apperrors.NewUnauthorizedError("invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole must run after Authenticate.
func (m *Middleware) RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, apperrors.NewUnauthorizedError("authorization required"))
				return
			}

			for _, role := range allowedRoles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			m.logger.Info("insufficient privileges",
				zap.String("subject", claims.Subject),
				zap.String("role", claims.Role),
				zap.Strings("required", allowedRoles),
			)
			writeError(w, apperrors.NewForbiddenError("insufficient privileges"))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// IssueToken signs claims with the middleware secret.
func (m *Middleware) IssueToken(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Middleware) validateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

func extractToken(r *http.Request) string {
	bearer := r.Header.Get("Authorization")
	if len(bearer) > 7 && strings.ToUpper(bearer[0:7]) == "BEARER " {
		return bearer[7:]
	}
	return ""
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusUnauthorized, "UNAUTHORIZED"
	if _, ok := apperrors.IsForbiddenError(err); ok {
		status, code = http.StatusForbidden, "FORBIDDEN"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: code, Message: err.Error()})
}

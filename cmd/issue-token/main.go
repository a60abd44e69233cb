package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"shopkeeper/internal/auth"
	"shopkeeper/internal/config"
)

// issue-token prints a bearer token signed with the configured AUTH_JWT_SECRET.
func main() {
	configPath := pflag.StringP("config", "c", "config/config.yaml", "path to the YAML config file")
	subject := pflag.StringP("subject", "s", "", "token subject, usually a user id")
	role := pflag.StringP("role", "r", auth.RoleManager, "role claim")
	ttl := pflag.Duration("ttl", 8*time.Hour, "token lifetime")
	pflag.Parse()

	if *subject == "" {
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	now := time.Now()
	token, err := auth.NewMiddleware(cfg.Auth.JWTSecret, zap.NewNop()).IssueToken(auth.Claims{
		Role: *role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   *subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
	})
	if err != nil {
		log.Fatalf("signing token: %v", err)
	}

	fmt.Println(token)
}
